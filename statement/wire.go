package statement

import (
	"encoding/json"
	"fmt"

	"github.com/spruceid/rebase-sub001/subject"
)

// subjectFields names the wire fields carrying the subjects of each kind, in
// the order of [Statement.Subjects]. Witness kinds keep the legacy key_type
// name.
var subjectFields = map[Kind][]string{
	KindDNS:              {"key_type"},
	KindEmail:            {"key_type"},
	KindGitHub:           {"key_type"},
	KindTwitter:          {"key_type"},
	KindReddit:           {"key_type"},
	KindSoundCloud:       {"key_type"},
	KindNFTOwnership:     {"key_type"},
	KindPOAPOwnership:    {"key_type"},
	KindSameController:   {"id1", "id2"},
	KindCrossKey:         {"key1", "key2"},
	KindBasicImage:       {"subject"},
	KindBasicPost:        {"subject"},
	KindBasicTag:         {"subject"},
	KindBasicProfile:     {"subject"},
	KindFollow:           {"subject"},
	KindLike:             {"subject"},
	KindBookReview:       {"subject"},
	KindProgressBookLink: {"subject"},
	KindDappPreferences:  {"subject"},
}

func decode[T Statement](b []byte) (Statement, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var decoders = map[Kind]func([]byte) (Statement, error){
	KindDNS:              decode[DNS],
	KindEmail:            decode[Email],
	KindGitHub:           decode[GitHub],
	KindTwitter:          decode[Twitter],
	KindReddit:           decode[Reddit],
	KindSoundCloud:       decode[SoundCloud],
	KindNFTOwnership:     decode[NFTOwnership],
	KindPOAPOwnership:    decode[POAPOwnership],
	KindSameController:   decode[SameController],
	KindCrossKey:         decode[CrossKey],
	KindBasicImage:       decode[BasicImage],
	KindBasicPost:        decode[BasicPost],
	KindBasicTag:         decode[BasicTag],
	KindBasicProfile:     decode[BasicProfile],
	KindFollow:           decode[Follow],
	KindLike:             decode[Like],
	KindBookReview:       decode[BookReview],
	KindProgressBookLink: decode[ProgressBookLink],
	KindDappPreferences:  decode[DappPreferences],
}

// EncodeBody encodes the fields of s, without its kind tag.
func EncodeBody(s Statement) (json.RawMessage, error) {
	names, ok := subjectFields[s.Kind()]
	if !ok {
		return nil, fmt.Errorf("unknown statement kind %q", s.Kind())
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", s.Kind(), err)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", s.Kind(), err)
	}
	if body == nil {
		body = map[string]json.RawMessage{}
	}
	subjects := s.Subjects()
	for i, name := range names {
		if i >= len(subjects) || subjects[i] == nil {
			return nil, NewError(MalformedSubject, fmt.Sprintf("%s: missing %s", s.Kind(), name), nil)
		}
		raw, err := subject.Marshal(subjects[i])
		if err != nil {
			return nil, NewError(MalformedSubject, fmt.Sprintf("%s: encoding %s", s.Kind(), name), err)
		}
		body[name] = raw
	}
	return json.Marshal(body)
}

// DecodeBody reverses [EncodeBody].
func DecodeBody(kind Kind, body []byte) (Statement, error) {
	decoder, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
	st, err := decoder(body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind, err)
	}
	names := subjectFields[kind]
	subjects := make([]subject.Subject, len(names))
	for i, name := range names {
		raw, ok := fields[name]
		if !ok {
			return nil, NewError(MalformedSubject, fmt.Sprintf("%s: missing %s", kind, name), nil)
		}
		s, err := subject.Unmarshal(raw)
		if err != nil {
			return nil, NewError(MalformedSubject, fmt.Sprintf("%s: decoding %s", kind, name), err)
		}
		subjects[i] = s
	}
	return st.withSubjects(subjects), nil
}

type wireStatement struct {
	Type      Kind            `json:"type"`
	Statement json.RawMessage `json:"statement"`
}

// Marshal encodes s as {"type":"<kind>","statement":{...}}.
func Marshal(s Statement) ([]byte, error) {
	body, err := EncodeBody(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireStatement{s.Kind(), body})
}

func Unmarshal(b []byte) (Statement, error) {
	var w wireStatement
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}
	return DecodeBody(w.Type, w.Statement)
}
