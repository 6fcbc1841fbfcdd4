package proof

import (
	"encoding/json"
	"fmt"

	"github.com/spruceid/rebase-sub001/statement"
)

func decode[T Proof](b []byte) (Proof, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var decoders = map[statement.Kind]func([]byte) (Proof, error){
	statement.KindDNS:              decode[DNS],
	statement.KindEmail:            decode[Email],
	statement.KindGitHub:           decode[GitHub],
	statement.KindTwitter:          decode[Twitter],
	statement.KindReddit:           decode[Reddit],
	statement.KindSoundCloud:       decode[SoundCloud],
	statement.KindNFTOwnership:     decode[NFTOwnership],
	statement.KindPOAPOwnership:    decode[POAPOwnership],
	statement.KindSameController:   decode[SameController],
	statement.KindCrossKey:         decode[CrossKey],
	statement.KindBasicImage:       decode[SelfIssued],
	statement.KindBasicPost:        decode[SelfIssued],
	statement.KindBasicTag:         decode[SelfIssued],
	statement.KindBasicProfile:     decode[SelfIssued],
	statement.KindFollow:           decode[SelfIssued],
	statement.KindLike:             decode[SelfIssued],
	statement.KindBookReview:       decode[SelfIssued],
	statement.KindProgressBookLink: decode[SelfIssued],
	statement.KindDappPreferences:  decode[SelfIssued],
}

type wireProof struct {
	Type  statement.Kind  `json:"type"`
	Proof json.RawMessage `json:"proof"`
}

// Marshal encodes p as {"type":"<kind>","proof":{"statement":{...},...}}.
func Marshal(p Proof) ([]byte, error) {
	if p.Statement() == nil {
		return nil, NewError(MalformedProof, "missing statement", nil)
	}
	st, err := statement.EncodeBody(p.Statement())
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding %s proof: %w", p.Kind(), err)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, fmt.Errorf("encoding %s proof: %w", p.Kind(), err)
	}
	body["statement"] = st
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s proof: %w", p.Kind(), err)
	}
	return json.Marshal(wireProof{p.Kind(), raw})
}

func Unmarshal(b []byte) (Proof, error) {
	var w wireProof
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, NewError(MalformedProof, "parsing proof", err)
	}
	decoder, ok := decoders[w.Type]
	if !ok {
		return nil, NewError(MalformedProof, fmt.Sprintf("unknown proof kind %q", w.Type), nil)
	}
	p, err := decoder(w.Proof)
	if err != nil {
		return nil, NewError(MalformedProof, fmt.Sprintf("parsing %s proof", w.Type), err)
	}
	var body struct {
		Statement json.RawMessage `json:"statement"`
	}
	if err := json.Unmarshal(w.Proof, &body); err != nil || len(body.Statement) == 0 {
		return nil, NewError(MalformedProof, fmt.Sprintf("%s proof without a statement", w.Type), err)
	}
	st, err := statement.DecodeBody(w.Type, body.Statement)
	if err != nil {
		return nil, NewError(StatementFailure, "decoding statement", err)
	}
	return p.withStatement(st)
}

// Envelope carries a proof through encoding/json.
type Envelope struct {
	Proof Proof
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Proof == nil {
		return []byte("null"), nil
	}
	return Marshal(e.Proof)
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		e.Proof = nil
		return nil
	}
	p, err := Unmarshal(b)
	if err != nil {
		return err
	}
	e.Proof = p
	return nil
}
