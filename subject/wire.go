package subject

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes a subject as {"type":"<tag>", ...fields}.
func Marshal(s Subject) ([]byte, error) {
	switch v := View(s).(type) {
	case DID:
		return json.Marshal(struct {
			Type Type `json:"type"`
			DID
		}{TypeDID, v})
	case Ethereum:
		return json.Marshal(struct {
			Type Type `json:"type"`
			Ethereum
		}{TypeEthereum, v})
	case Tezos:
		return json.Marshal(struct {
			Type Type `json:"type"`
			Tezos
		}{TypeTezos, v})
	case Handle:
		return json.Marshal(map[string]string{"type": string(v.Platform), v.field(): v.Value})
	default:
		return nil, fmt.Errorf("unsupported subject %T", s)
	}
}

// Unmarshal decodes a subject written by [Marshal].
func Unmarshal(b []byte) (Subject, error) {
	var tag struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(b, &tag); err != nil {
		return nil, fmt.Errorf("parsing subject: %w", err)
	}
	switch tag.Type {
	case TypeDID:
		var d DID
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("parsing did subject: %w", err)
		}
		return d, nil
	case TypeEthereum:
		var e Ethereum
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("parsing ethereum subject: %w", err)
		}
		return e, nil
	case TypeTezos:
		var t Tezos
		if err := json.Unmarshal(b, &t); err != nil {
			return nil, fmt.Errorf("parsing tezos subject: %w", err)
		}
		return t, nil
	case TypeTwitter, TypeGitHub, TypeReddit, TypeSoundCloud, TypeDNS, TypeEmail:
		h := Handle{Platform: tag.Type}
		var fields map[string]any
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, fmt.Errorf("parsing %s subject: %w", tag.Type, err)
		}
		value, ok := fields[h.field()].(string)
		if !ok {
			return nil, fmt.Errorf("parsing %s subject: missing %q", tag.Type, h.field())
		}
		h.Value = value
		return h, nil
	default:
		return nil, fmt.Errorf("unknown subject type %q", tag.Type)
	}
}

// Envelope carries a subject through encoding/json.
type Envelope struct {
	Subject Subject
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Subject == nil {
		return []byte("null"), nil
	}
	return Marshal(e.Subject)
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		e.Subject = nil
		return nil
	}
	s, err := Unmarshal(b)
	if err != nil {
		return err
	}
	e.Subject = s
	return nil
}
