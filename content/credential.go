package content

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
)

// Credential returns the unsigned credential document for c.
func Credential(c Content, issuer string, issued time.Time) map[string]any {
	doc := document(c)
	doc["issuer"] = issuer
	doc["issuanceDate"] = issued.UTC().Format(time.RFC3339)
	return doc
}

func document(c Content) map[string]any {
	doc := map[string]any{
		"@context":          c.Context(),
		"type":              c.Types(),
		"credentialSubject": c.Subject(),
	}
	if ev := c.Evidence(); ev != nil {
		doc["evidence"] = ev
	}
	return doc
}

// Canonical is the RFC 8785 form of the content, excluding issuer and dates.
func Canonical(c Content) ([]byte, error) {
	b, err := json.Marshal(document(c))
	if err != nil {
		return nil, fmt.Errorf("encoding content: %w", err)
	}
	out, err := jcs.Transform(b)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing content: %w", err)
	}
	return out, nil
}

// Link returns a CIDv1 of the canonical content. Identical content always has
// an identical link.
func Link(c Content) (cid.Cid, error) {
	b, err := Canonical(c)
	if err != nil {
		return cid.Undef, err
	}
	digest, err := multihash.Sum(b, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("hashing content: %w", err)
	}
	return cid.NewCidV1(uint64(multicodec.Json), digest), nil
}
