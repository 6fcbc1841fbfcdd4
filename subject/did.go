package subject

import (
	"context"
	"fmt"
	"strings"

	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/resolver"
	"github.com/spruceid/rebase-sub001/signature"
)

// DID is a subject identified by a DID. Signatures are checked against the key
// the DID resolves to.
type DID struct {
	ID       string `json:"did"`
	resolver resolver.Resolver
}

func NewDID(id string) DID {
	return DID{ID: id}
}

// WithResolver returns a copy of s that resolves DIDs with r. Subjects other
// than [DID] are returned unchanged.
func WithResolver(s Subject, r resolver.Resolver) Subject {
	if d, ok := s.(DID); ok {
		d.resolver = r
		return d
	}
	return s
}

func (d DID) isSubject() {}

func (d DID) Type() Type {
	return TypeDID
}

func (d DID) Title() string {
	return "DID"
}

func (d DID) parse() (did.DID, error) {
	id, err := did.Parse(d.ID)
	if err != nil {
		return did.Undef, NewError(MalformedIdentifier, "invalid DID", err)
	}
	return id, nil
}

func (d DID) DID() (string, error) {
	id, err := d.parse()
	if err != nil {
		return "", err
	}
	base, _, _ := strings.Cut(id.String(), "#")
	return base, nil
}

func (d DID) DisplayID() (string, error) {
	return d.DID()
}

func (d DID) ValidSignature(ctx context.Context, statement, sig string) error {
	id, err := d.parse()
	if err != nil {
		return err
	}
	r := d.resolver
	if r == nil {
		r = resolver.NewKey()
	}
	v, err := r.Resolve(ctx, id)
	if err != nil {
		return NewError(ResolutionFailed, fmt.Sprintf("resolving %s", id), err)
	}
	switch v.SignatureCode() {
	case signature.EdDSA, signature.ES256K, signature.RS256:
	default:
		return NewError(Unimplemented, fmt.Sprintf("signature algorithm 0x%x", v.SignatureCode()), nil)
	}
	raw, err := signature.ParseHex(sig)
	if err != nil {
		return NewError(InvalidSignature, "malformed signature", err)
	}
	if !v.Verify([]byte(statement), signature.NewSignature(v.SignatureCode(), raw)) {
		return NewError(InvalidSignature, fmt.Sprintf("signature does not verify for %s", id), nil)
	}
	return nil
}
