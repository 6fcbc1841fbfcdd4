package subject

import (
	"context"
	"fmt"
	"strings"

	"github.com/spruceid/rebase-sub001/principal/tezos"
	"github.com/spruceid/rebase-sub001/signature"
)

// Tezos is an account address. Only tz1 (Ed25519) accounts with a known public
// key can be verified.
type Tezos struct {
	Address   string `json:"address"`
	PublicKey string `json:"public_key,omitempty"`
}

func NewTezos(address, publicKey string) Tezos {
	return Tezos{Address: address, PublicKey: publicKey}
}

func (t Tezos) isSubject() {}

func (t Tezos) Type() Type {
	return TypeTezos
}

func (t Tezos) Title() string {
	return "Tezos Address"
}

func (t Tezos) DID() (string, error) {
	id, err := tezos.DID(t.Address)
	if err != nil {
		return "", NewError(MalformedIdentifier, "invalid Tezos address", err)
	}
	return id.String(), nil
}

func (t Tezos) DisplayID() (string, error) {
	if _, err := tezos.ParseAddress(t.Address); err != nil {
		return "", NewError(MalformedIdentifier, "invalid Tezos address", err)
	}
	return t.Address, nil
}

func (t Tezos) ValidSignature(ctx context.Context, statement, sig string) error {
	kind, err := tezos.ParseAddress(t.Address)
	if err != nil {
		return NewError(MalformedIdentifier, "invalid Tezos address", err)
	}
	if kind != tezos.Tz1 {
		return NewError(Unimplemented, fmt.Sprintf("signature verification for %s accounts", t.Address[:3]), nil)
	}
	if t.PublicKey == "" {
		return NewError(Unimplemented, "signature verification without a public key", nil)
	}
	pub, err := tezos.ParsePublicKey(t.PublicKey)
	if err != nil {
		return NewError(MalformedIdentifier, "invalid Tezos public key", err)
	}
	addr, err := tezos.Address(pub)
	if err != nil {
		return NewError(MalformedIdentifier, "invalid Tezos public key", err)
	}
	if addr != t.Address {
		return NewError(InvalidSignature, fmt.Sprintf("public key belongs to %s, expected %s", addr, t.Address), nil)
	}

	var raw []byte
	if strings.HasPrefix(sig, "edsig") {
		raw, err = tezos.ParseSignature(sig)
	} else {
		raw, err = signature.ParseHex(sig)
	}
	if err != nil {
		return NewError(InvalidSignature, "malformed signature", err)
	}
	if !tezos.Verify(pub, []byte(statement), raw) {
		return NewError(InvalidSignature, fmt.Sprintf("signature does not verify for %s", t.Address), nil)
	}
	return nil
}
