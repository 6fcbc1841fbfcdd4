package verifier

import (
	"crypto/ed25519"
	"fmt"

	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/principal"
	"github.com/spruceid/rebase-sub001/principal/multiformat"
	"github.com/spruceid/rebase-sub001/signature"
)

const Code = 0xed
const Name = "Ed25519"

const SignatureCode = signature.EdDSA
const SignatureAlgorithm = "EdDSA"

const keySize = ed25519.PublicKeySize

// Parse a did:key string into an Ed25519 verifier.
func Parse(str string) (principal.Verifier, error) {
	id, err := did.Parse(str)
	if err != nil {
		return nil, fmt.Errorf("parsing DID: %w", err)
	}
	if id.Method() != "key" {
		return nil, fmt.Errorf("not a did:key: %s", str)
	}
	return Decode(id.Bytes())
}

// Decode a multicodec tagged Ed25519 public key.
func Decode(b []byte) (principal.Verifier, error) {
	raw, err := multiformat.UntagWith(Code, b, 0)
	if err != nil {
		return nil, err
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(raw), keySize)
	}
	v := make(Ed25519Verifier, len(b))
	copy(v, b)
	return v, nil
}

// FromRaw takes raw ed25519 public key bytes and tags with the ed25519 verifier
// multiformat code, returning an ed25519 verifier.
func FromRaw(b []byte) (principal.Verifier, error) {
	if len(b) != keySize {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(b), keySize)
	}
	return Ed25519Verifier(multiformat.TagWith(Code, b)), nil
}

type Ed25519Verifier []byte

func (v Ed25519Verifier) Code() uint64 {
	return Code
}

func (v Ed25519Verifier) SignatureCode() uint64 {
	return SignatureCode
}

func (v Ed25519Verifier) Verify(msg []byte, sig signature.Signature) bool {
	if sig.Code() != SignatureCode {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(v.Raw()), msg, sig.Raw())
}

func (v Ed25519Verifier) DID() did.DID {
	id, _ := did.Decode(v)
	return id
}

func (v Ed25519Verifier) Encode() []byte {
	return v
}

func (v Ed25519Verifier) Raw() []byte {
	b, _ := multiformat.UntagWith(Code, v, 0)
	return b
}
