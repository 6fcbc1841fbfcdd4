package verifier

import (
	"crypto/sha256"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/principal"
	"github.com/spruceid/rebase-sub001/principal/multiformat"
	"github.com/spruceid/rebase-sub001/signature"
)

const Code = 0xe7
const Name = "Secp256k1"

const SignatureCode = signature.ES256K
const SignatureAlgorithm = "ES256K"

const keySize = 33

// Parse a did:key carrying a compressed secp256k1 public key (zQ3s...).
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

func Decode(b []byte) (principal.Verifier, error) {
	raw, err := multiformat.UntagWith(Code, b, 0)
	if err != nil {
		return nil, err
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(raw), keySize)
	}
	if _, err := ethcrypto.DecompressPubkey(raw); err != nil {
		return nil, fmt.Errorf("decompressing public key: %w", err)
	}
	v := make(Secp256k1Verifier, len(b))
	copy(v, b)
	return v, nil
}

// FromRaw takes a 33 byte compressed public key.
func FromRaw(b []byte) (principal.Verifier, error) {
	return Decode(multiformat.TagWith(Code, b))
}

type Secp256k1Verifier []byte

func (v Secp256k1Verifier) Code() uint64 {
	return Code
}

func (v Secp256k1Verifier) SignatureCode() uint64 {
	return SignatureCode
}

// Verify checks a 64 byte r||s signature over the SHA-256 digest of msg.
func (v Secp256k1Verifier) Verify(msg []byte, sig signature.Signature) bool {
	if sig.Code() != SignatureCode {
		return false
	}
	raw := sig.Raw()
	if len(raw) == 65 {
		raw = raw[:64]
	}
	if len(raw) != 64 {
		return false
	}
	digest := sha256.Sum256(msg)
	return ethcrypto.VerifySignature(v.Raw(), digest[:], raw)
}

func (v Secp256k1Verifier) DID() did.DID {
	id, _ := did.Decode(v)
	return id
}

func (v Secp256k1Verifier) Encode() []byte {
	return v
}

func (v Secp256k1Verifier) Raw() []byte {
	b, _ := multiformat.UntagWith(Code, v, 0)
	return b
}
