package principal

import (
	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/signature"
)

// Principal is anything identified by a DID.
type Principal interface {
	DID() did.DID
}

// Verifier checks signatures produced by the corresponding [Signer]. It
// carries both the public key and the signature algorithm it verifies.
type Verifier interface {
	Principal
	Code() uint64
	// SignatureCode is the [signature] algorithm code this key verifies.
	SignatureCode() uint64
	// Takes byte encoded message and verifies that it is signed by corresponding
	// signer.
	Verify(msg []byte, sig signature.Signature) bool
	Encode() []byte
	// Raw public key bytes (without multiformat tag).
	Raw() []byte
}

type Signer interface {
	Principal
	// Takes byte encoded message and produces a verifiable signature.
	Sign(msg []byte) signature.Signature
	Code() uint64
	SignatureCode() uint64
	SignatureAlgorithm() string
	Verifier() Verifier
	Encode() []byte
	// Raw private key bytes (without multiformat tag).
	Raw() []byte
}
