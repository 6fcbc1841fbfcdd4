// Package signer provides subjects that hold signing authority.
package signer

import (
	"fmt"

	"github.com/spruceid/rebase-sub001/failure"
	"github.com/spruceid/rebase-sub001/subject"
)

// Signer is a subject that can sign statements. For every signer s and
// message m, s.ValidSignature(ctx, m, s.Sign(m)) succeeds.
type Signer interface {
	subject.Subject
	subject.Viewer
	Sign(message string) (string, error)
	// Name is the human readable kind of signer used in cross key claims.
	Name() string
	// ID is the identifier the signer is known by, e.g. its address.
	ID() string
	ProofOptions() *ProofMetadata
}

// ProofMetadata describes how signatures of a signer appear in a credential
// proof.
type ProofMetadata struct {
	VerificationMethod string `json:"verificationMethod"`
	Type               string `json:"type"`
	ProofPurpose       string `json:"proofPurpose"`
	// Algorithm is the JWS "alg" of signatures made by this signer.
	Algorithm string `json:"-"`
}

const (
	SigningFailed = "SigningFailed"
	Unimplemented = "Unimplemented"
	Unauthorized  = "Unauthorized"
)

type Error struct {
	failure.NamedWithStackTrace
	message string
	cause   error
}

func (e Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause)
	}
	return e.message
}

func (e Error) Unwrap() error {
	return e.cause
}

func NewError(name, message string, cause error) Error {
	return Error{failure.NamedWithCurrentStackTrace(name), message, cause}
}
