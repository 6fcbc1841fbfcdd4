// Package issuer wraps verified content in a signed credential envelope.
package issuer

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/spruceid/rebase-sub001/content"
	"github.com/spruceid/rebase-sub001/failure"
	"github.com/spruceid/rebase-sub001/signer"
)

// Format of a signed credential.
type Format string

const FormatJWT Format = "jwt_vc"

// SignedCredential is a credential envelope ready to be handed to its
// holder.
type SignedCredential struct {
	Format Format
	// Encoded is the envelope as exchanged, e.g. a compact JWS.
	Encoded string
	// Credential is the unsigned credential document inside the envelope.
	Credential map[string]any
	// Link addresses the content the credential was issued for.
	Link cid.Cid
}

// Issuer signs credentials for verified content.
type Issuer interface {
	Issue(ctx context.Context, c content.Content, s signer.Signer) (SignedCredential, error)
}

const (
	IssueFailed  = "IssueFailed"
	InvalidToken = "InvalidToken"
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
