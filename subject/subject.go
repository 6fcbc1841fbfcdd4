// Package subject defines the parties a statement is about and how their
// signatures are checked.
package subject

import (
	"context"
	"errors"
	"fmt"

	"github.com/spruceid/rebase-sub001/failure"
)

// Type is the wire tag of a subject.
type Type string

const (
	TypeDID        Type = "did"
	TypeEthereum   Type = "ethereum"
	TypeTezos      Type = "tezos"
	TypeTwitter    Type = "twitter"
	TypeGitHub     Type = "github"
	TypeReddit     Type = "reddit"
	TypeSoundCloud Type = "soundcloud"
	TypeDNS        Type = "dns"
	TypeEmail      Type = "email"
)

// Subject identifies a party that makes, or is the object of, a claim.
//
// DID and DisplayID are pure and only fail on malformed identifiers.
// ValidSignature is the only operation that may block and it never mutates
// the subject.
type Subject interface {
	Type() Type
	DID() (string, error)
	DisplayID() (string, error)
	// Title is the human readable kind of identifier used in statement text,
	// e.g. "Ethereum Address".
	Title() string
	ValidSignature(ctx context.Context, statement, signature string) error
	isSubject()
}

// Viewer is implemented by values that stand for a subject without being one
// of its variants, such as signers.
type Viewer interface {
	AsSubject() Subject
}

// View returns the underlying subject variant of s.
func View(s Subject) Subject {
	if v, ok := s.(Viewer); ok {
		return v.AsSubject()
	}
	return s
}

const (
	MalformedIdentifier = "MalformedIdentifier"
	ResolutionFailed    = "ResolutionFailed"
	InvalidSignature    = "InvalidSignature"
	Unimplemented       = "Unimplemented"
	NotVerifiable       = "NotVerifiable"
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

// IsUnimplemented reports whether err is a subject backend that is not
// supported, as opposed to a signature that failed to verify.
func IsUnimplemented(err error) bool {
	var se Error
	return errors.As(err, &se) && se.Name() == Unimplemented
}
