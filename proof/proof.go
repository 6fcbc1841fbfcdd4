// Package proof pairs statements with their signatures and locators.
package proof

import (
	"fmt"

	"github.com/spruceid/rebase-sub001/content"
	"github.com/spruceid/rebase-sub001/failure"
	"github.com/spruceid/rebase-sub001/statement"
	"github.com/spruceid/rebase-sub001/subject"
)

// Proof is a statement with the signatures over its text. ToContent never
// verifies anything, callers verify first.
type Proof interface {
	Kind() statement.Kind
	Statement() statement.Statement
	// Generate is the text that should have been signed.
	Generate() (string, error)
	// Signatures in the order of the statement subjects.
	Signatures() []string
	ToContent(text, signature string) (content.Content, error)
	isProof()
	withStatement(st statement.Statement) (Proof, error)
}

const (
	StatementMismatch = "StatementMismatch"
	StatementFailure  = "Statement"
	SubjectFailure    = "Subject"
	KindMismatch      = "KindMismatch"
	MalformedProof    = "MalformedProof"
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

func kindMismatch(want statement.Kind, st statement.Statement) Error {
	if st == nil {
		return NewError(KindMismatch, fmt.Sprintf("%s proof without a statement", want), nil)
	}
	return NewError(KindMismatch, fmt.Sprintf("%s proof from a %s statement", want, st.Kind()), nil)
}

func generate(st statement.Statement) (string, error) {
	text, err := st.Generate()
	if err != nil {
		return "", NewError(StatementFailure, "generating statement", err)
	}
	return text, nil
}

// Match recomputes the statement text of p and requires it to equal text.
func Match(p Proof, text string) error {
	expected, err := p.Generate()
	if err != nil {
		return err
	}
	if expected != text {
		return NewError(StatementMismatch, fmt.Sprintf("%s: statement text does not match", p.Kind()), nil)
	}
	return nil
}

func subjectID(s subject.Subject) (string, error) {
	id, err := s.DID()
	if err != nil {
		return "", NewError(SubjectFailure, "subject DID", err)
	}
	return id, nil
}

func typeMarker(kind statement.Kind) []string {
	typ, _ := content.TypeOf(kind)
	return []string{typ + "Message"}
}

// linked builds the credential subject of a kind linking the subject to an
// account: id, sameAs, the claim fields, statement and signature.
func linked(kind statement.Kind, s subject.Subject, sameAs string, fields map[string]any, text, signature string) (map[string]any, error) {
	id, err := subjectID(s)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"id":        id,
		"type":      typeMarker(kind),
		"statement": text,
		"signature": signature,
	}
	if sameAs != "" {
		out["sameAs"] = sameAs
	}
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

// New builds the proof of a statement for kinds that need nothing but
// signatures. Kinds that carry a locator or a challenge have their own
// constructors.
func New(st statement.Statement, signatures ...string) (Proof, error) {
	if st == nil {
		return nil, NewError(MalformedProof, "missing statement", nil)
	}
	want := len(st.Subjects())
	if st.Kind() == statement.KindCrossKey {
		return nil, NewError(MalformedProof, "cross key proofs are built from a claim", nil)
	}
	if len(signatures) != want {
		return nil, NewError(MalformedProof, fmt.Sprintf("%s: %d signatures wanted: %d", st.Kind(), len(signatures), want), nil)
	}
	switch s := st.(type) {
	case statement.DNS:
		return NewDNS(s, signatures[0])
	case statement.SoundCloud:
		return NewSoundCloud(s, signatures[0])
	case statement.NFTOwnership:
		return NewNFTOwnership(s, signatures[0])
	case statement.POAPOwnership:
		return NewPOAPOwnership(s, signatures[0])
	case statement.SameController:
		return NewSameController(s, signatures[0], signatures[1])
	case statement.SelfIssued:
		return NewSelfIssued(s, signatures[0])
	default:
		return nil, NewError(MalformedProof, fmt.Sprintf("%s proofs need a locator", st.Kind()), nil)
	}
}
