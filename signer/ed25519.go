package signer

import (
	"context"
	"fmt"

	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/principal"
	edverifier "github.com/spruceid/rebase-sub001/principal/ed25519/verifier"
	"github.com/spruceid/rebase-sub001/resolver"
	"github.com/spruceid/rebase-sub001/signature"
	"github.com/spruceid/rebase-sub001/subject"
)

// Ed25519 signs with an Ed25519 did:key.
type Ed25519 struct {
	subject.Subject
	key principal.Signer
}

func NewEd25519(key principal.Signer) (Ed25519, error) {
	if key.SignatureCode() != edverifier.SignatureCode {
		return Ed25519{}, NewError(Unimplemented, fmt.Sprintf("signature algorithm %s", key.SignatureAlgorithm()), nil)
	}
	return Ed25519{subject.NewDID(key.DID().String()), key}, nil
}

func (s Ed25519) AsSubject() subject.Subject {
	return s.Subject
}

func (s Ed25519) Name() string {
	return s.Title()
}

func (s Ed25519) ID() string {
	return s.key.DID().String()
}

func (s Ed25519) Sign(message string) (string, error) {
	return signature.FormatHex(s.key.Sign([]byte(message)).Raw()), nil
}

func (s Ed25519) ProofOptions() *ProofMetadata {
	id := s.key.DID()
	return &ProofMetadata{
		VerificationMethod: id.String() + "#" + id.Identifier(),
		Type:               "Ed25519Signature2020",
		ProofPurpose:       "assertionMethod",
		Algorithm:          edverifier.SignatureAlgorithm,
	}
}

// ControllerFragment names the verification method a did:web signer
// publishes its key under.
const ControllerFragment = "controller"

// DIDWeb signs with an Ed25519 key published in the DID document of a did:web
// identity.
type DIDWeb struct {
	subject.Subject
	key principal.PublishedSigner
}

func NewDIDWeb(key principal.Signer, id did.DID) (DIDWeb, error) {
	if id.Method() != "web" {
		return DIDWeb{}, NewError(Unimplemented, fmt.Sprintf("not a did:web: %s", id), nil)
	}
	if key.SignatureCode() != edverifier.SignatureCode {
		return DIDWeb{}, NewError(Unimplemented, fmt.Sprintf("signature algorithm %s", key.SignatureAlgorithm()), nil)
	}
	published, err := principal.PublishSigner(key, id)
	if err != nil {
		return DIDWeb{}, NewError(SigningFailed, "publishing key", err)
	}
	// verifying our own signatures does not depend on the document being
	// reachable
	self := resolver.ResolverFunc(func(ctx context.Context, target did.DID) (principal.Verifier, error) {
		if target != id {
			return nil, resolver.NewResolutionError(target, resolver.ErrUnsupportedMethod)
		}
		return published.Verifier(), nil
	})
	return DIDWeb{subject.WithResolver(subject.NewDID(id.String()), self), published}, nil
}

func (s DIDWeb) AsSubject() subject.Subject {
	return subject.WithResolver(s.Subject, nil)
}

func (s DIDWeb) Name() string {
	return s.Title()
}

func (s DIDWeb) ID() string {
	return s.key.DID().String()
}

func (s DIDWeb) Sign(message string) (string, error) {
	return signature.FormatHex(s.key.Sign([]byte(message)).Raw()), nil
}

func (s DIDWeb) ProofOptions() *ProofMetadata {
	return &ProofMetadata{
		VerificationMethod: s.key.DID().String() + "#" + ControllerFragment,
		Type:               "JsonWebSignature2020",
		ProofPurpose:       "assertionMethod",
		Algorithm:          edverifier.SignatureAlgorithm,
	}
}

// Document is the DID document to serve at the did:web location.
func (s DIDWeb) Document() (resolver.Document, error) {
	return resolver.NewDocument(s.key.DID(), ControllerFragment, s.key.Key().Verifier())
}
