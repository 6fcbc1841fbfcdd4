package principal

import (
	"fmt"

	"github.com/spruceid/rebase-sub001/did"
)

// PublishedVerifier is a did:key verifier published under another DID, such
// as a key listed in a did:web document. It verifies with the key and reports
// the published DID.
type PublishedVerifier struct {
	Verifier
	id did.DID
}

func (p PublishedVerifier) DID() did.DID {
	return p.id
}

// Key is the did:key verifier the DID publishes.
func (p PublishedVerifier) Key() Verifier {
	return p.Verifier
}

// Publish presents key under id. Only did:key verifiers can be published, so
// an already published key cannot be nested.
func Publish(key Verifier, id did.DID) (PublishedVerifier, error) {
	if key.DID().Method() != "key" {
		return PublishedVerifier{}, fmt.Errorf("cannot publish %s: not a did:key", key.DID())
	}
	return PublishedVerifier{key, id}, nil
}

// PublishedSigner signs with a did:key under another DID.
type PublishedSigner struct {
	Signer
	verifier PublishedVerifier
}

func (p PublishedSigner) DID() did.DID {
	return p.verifier.DID()
}

func (p PublishedSigner) Verifier() Verifier {
	return p.verifier
}

// Key is the did:key signer signing for the DID.
func (p PublishedSigner) Key() Signer {
	return p.Signer
}

func PublishSigner(key Signer, id did.DID) (PublishedSigner, error) {
	v, err := Publish(key.Verifier(), id)
	if err != nil {
		return PublishedSigner{}, err
	}
	return PublishedSigner{key, v}, nil
}
