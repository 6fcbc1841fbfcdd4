// Package resolver turns DIDs into the public key and signature algorithm
// they publish.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/failure"
	"github.com/spruceid/rebase-sub001/principal"
)

// Resolver resolves a DID to a verifier. The verifier carries the public key
// and, through its signature code, the algorithm the DID signs with.
type Resolver interface {
	Resolve(ctx context.Context, id did.DID) (principal.Verifier, error)
}

// ResolverFunc adapts a function to a [Resolver].
type ResolverFunc func(ctx context.Context, id did.DID) (principal.Verifier, error)

func (f ResolverFunc) Resolve(ctx context.Context, id did.DID) (principal.Verifier, error) {
	return f(ctx, id)
}

type ResolutionError struct {
	failure.NamedWithStackTrace
	id    did.DID
	cause error
}

func (re ResolutionError) Error() string {
	return fmt.Sprintf("unable to resolve %s: %s", re.id, re.cause)
}

func (re ResolutionError) DID() did.DID {
	return re.id
}

func (re ResolutionError) Unwrap() error {
	return re.cause
}

func NewResolutionError(id did.DID, cause error) ResolutionError {
	return ResolutionError{failure.NamedWithCurrentStackTrace("ResolutionError"), id, cause}
}

var ErrUnsupportedMethod = errors.New("unsupported DID method")

// Key resolves did:key identifiers offline.
type Key struct {
	parser Parser
}

func NewKey() Key {
	return Key{DefaultParser()}
}

func (k Key) Resolve(ctx context.Context, id did.DID) (principal.Verifier, error) {
	if id.Method() != "key" {
		return nil, NewResolutionError(id, ErrUnsupportedMethod)
	}
	v, err := k.parser.Parse(id.String())
	if err != nil {
		return nil, NewResolutionError(id, err)
	}
	return v, nil
}

// Composed dispatches on the DID method.
type Composed struct {
	methods map[string]Resolver
}

// Compose builds a resolver from resolvers keyed by DID method, e.g. "key"
// or "web".
func Compose(methods map[string]Resolver) Composed {
	m := make(map[string]Resolver, len(methods))
	for k, v := range methods {
		m[k] = v
	}
	return Composed{m}
}

func (c Composed) Resolve(ctx context.Context, id did.DID) (principal.Verifier, error) {
	r, ok := c.methods[id.Method()]
	if !ok {
		return nil, NewResolutionError(id, fmt.Errorf("%w: %s", ErrUnsupportedMethod, id.Method()))
	}
	return r.Resolve(ctx, id)
}

// Default resolves did:key offline and did:web over HTTPS.
func Default(options ...WebOption) Composed {
	return Compose(map[string]Resolver{
		"key": NewKey(),
		"web": NewWeb(options...),
	})
}
