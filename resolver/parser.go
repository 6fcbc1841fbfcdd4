package resolver

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-varint"
	"github.com/spruceid/rebase-sub001/principal"
	edverifier "github.com/spruceid/rebase-sub001/principal/ed25519/verifier"
	rsaverifier "github.com/spruceid/rebase-sub001/principal/rsa/verifier"
	secpverifier "github.com/spruceid/rebase-sub001/principal/secp256k1/verifier"
)

// DecodeVerifier decodes a multiformat encoded public key to the appropriate
// verifier implementation based on the codec prefix.
func DecodeVerifier(encoded []byte) (principal.Verifier, error) {
	code, err := varint.ReadUvarint(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("reading verifier codec: %w", err)
	}

	switch code {
	case edverifier.Code:
		return edverifier.Decode(encoded)
	case secpverifier.Code:
		return secpverifier.Decode(encoded)
	case rsaverifier.Code:
		return rsaverifier.Decode(encoded)
	default:
		return nil, fmt.Errorf("unsupported verifier codec: 0x%x", code)
	}
}

// ComposedParser implements a parser that tries multiple principal parsers
type ComposedParser struct {
	parsers []Parser
}

// Parser parses a did:key into a verifier.
type Parser interface {
	Parse(did string) (principal.Verifier, error)
}

// NewComposedParser creates a new composed parser with the given parsers
func NewComposedParser(parsers ...Parser) *ComposedParser {
	return &ComposedParser{parsers: parsers}
}

// Parse attempts to parse the DID using each parser in sequence
func (cp *ComposedParser) Parse(did string) (principal.Verifier, error) {
	if len(did) < 4 || did[:4] != "did:" {
		return nil, fmt.Errorf("expected DID but got %s", did)
	}

	var lastErr error
	for _, parser := range cp.parsers {
		if v, err := parser.Parse(did); err == nil {
			return v, nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("unsupported DID %s: %w", did, lastErr)
	}
	return nil, fmt.Errorf("unsupported DID %s", did)
}

// Or adds another parser to the composed parser
func (cp *ComposedParser) Or(parser Parser) *ComposedParser {
	return &ComposedParser{parsers: append(cp.parsers, parser)}
}

type Ed25519Parser struct{}

func (p Ed25519Parser) Parse(did string) (principal.Verifier, error) {
	return edverifier.Parse(did)
}

type Secp256k1Parser struct{}

func (p Secp256k1Parser) Parse(did string) (principal.Verifier, error) {
	return secpverifier.Parse(did)
}

type RSAParser struct{}

func (p RSAParser) Parse(did string) (principal.Verifier, error) {
	return rsaverifier.Parse(did)
}

// DefaultParser returns a composed parser with all supported key types
func DefaultParser() *ComposedParser {
	return NewComposedParser(
		Ed25519Parser{},
		Secp256k1Parser{},
		RSAParser{},
	)
}
