package resolver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/multiformats/go-multibase"
	"github.com/spruceid/rebase-sub001/did"
	fhttp "github.com/spruceid/rebase-sub001/fetch/http"
	"github.com/spruceid/rebase-sub001/principal"
	edverifier "github.com/spruceid/rebase-sub001/principal/ed25519/verifier"
	secpverifier "github.com/spruceid/rebase-sub001/principal/secp256k1/verifier"
)

// JWK is the subset of a JSON Web Key needed for the key types did:web
// documents publish here.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y,omitempty"`
}

type VerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyJwk       *JWK   `json:"publicKeyJwk,omitempty"`
	PublicKeyMultibase string `json:"publicKeyMultibase,omitempty"`
}

// Document is a DID document as served at a did:web location.
type Document struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	AssertionMethod    []string             `json:"assertionMethod,omitempty"`
}

// NewDocument builds the document publishing an Ed25519 key under id as the
// verification method id#fragment.
func NewDocument(id did.DID, fragment string, key principal.Verifier) (Document, error) {
	if key.Code() != edverifier.Code {
		return Document{}, fmt.Errorf("unsupported key codec: 0x%x", key.Code())
	}
	vm := VerificationMethod{
		ID:         id.String() + "#" + fragment,
		Type:       "JsonWebKey2020",
		Controller: id.String(),
		PublicKeyJwk: &JWK{
			Kty: "OKP",
			Crv: "Ed25519",
			X:   base64.RawURLEncoding.EncodeToString(key.Raw()),
		},
	}
	return Document{
		Context:            []string{"https://www.w3.org/ns/did/v1", "https://w3id.org/security/suites/jws-2020/v1"},
		ID:                 id.String(),
		VerificationMethod: []VerificationMethod{vm},
		AssertionMethod:    []string{vm.ID},
	}, nil
}

type webConfig struct {
	channel *fhttp.Channel
}

type WebOption func(cfg *webConfig)

// WithChannel configures the HTTP channel documents are fetched with.
func WithChannel(ch *fhttp.Channel) WebOption {
	return func(cfg *webConfig) {
		cfg.channel = ch
	}
}

// Web resolves did:web identifiers by fetching their DID document.
type Web struct {
	channel *fhttp.Channel
}

func NewWeb(options ...WebOption) Web {
	cfg := webConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.channel == nil {
		cfg.channel = fhttp.NewChannel()
	}
	return Web{cfg.channel}
}

var ErrNoVerificationMethod = errors.New("no usable verification method")

func (w Web) Resolve(ctx context.Context, id did.DID) (principal.Verifier, error) {
	if id.Method() != "web" {
		return nil, NewResolutionError(id, ErrUnsupportedMethod)
	}
	base, fragment, _ := strings.Cut(id.String(), "#")
	baseID, err := did.Parse(base)
	if err != nil {
		return nil, NewResolutionError(id, err)
	}
	location, err := DocumentURL(baseID)
	if err != nil {
		return nil, NewResolutionError(id, err)
	}

	var doc Document
	if err := w.channel.GetJSON(ctx, location, &doc); err != nil {
		return nil, NewResolutionError(id, err)
	}
	if doc.ID != baseID.String() {
		return nil, NewResolutionError(id, fmt.Errorf("document id %q does not match", doc.ID))
	}

	vm, ok := selectMethod(doc, fragment)
	if !ok {
		return nil, NewResolutionError(id, ErrNoVerificationMethod)
	}
	key, err := methodVerifier(vm)
	if err != nil {
		return nil, NewResolutionError(id, err)
	}
	published, err := principal.Publish(key, baseID)
	if err != nil {
		return nil, NewResolutionError(id, err)
	}
	return published, nil
}

// DocumentURL maps a did:web identifier to the HTTPS location of its
// document. did:web:example.com resolves to
// https://example.com/.well-known/did.json and did:web:example.com:u:alice to
// https://example.com/u/alice/did.json.
func DocumentURL(id did.DID) (string, error) {
	parts := strings.Split(id.Identifier(), ":")
	host, err := url.PathUnescape(parts[0])
	if err != nil {
		return "", fmt.Errorf("decoding host: %w", err)
	}
	if host == "" || strings.ContainsAny(host, "/?#") {
		return "", fmt.Errorf("invalid did:web host %q", host)
	}
	if len(parts) == 1 {
		return "https://" + host + "/.well-known/did.json", nil
	}
	path := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		seg, err := url.PathUnescape(p)
		if err != nil {
			return "", fmt.Errorf("decoding path: %w", err)
		}
		path = append(path, url.PathEscape(seg))
	}
	return "https://" + host + "/" + strings.Join(path, "/") + "/did.json", nil
}

func selectMethod(doc Document, fragment string) (VerificationMethod, bool) {
	if fragment != "" {
		for _, vm := range doc.VerificationMethod {
			if vm.ID == doc.ID+"#"+fragment || vm.ID == "#"+fragment {
				return vm, true
			}
		}
		return VerificationMethod{}, false
	}
	for _, ref := range doc.AssertionMethod {
		for _, vm := range doc.VerificationMethod {
			if vm.ID == ref {
				return vm, true
			}
		}
	}
	if len(doc.VerificationMethod) > 0 {
		return doc.VerificationMethod[0], true
	}
	return VerificationMethod{}, false
}

func methodVerifier(vm VerificationMethod) (principal.Verifier, error) {
	if vm.PublicKeyMultibase != "" {
		_, b, err := multibase.Decode(vm.PublicKeyMultibase)
		if err != nil {
			return nil, fmt.Errorf("decoding publicKeyMultibase: %w", err)
		}
		// Ed25519VerificationKey2020 carries a tagged key, the 2018 suite a raw one
		if vm.Type == "Ed25519VerificationKey2018" {
			return edverifier.FromRaw(b)
		}
		return DecodeVerifier(b)
	}
	if vm.PublicKeyJwk == nil {
		return nil, fmt.Errorf("verification method %s has no public key", vm.ID)
	}
	return jwkVerifier(*vm.PublicKeyJwk)
}

func jwkVerifier(jwk JWK) (principal.Verifier, error) {
	x, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, fmt.Errorf("decoding JWK x: %w", err)
	}
	switch {
	case jwk.Kty == "OKP" && jwk.Crv == "Ed25519":
		return edverifier.FromRaw(x)
	case jwk.Kty == "EC" && jwk.Crv == "secp256k1":
		y, err := base64.RawURLEncoding.DecodeString(jwk.Y)
		if err != nil {
			return nil, fmt.Errorf("decoding JWK y: %w", err)
		}
		if len(x) != 32 || len(y) != 32 {
			return nil, fmt.Errorf("invalid secp256k1 JWK coordinates")
		}
		pub, err := ethcrypto.UnmarshalPubkey(append(append([]byte{0x04}, x...), y...))
		if err != nil {
			return nil, fmt.Errorf("parsing secp256k1 JWK: %w", err)
		}
		return secpverifier.FromRaw(ethcrypto.CompressPubkey(pub))
	default:
		return nil, fmt.Errorf("unsupported JWK %s/%s", jwk.Kty, jwk.Crv)
	}
}
