package issuer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spruceid/rebase-sub001/content"
	"github.com/spruceid/rebase-sub001/principal/tezos"
	"github.com/spruceid/rebase-sub001/signature"
	"github.com/spruceid/rebase-sub001/signer"
	"github.com/spruceid/rebase-sub001/subject"
)

// signingMethod signs JWS with a signer and verifies them with a subject, so
// any key a signer supports can issue credentials.
type signingMethod struct {
	alg    string
	decode func(string) ([]byte, error)
	encode func([]byte) string
}

var (
	methodEdDSA = &signingMethod{"EdDSA", signature.ParseHex, signature.FormatHex}
	// ES256K-R carries the recovery id, as produced by Ethereum wallets.
	methodES256KR = &signingMethod{"ES256K-R", signature.ParseHex, func(b []byte) string { return "0x" + signature.FormatHex(b) }}
	// EdBlake2b is Ed25519 over the Blake2b digest of a Tezos packed message.
	methodEdBlake2b = &signingMethod{"EdBlake2b", tezos.ParseSignature, tezos.FormatSignature}
)

var methods = map[string]*signingMethod{
	methodEdDSA.alg:     methodEdDSA,
	methodES256KR.alg:   methodES256KR,
	methodEdBlake2b.alg: methodEdBlake2b,
}

func init() {
	// EdDSA is already registered by the library for plain keys
	for _, m := range []*signingMethod{methodES256KR, methodEdBlake2b} {
		jwt.RegisterSigningMethod(m.alg, func() jwt.SigningMethod { return m })
	}
}

func (m *signingMethod) Alg() string {
	return m.alg
}

func (m *signingMethod) Sign(signingString string, key any) ([]byte, error) {
	s, ok := key.(signer.Signer)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}
	sig, err := s.Sign(signingString)
	if err != nil {
		return nil, err
	}
	return m.decode(sig)
}

type verifyKey struct {
	ctx     context.Context
	subject subject.Subject
}

func (m *signingMethod) Verify(signingString string, sig []byte, key any) error {
	k, ok := key.(verifyKey)
	if !ok {
		return jwt.ErrInvalidKeyType
	}
	if err := k.subject.ValidSignature(k.ctx, signingString, m.encode(sig)); err != nil {
		return fmt.Errorf("%w: %w", jwt.ErrTokenSignatureInvalid, err)
	}
	return nil
}

// Claims of a JWT-VC.
type Claims struct {
	jwt.RegisteredClaims
	VC map[string]any `json:"vc"`
}

// JWT issues credentials as JWT-VCs.
type JWT struct {
	now    func() time.Time
	expiry time.Duration
}

type Option func(j *JWT)

// WithClock sets the time credentials are issued at.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

// WithExpiry makes credentials expire after d. Credentials never expire by
// default.
func WithExpiry(d time.Duration) Option {
	return func(j *JWT) {
		j.expiry = d
	}
}

func NewJWT(options ...Option) *JWT {
	j := &JWT{now: time.Now}
	for _, opt := range options {
		opt(j)
	}
	return j
}

func (j *JWT) Issue(ctx context.Context, c content.Content, s signer.Signer) (SignedCredential, error) {
	opts := s.ProofOptions()
	if opts == nil {
		return SignedCredential{}, NewError(IssueFailed, "signer has no proof options", nil)
	}
	method, ok := methods[opts.Algorithm]
	if !ok {
		return SignedCredential{}, NewError(IssueFailed, fmt.Sprintf("no JWS algorithm for %q", opts.Algorithm), signer.NewError(signer.Unimplemented, opts.Algorithm, nil))
	}
	issuer, err := s.DID()
	if err != nil {
		return SignedCredential{}, NewError(IssueFailed, "issuer DID", err)
	}
	link, err := content.Link(c)
	if err != nil {
		return SignedCredential{}, NewError(IssueFailed, "content link", err)
	}

	now := j.now().UTC().Truncate(time.Second)
	id := "urn:uuid:" + uuid.NewString()
	vc := content.Credential(c, issuer, now)
	vc["id"] = id

	sub, _ := c.Subject()["id"].(string)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    issuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		VC: vc,
	}
	if j.expiry > 0 {
		exp := now.Add(j.expiry)
		claims.ExpiresAt = jwt.NewNumericDate(exp)
		vc["expirationDate"] = exp.Format(time.RFC3339)
	}

	token := jwt.NewWithClaims(method, claims)
	token.Header["kid"] = opts.VerificationMethod
	encoded, err := token.SignedString(s)
	if err != nil {
		return SignedCredential{}, NewError(IssueFailed, "signing credential", err)
	}
	return SignedCredential{Format: FormatJWT, Encoded: encoded, Credential: vc, Link: link}, nil
}

// Verify checks a JWT-VC was signed by issuer and returns its claims.
func (j *JWT) Verify(ctx context.Context, token string, issuer subject.Subject) (*Claims, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	parsed, parts, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return nil, NewError(InvalidToken, "parsing token", err)
	}
	alg, _ := parsed.Header["alg"].(string)
	method, ok := methods[alg]
	if !ok {
		return nil, NewError(InvalidToken, fmt.Sprintf("unsupported alg %q", alg), nil)
	}
	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, NewError(InvalidToken, "decoding signature", err)
	}
	if err := method.Verify(strings.Join(parts[0:2], "."), sig, verifyKey{ctx, issuer}); err != nil {
		return nil, NewError(InvalidToken, "verifying signature", err)
	}

	id, err := issuer.DID()
	if err != nil {
		return nil, NewError(InvalidToken, "issuer DID", err)
	}
	if claims.Issuer != id {
		return nil, NewError(InvalidToken, fmt.Sprintf("issued by %s, not %s", claims.Issuer, id), nil)
	}
	validator := jwt.NewValidator(jwt.WithTimeFunc(j.now), jwt.WithIssuedAt())
	if err := validator.Validate(claims); err != nil {
		return nil, NewError(InvalidToken, "validating claims", err)
	}
	if claims.VC == nil {
		return nil, NewError(InvalidToken, "token has no vc claim", nil)
	}
	return claims, nil
}
