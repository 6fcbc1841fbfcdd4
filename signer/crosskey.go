package signer

import (
	"context"
	"fmt"
	"strings"

	"github.com/spruceid/rebase-sub001/subject"
)

// DefaultDelimiter separates the message and the two signatures of a cross
// key claim.
const DefaultDelimiter = "\n\n"

// Named is the part of a signer a cross key message is built from.
type Named interface {
	Name() string
	ID() string
}

// Party is a subject that can take part in a cross key claim.
type Party interface {
	subject.Subject
	Named
}

type MessageFunc func(a, b Named) (string, error)

type claimConfig struct {
	message   MessageFunc
	delimiter string
}

type ClaimOption func(cfg *claimConfig)

// WithMessage overrides the message both signers sign.
func WithMessage(fn MessageFunc) ClaimOption {
	return func(cfg *claimConfig) {
		cfg.message = fn
	}
}

func WithDelimiter(delim string) ClaimOption {
	return func(cfg *claimConfig) {
		cfg.delimiter = delim
	}
}

// DefaultMessage is "<name1> <id1> is linked to <name2> <id2>".
func DefaultMessage(a, b Named) (string, error) {
	return fmt.Sprintf("%s %s is linked to %s %s", a.Name(), a.ID(), b.Name(), b.ID()), nil
}

func newClaimConfig(options []ClaimOption) claimConfig {
	cfg := claimConfig{message: DefaultMessage, delimiter: DefaultDelimiter}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// CrossKeyClaim has a and b sign the same message and returns
// message + delimiter + signature of a + delimiter + signature of b.
func CrossKeyClaim(a, b Signer, options ...ClaimOption) (string, error) {
	cfg := newClaimConfig(options)
	if cfg.delimiter == "" {
		return "", NewError(SigningFailed, "empty delimiter", nil)
	}
	msg, err := cfg.message(a, b)
	if err != nil {
		return "", NewError(SigningFailed, "building message", err)
	}
	sig1, err := a.Sign(msg)
	if err != nil {
		return "", err
	}
	sig2, err := b.Sign(msg)
	if err != nil {
		return "", err
	}
	if strings.Contains(sig1, cfg.delimiter) || strings.Contains(sig2, cfg.delimiter) {
		return "", NewError(SigningFailed, "signature contains the delimiter", nil)
	}
	return msg + cfg.delimiter + sig1 + cfg.delimiter + sig2, nil
}

// ParseCrossKeyClaim splits a claim into its message and signatures. The
// message may itself contain the delimiter, the signatures may not.
func ParseCrossKeyClaim(claim, delim string) (message, sig1, sig2 string, err error) {
	if delim == "" {
		return "", "", "", fmt.Errorf("empty delimiter")
	}
	i := strings.LastIndex(claim, delim)
	if i < 0 {
		return "", "", "", fmt.Errorf("claim has no signatures")
	}
	sig2 = claim[i+len(delim):]
	rest := claim[:i]
	j := strings.LastIndex(rest, delim)
	if j < 0 {
		return "", "", "", fmt.Errorf("claim has a single signature")
	}
	message, sig1 = rest[:j], rest[j+len(delim):]
	if message == "" || sig1 == "" || sig2 == "" {
		return "", "", "", fmt.Errorf("claim has empty parts")
	}
	return message, sig1, sig2, nil
}

// VerifyCrossKeyClaim recomputes the message for a and b and checks both
// signatures in the claim.
func VerifyCrossKeyClaim(ctx context.Context, a, b Party, claim string, options ...ClaimOption) error {
	cfg := newClaimConfig(options)
	msg, sig1, sig2, err := ParseCrossKeyClaim(claim, cfg.delimiter)
	if err != nil {
		return subject.NewError(subject.InvalidSignature, "malformed cross key claim", err)
	}
	expected, err := cfg.message(a, b)
	if err != nil {
		return subject.NewError(subject.InvalidSignature, "building message", err)
	}
	if msg != expected {
		return subject.NewError(subject.InvalidSignature, "cross key message mismatch", nil)
	}
	if err := a.ValidSignature(ctx, msg, sig1); err != nil {
		return err
	}
	return b.ValidSignature(ctx, msg, sig2)
}
