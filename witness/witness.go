// Package witness verifies proofs, cross checking witnessed claims against
// the third party content they were published in.
//
// Every flow moves through the same states:
//
//	StatementRequested → StatementSigned → EvidenceFetched → Verified | Rejected
//
// The statement text is recomputed before any signature is checked and
// signatures are checked before any evidence is fetched. Nothing is retried.
package witness

import (
	"errors"
	"fmt"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spruceid/rebase-sub001/failure"
	"github.com/spruceid/rebase-sub001/resolver"
	"go.uber.org/zap"
)

// State of a witness flow.
type State string

const (
	StatementRequested State = "StatementRequested"
	StatementSigned    State = "StatementSigned"
	EvidenceFetched    State = "EvidenceFetched"
	Verified           State = "Verified"
	Rejected           State = "Rejected"
)

// Reason codes of a rejection.
const (
	StatementMismatch   = "StatementMismatch"
	MalformedStatement  = "MalformedStatement"
	InvalidSignature    = "InvalidSignature"
	ResolutionFailed    = "ResolutionFailed"
	Unimplemented       = "Unimplemented"
	EvidenceUnreachable = "EvidenceUnreachable"
	EvidenceMismatch    = "EvidenceMismatch"
	Aborted             = "Aborted"
	Expired             = "Expired"
	KindMismatch        = "KindMismatch"
	ContentError        = "ContentError"
)

// RejectedError is the terminal failure of a flow. Stage is the state whose
// checks failed.
type RejectedError struct {
	failure.NamedWithStackTrace
	stage   State
	message string
	cause   error
}

func (e RejectedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("rejected at %s: %s: %s", e.stage, e.message, e.cause)
	}
	return fmt.Sprintf("rejected at %s: %s", e.stage, e.message)
}

func (e RejectedError) Unwrap() error {
	return e.cause
}

func (e RejectedError) Stage() State {
	return e.stage
}

// Reason is the stable reason code of the rejection.
func (e RejectedError) Reason() string {
	return e.Name()
}

func NewRejectedError(stage State, reason, message string, cause error) RejectedError {
	return RejectedError{failure.NamedWithCurrentStackTrace(reason), stage, message, cause}
}

// Rejection is a rejection as handed to remote callers. It carries no stack
// trace.
type Rejection struct {
	failure.Model
	Stage State `json:"stage,omitempty"`
}

// Model renders the rejection for a remote caller.
func (e RejectedError) Model() Rejection {
	m := failure.FromError(e)
	m.Stack = nil
	return Rejection{m, e.stage}
}

// RejectionOf renders any error a flow returned. Errors that are not
// rejections keep their name, if they have one, and have no stage.
func RejectionOf(err error) Rejection {
	var re RejectedError
	if errors.As(err, &re) {
		return re.Model()
	}
	m := failure.FromError(err)
	m.Stack = nil
	return Rejection{Model: m}
}

func reasonOf(err error) string {
	var re RejectedError
	if errors.As(err, &re) {
		return re.Reason()
	}
	return ""
}

// IsAborted reports whether a flow stopped because its caller cancelled it.
func IsAborted(err error) bool {
	return reasonOf(err) == Aborted
}

// IsUnimplemented reports whether a flow hit a backend that is not
// supported. Retrying will not help.
func IsUnimplemented(err error) bool {
	return reasonOf(err) == Unimplemented
}

// ReasonOf returns the reason code of a rejection, or the empty string.
func ReasonOf(err error) string {
	return reasonOf(err)
}

const (
	DefaultTimeout         = 10 * time.Second
	DefaultMaxStatementAge = 15 * time.Minute
	DefaultChallengeTTL    = 30 * time.Minute
	DefaultClockSkew       = time.Minute
	DefaultDNSPrefix       = "rebase"
)

// Config is read only once a flow has been built from it.
type Config struct {
	// Timeout bounds every evidence fetch.
	Timeout time.Duration
	// MaxStatementAge is how old an ownership statement may be.
	MaxStatementAge time.Duration
	// ClockSkew is how far in the future a timestamp may be.
	ClockSkew time.Duration
	// ChallengeTTL is how long a mailed challenge stays valid.
	ChallengeTTL time.Duration
	// ChallengeSecret keys the email challenge HMAC.
	ChallengeSecret []byte
	DNSPrefix       string
	// Resolver resolves DID subjects. Without one only did:key subjects
	// verify.
	Resolver resolver.Resolver
	Now      func() time.Time
	Logger   *zap.SugaredLogger
}

func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		MaxStatementAge: DefaultMaxStatementAge,
		ClockSkew:       DefaultClockSkew,
		ChallengeTTL:    DefaultChallengeTTL,
		DNSPrefix:       DefaultDNSPrefix,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxStatementAge <= 0 {
		c.MaxStatementAge = d.MaxStatementAge
	}
	if c.ClockSkew < 0 {
		c.ClockSkew = 0
	}
	if c.ChallengeTTL <= 0 {
		c.ChallengeTTL = d.ChallengeTTL
	}
	if c.DNSPrefix == "" {
		c.DNSPrefix = d.DNSPrefix
	}
	if c.Resolver == nil {
		c.Resolver = resolver.NewKey()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = &logging.Logger("witness").SugaredLogger
	}
	return c
}
