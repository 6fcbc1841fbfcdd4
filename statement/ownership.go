package statement

import (
	"fmt"
	"time"

	"github.com/spruceid/rebase-sub001/subject"
)

// ParseIssuedAt strictly parses an RFC3339 timestamp.
func ParseIssuedAt(issuedAt string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, issuedAt)
	if err != nil {
		return time.Time{}, NewError(InvalidTimestamp, fmt.Sprintf("invalid issued_at %q", issuedAt), err)
	}
	return t, nil
}

// Ownership statements are bound to the time they were issued at.
type Ownership interface {
	Statement
	IssuedAt() (time.Time, error)
}

// NFTOwnership claims the subject holds a token from a contract.
type NFTOwnership struct {
	Subject  subject.Subject `json:"-"`
	Contract string          `json:"contract_address"`
	Network  string          `json:"network"`
	Issued   string          `json:"issued_at"`
}

func (s NFTOwnership) isStatement()                {}
func (s NFTOwnership) Kind() Kind                  { return KindNFTOwnership }
func (s NFTOwnership) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s NFTOwnership) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s NFTOwnership) IssuedAt() (time.Time, error) {
	return ParseIssuedAt(s.Issued)
}

func (s NFTOwnership) Generate() (string, error) {
	if _, err := s.IssuedAt(); err != nil {
		return "", err
	}
	if err := required(KindNFTOwnership, "contract_address", s.Contract, "network", s.Network); err != nil {
		return "", err
	}
	title, display, err := describe(s.Subject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"I am attesting that the %s %s owns an NFT from the contract %s on the network %s at time %s",
		title, display, s.Contract, s.Network, s.Issued,
	), nil
}

// POAPOwnership claims the subject holds the POAP of an event.
type POAPOwnership struct {
	Subject subject.Subject `json:"-"`
	EventID string          `json:"event_id"`
	Network string          `json:"network"`
	Issued  string          `json:"issued_at"`
}

func (s POAPOwnership) isStatement()                {}
func (s POAPOwnership) Kind() Kind                  { return KindPOAPOwnership }
func (s POAPOwnership) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s POAPOwnership) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s POAPOwnership) IssuedAt() (time.Time, error) {
	return ParseIssuedAt(s.Issued)
}

func (s POAPOwnership) Generate() (string, error) {
	if _, err := s.IssuedAt(); err != nil {
		return "", err
	}
	if err := required(KindPOAPOwnership, "event_id", s.EventID, "network", s.Network); err != nil {
		return "", err
	}
	title, display, err := describe(s.Subject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"I am attesting that the %s %s owns a POAP from the event %s on the network %s at time %s",
		title, display, s.EventID, s.Network, s.Issued,
	), nil
}
