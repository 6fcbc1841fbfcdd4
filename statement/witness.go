package statement

import (
	"fmt"
	"strings"

	"github.com/spruceid/rebase-sub001/subject"
)

func linkedTo(s subject.Subject) (string, error) {
	title, display, err := describe(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("is linked to the %s %s", title, display), nil
}

func handle(kind Kind, name, value string) error {
	if err := required(kind, name, value); err != nil {
		return err
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return NewError(MalformedStatement, fmt.Sprintf("%s: %s contains whitespace", kind, name), nil)
	}
	return nil
}

// DNS links a domain to a subject through a TXT record.
type DNS struct {
	Subject subject.Subject `json:"-"`
	Domain  string          `json:"domain"`
}

func (s DNS) isStatement()                {}
func (s DNS) Kind() Kind                  { return KindDNS }
func (s DNS) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s DNS) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s DNS) Generate() (string, error) {
	if err := handle(KindDNS, "domain", s.Domain); err != nil {
		return "", err
	}
	_, display, err := describe(s.Subject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s is linked to %s", s.Domain, display), nil
}

// Email links an email address to a subject through a mailed challenge.
type Email struct {
	Subject subject.Subject `json:"-"`
	Email   string          `json:"email"`
}

func (s Email) isStatement()                {}
func (s Email) Kind() Kind                  { return KindEmail }
func (s Email) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s Email) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s Email) Generate() (string, error) {
	if err := handle(KindEmail, "email", s.Email); err != nil {
		return "", err
	}
	if local, domain, ok := strings.Cut(s.Email, "@"); !ok || local == "" || domain == "" {
		return "", NewError(MalformedStatement, fmt.Sprintf("invalid email address %q", s.Email), nil)
	}
	tail, err := linkedTo(s.Subject)
	if err != nil {
		return "", err
	}
	return s.Email + " " + tail, nil
}

// GitHub links a GitHub account to a subject through a gist.
type GitHub struct {
	Subject subject.Subject `json:"-"`
	Handle  string          `json:"handle"`
}

func (s GitHub) isStatement()                {}
func (s GitHub) Kind() Kind                  { return KindGitHub }
func (s GitHub) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s GitHub) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s GitHub) Generate() (string, error) {
	if err := handle(KindGitHub, "handle", s.Handle); err != nil {
		return "", err
	}
	tail, err := linkedTo(s.Subject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("I am attesting that this GitHub handle %s %s", s.Handle, tail), nil
}

// Twitter links a Twitter account to a subject through a tweet.
type Twitter struct {
	Subject subject.Subject `json:"-"`
	Handle  string          `json:"handle"`
}

func (s Twitter) isStatement()                {}
func (s Twitter) Kind() Kind                  { return KindTwitter }
func (s Twitter) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s Twitter) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s Twitter) Generate() (string, error) {
	if err := handle(KindTwitter, "handle", s.Handle); err != nil {
		return "", err
	}
	tail, err := linkedTo(s.Subject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("I am attesting that this twitter handle @%s %s", s.Handle, tail), nil
}

// Reddit links a Reddit account to a subject through a post.
type Reddit struct {
	Subject subject.Subject `json:"-"`
	Handle  string          `json:"handle"`
}

func (s Reddit) isStatement()                {}
func (s Reddit) Kind() Kind                  { return KindReddit }
func (s Reddit) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s Reddit) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s Reddit) Generate() (string, error) {
	if err := handle(KindReddit, "handle", s.Handle); err != nil {
		return "", err
	}
	tail, err := linkedTo(s.Subject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("I am attesting that this Reddit handle u/%s %s", s.Handle, tail), nil
}

// SoundCloud links a SoundCloud profile to a subject through its
// description.
type SoundCloud struct {
	Subject   subject.Subject `json:"-"`
	Permalink string          `json:"permalink"`
}

func (s SoundCloud) isStatement()                {}
func (s SoundCloud) Kind() Kind                  { return KindSoundCloud }
func (s SoundCloud) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s SoundCloud) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s SoundCloud) Generate() (string, error) {
	if err := handle(KindSoundCloud, "permalink", s.Permalink); err != nil {
		return "", err
	}
	tail, err := linkedTo(s.Subject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("I am attesting that this SoundCloud profile %s %s", s.Permalink, tail), nil
}
