package statement

import (
	"fmt"

	"github.com/spruceid/rebase-sub001/subject"
)

// SameController claims both subjects are controlled by the same party. Each
// signs the same text.
type SameController struct {
	ID1 subject.Subject `json:"-"`
	ID2 subject.Subject `json:"-"`
}

func (s SameController) isStatement()                {}
func (s SameController) Kind() Kind                  { return KindSameController }
func (s SameController) Subjects() []subject.Subject { return []subject.Subject{s.ID1, s.ID2} }
func (s SameController) withSubjects(ss []subject.Subject) Statement {
	s.ID1, s.ID2 = ss[0], ss[1]
	return s
}

func (s SameController) Generate() (string, error) {
	t1, d1, err := describe(s.ID1)
	if err != nil {
		return "", err
	}
	t2, d2, err := describe(s.ID2)
	if err != nil {
		return "", err
	}
	if d1 == d2 && t1 == t2 {
		return "", NewError(MalformedStatement, "same controller assertion links a subject to itself", nil)
	}
	return fmt.Sprintf("I am attesting that %s %s is linked to %s %s", t1, d1, t2, d2), nil
}

// CrossKey links two keys of different systems. The text matches the default
// cross key claim message of signers, "<name1> <id1> is linked to
// <name2> <id2>".
type CrossKey struct {
	Key1 subject.Subject `json:"-"`
	Key2 subject.Subject `json:"-"`
}

func (s CrossKey) isStatement()                {}
func (s CrossKey) Kind() Kind                  { return KindCrossKey }
func (s CrossKey) Subjects() []subject.Subject { return []subject.Subject{s.Key1, s.Key2} }
func (s CrossKey) withSubjects(ss []subject.Subject) Statement {
	s.Key1, s.Key2 = ss[0], ss[1]
	return s
}

func (s CrossKey) Generate() (string, error) {
	t1, d1, err := describe(s.Key1)
	if err != nil {
		return "", err
	}
	t2, d2, err := describe(s.Key2)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s is linked to %s %s", t1, d1, t2, d2), nil
}
