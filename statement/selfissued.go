package statement

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"github.com/spruceid/rebase-sub001/subject"
)

// canonical renders the fields of a self issued statement as RFC 8785 JSON.
func canonical(s SelfIssued) (string, error) {
	fields, err := s.Fields()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", NewError(MalformedStatement, "encoding fields", err)
	}
	out, err := jcs.Transform(b)
	if err != nil {
		return "", NewError(MalformedStatement, "canonicalizing fields", err)
	}
	return string(out), nil
}

func withID(s subject.Subject, fields map[string]any) (map[string]any, error) {
	if s == nil {
		return nil, NewError(MalformedSubject, "missing subject", nil)
	}
	id, err := s.DID()
	if err != nil {
		return nil, NewError(MalformedSubject, "subject DID", err)
	}
	fields["id"] = id
	return fields, nil
}

func optional(fields map[string]any, name, value string) {
	if value != "" {
		fields[name] = value
	}
}

// BasicImage attests to an image the subject published.
type BasicImage struct {
	Subject subject.Subject `json:"-"`
	Src     string          `json:"src"`
}

func (s BasicImage) isStatement()                {}
func (s BasicImage) Kind() Kind                  { return KindBasicImage }
func (s BasicImage) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s BasicImage) Generate() (string, error)   { return canonical(s) }
func (s BasicImage) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s BasicImage) Fields() (map[string]any, error) {
	if err := required(KindBasicImage, "src", s.Src); err != nil {
		return nil, err
	}
	return withID(s.Subject, map[string]any{"src": s.Src})
}

// BasicPost attests to a post, optionally in reply to another.
type BasicPost struct {
	Subject subject.Subject `json:"-"`
	Title   string          `json:"title"`
	Body    string          `json:"body"`
	ReplyTo string          `json:"reply_to,omitempty"`
}

func (s BasicPost) isStatement()                {}
func (s BasicPost) Kind() Kind                  { return KindBasicPost }
func (s BasicPost) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s BasicPost) Generate() (string, error)   { return canonical(s) }
func (s BasicPost) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s BasicPost) Fields() (map[string]any, error) {
	if err := required(KindBasicPost, "title", s.Title, "body", s.Body); err != nil {
		return nil, err
	}
	fields := map[string]any{"title": s.Title, "body": s.Body}
	optional(fields, "reply_to", s.ReplyTo)
	return withID(s.Subject, fields)
}

// BasicTag tags users in a post.
type BasicTag struct {
	Subject subject.Subject `json:"-"`
	Post    string          `json:"post"`
	Users   []string        `json:"users"`
}

func (s BasicTag) isStatement()                {}
func (s BasicTag) Kind() Kind                  { return KindBasicTag }
func (s BasicTag) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s BasicTag) Generate() (string, error)   { return canonical(s) }
func (s BasicTag) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s BasicTag) Fields() (map[string]any, error) {
	if err := required(KindBasicTag, "post", s.Post); err != nil {
		return nil, err
	}
	if len(s.Users) == 0 {
		return nil, NewError(MalformedStatement, fmt.Sprintf("%s: users is required", KindBasicTag), nil)
	}
	users := make([]any, 0, len(s.Users))
	for _, u := range s.Users {
		if u == "" {
			return nil, NewError(MalformedStatement, fmt.Sprintf("%s: empty user", KindBasicTag), nil)
		}
		users = append(users, u)
	}
	return withID(s.Subject, map[string]any{"post": s.Post, "users": users})
}

// BasicProfile is the subject's public profile.
type BasicProfile struct {
	Subject     subject.Subject `json:"-"`
	Username    string          `json:"username"`
	Avatar      string          `json:"avatar,omitempty"`
	Description string          `json:"description,omitempty"`
	Website     string          `json:"website,omitempty"`
}

func (s BasicProfile) isStatement()                {}
func (s BasicProfile) Kind() Kind                  { return KindBasicProfile }
func (s BasicProfile) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s BasicProfile) Generate() (string, error)   { return canonical(s) }
func (s BasicProfile) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s BasicProfile) Fields() (map[string]any, error) {
	if err := required(KindBasicProfile, "username", s.Username); err != nil {
		return nil, err
	}
	fields := map[string]any{"username": s.Username}
	optional(fields, "avatar", s.Avatar)
	optional(fields, "description", s.Description)
	optional(fields, "website", s.Website)
	return withID(s.Subject, fields)
}

// Follow attests that the subject follows a target.
type Follow struct {
	Subject subject.Subject `json:"-"`
	Target  string          `json:"target"`
}

func (s Follow) isStatement()                {}
func (s Follow) Kind() Kind                  { return KindFollow }
func (s Follow) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s Follow) Generate() (string, error)   { return canonical(s) }
func (s Follow) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s Follow) Fields() (map[string]any, error) {
	if err := required(KindFollow, "target", s.Target); err != nil {
		return nil, err
	}
	return withID(s.Subject, map[string]any{"target": s.Target})
}

// Like attests that the subject likes a target.
type Like struct {
	Subject subject.Subject `json:"-"`
	Target  string          `json:"target"`
}

func (s Like) isStatement()                {}
func (s Like) Kind() Kind                  { return KindLike }
func (s Like) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s Like) Generate() (string, error)   { return canonical(s) }
func (s Like) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s Like) Fields() (map[string]any, error) {
	if err := required(KindLike, "target", s.Target); err != nil {
		return nil, err
	}
	return withID(s.Subject, map[string]any{"target": s.Target})
}

// MaxRating is the highest book review rating.
const MaxRating = 5

// BookReview is a rated review of a book.
type BookReview struct {
	Subject subject.Subject `json:"-"`
	Title   string          `json:"title"`
	Link    string          `json:"link"`
	Rating  int             `json:"rating"`
	Review  string          `json:"review"`
}

func (s BookReview) isStatement()                {}
func (s BookReview) Kind() Kind                  { return KindBookReview }
func (s BookReview) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s BookReview) Generate() (string, error)   { return canonical(s) }
func (s BookReview) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s BookReview) Fields() (map[string]any, error) {
	if err := required(KindBookReview, "title", s.Title, "link", s.Link, "review", s.Review); err != nil {
		return nil, err
	}
	if s.Rating < 0 || s.Rating > MaxRating {
		return nil, NewError(MalformedStatement, fmt.Sprintf("%s: rating %d out of range 0-%d", KindBookReview, s.Rating, MaxRating), nil)
	}
	return withID(s.Subject, map[string]any{
		"title":  s.Title,
		"link":   s.Link,
		"rating": s.Rating,
		"review": s.Review,
	})
}

// ProgressBookLink records reading progress, in percent, through a book.
type ProgressBookLink struct {
	Subject  subject.Subject `json:"-"`
	Link     string          `json:"link"`
	Progress int             `json:"progress"`
}

func (s ProgressBookLink) isStatement()                {}
func (s ProgressBookLink) Kind() Kind                  { return KindProgressBookLink }
func (s ProgressBookLink) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s ProgressBookLink) Generate() (string, error)   { return canonical(s) }
func (s ProgressBookLink) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s ProgressBookLink) Fields() (map[string]any, error) {
	if err := required(KindProgressBookLink, "link", s.Link); err != nil {
		return nil, err
	}
	if s.Progress < 0 || s.Progress > 100 {
		return nil, NewError(MalformedStatement, fmt.Sprintf("%s: progress %d out of range 0-100", KindProgressBookLink, s.Progress), nil)
	}
	return withID(s.Subject, map[string]any{"link": s.Link, "progress": s.Progress})
}

// DappPreferences are the subject's application settings.
type DappPreferences struct {
	Subject  subject.Subject `json:"-"`
	DarkMode bool            `json:"dark_mode"`
}

func (s DappPreferences) isStatement()                {}
func (s DappPreferences) Kind() Kind                  { return KindDappPreferences }
func (s DappPreferences) Subjects() []subject.Subject { return []subject.Subject{s.Subject} }
func (s DappPreferences) Generate() (string, error)   { return canonical(s) }
func (s DappPreferences) withSubjects(ss []subject.Subject) Statement {
	s.Subject = ss[0]
	return s
}

func (s DappPreferences) Fields() (map[string]any, error) {
	return withID(s.Subject, map[string]any{"dark_mode": s.DarkMode})
}
