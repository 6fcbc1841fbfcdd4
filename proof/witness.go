package proof

import (
	"github.com/spruceid/rebase-sub001/content"
	"github.com/spruceid/rebase-sub001/statement"
)

// DNS proves a domain through a TXT record carrying the statement.
type DNS struct {
	Stmt      statement.DNS `json:"-"`
	Signature string        `json:"signature"`
}

func NewDNS(st statement.Statement, signature string) (DNS, error) {
	s, ok := st.(statement.DNS)
	if !ok {
		return DNS{}, kindMismatch(statement.KindDNS, st)
	}
	return DNS{s, signature}, nil
}

func (p DNS) isProof()                       {}
func (p DNS) Kind() statement.Kind           { return statement.KindDNS }
func (p DNS) Statement() statement.Statement { return p.Stmt }
func (p DNS) Generate() (string, error)      { return generate(p.Stmt) }
func (p DNS) Signatures() []string           { return []string{p.Signature} }

func (p DNS) withStatement(st statement.Statement) (Proof, error) {
	return NewDNS(st, p.Signature)
}

func (p DNS) ToContent(text, signature string) (content.Content, error) {
	subject, err := linked(p.Kind(), p.Stmt.Subject, "dns:"+p.Stmt.Domain, map[string]any{"domain": p.Stmt.Domain}, text, signature)
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, nil)
}

// Email proves an address through the challenge mailed to it.
type Email struct {
	Stmt      statement.Email `json:"-"`
	Signature string          `json:"signature"`
	Challenge string          `json:"challenge"`
}

func NewEmail(st statement.Statement, signature, challenge string) (Email, error) {
	s, ok := st.(statement.Email)
	if !ok {
		return Email{}, kindMismatch(statement.KindEmail, st)
	}
	return Email{s, signature, challenge}, nil
}

func (p Email) isProof()                       {}
func (p Email) Kind() statement.Kind           { return statement.KindEmail }
func (p Email) Statement() statement.Statement { return p.Stmt }
func (p Email) Generate() (string, error)      { return generate(p.Stmt) }
func (p Email) Signatures() []string           { return []string{p.Signature} }

func (p Email) withStatement(st statement.Statement) (Proof, error) {
	return NewEmail(st, p.Signature, p.Challenge)
}

func (p Email) ToContent(text, signature string) (content.Content, error) {
	subject, err := linked(p.Kind(), p.Stmt.Subject, "mailto:"+p.Stmt.Email, map[string]any{"email": p.Stmt.Email}, text, signature)
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, nil)
}

// GitHub proves a handle through a gist owned by it.
type GitHub struct {
	Stmt      statement.GitHub `json:"-"`
	Signature string           `json:"signature"`
	GistID    string           `json:"gist_id"`
}

func NewGitHub(st statement.Statement, signature, gistID string) (GitHub, error) {
	s, ok := st.(statement.GitHub)
	if !ok {
		return GitHub{}, kindMismatch(statement.KindGitHub, st)
	}
	if gistID == "" {
		return GitHub{}, NewError(MalformedProof, "missing gist id", nil)
	}
	return GitHub{s, signature, gistID}, nil
}

func (p GitHub) isProof()                       {}
func (p GitHub) Kind() statement.Kind           { return statement.KindGitHub }
func (p GitHub) Statement() statement.Statement { return p.Stmt }
func (p GitHub) Generate() (string, error)      { return generate(p.Stmt) }
func (p GitHub) Signatures() []string           { return []string{p.Signature} }

func (p GitHub) withStatement(st statement.Statement) (Proof, error) {
	return NewGitHub(st, p.Signature, p.GistID)
}

func (p GitHub) ToContent(text, signature string) (content.Content, error) {
	subject, err := linked(p.Kind(), p.Stmt.Subject, "https://github.com/"+p.Stmt.Handle, map[string]any{"handle": p.Stmt.Handle}, text, signature)
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, map[string]any{
		"handle":  p.Stmt.Handle,
		"gist_id": p.GistID,
	})
}

// Twitter proves a handle through a tweet it authored.
type Twitter struct {
	Stmt      statement.Twitter `json:"-"`
	Signature string            `json:"signature"`
	TweetURL  string            `json:"tweet_url"`
}

func NewTwitter(st statement.Statement, signature, tweetURL string) (Twitter, error) {
	s, ok := st.(statement.Twitter)
	if !ok {
		return Twitter{}, kindMismatch(statement.KindTwitter, st)
	}
	if tweetURL == "" {
		return Twitter{}, NewError(MalformedProof, "missing tweet url", nil)
	}
	return Twitter{s, signature, tweetURL}, nil
}

func (p Twitter) isProof()                       {}
func (p Twitter) Kind() statement.Kind           { return statement.KindTwitter }
func (p Twitter) Statement() statement.Statement { return p.Stmt }
func (p Twitter) Generate() (string, error)      { return generate(p.Stmt) }
func (p Twitter) Signatures() []string           { return []string{p.Signature} }

func (p Twitter) withStatement(st statement.Statement) (Proof, error) {
	return NewTwitter(st, p.Signature, p.TweetURL)
}

func (p Twitter) ToContent(text, signature string) (content.Content, error) {
	subject, err := linked(p.Kind(), p.Stmt.Subject, "https://twitter.com/"+p.Stmt.Handle, map[string]any{"handle": p.Stmt.Handle}, text, signature)
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, map[string]any{
		"handle":    p.Stmt.Handle,
		"tweet_url": p.TweetURL,
	})
}

// Reddit proves a handle through a post it authored.
type Reddit struct {
	Stmt      statement.Reddit `json:"-"`
	Signature string           `json:"signature"`
	Permalink string           `json:"permalink"`
}

func NewReddit(st statement.Statement, signature, permalink string) (Reddit, error) {
	s, ok := st.(statement.Reddit)
	if !ok {
		return Reddit{}, kindMismatch(statement.KindReddit, st)
	}
	if permalink == "" {
		return Reddit{}, NewError(MalformedProof, "missing permalink", nil)
	}
	return Reddit{s, signature, permalink}, nil
}

func (p Reddit) isProof()                       {}
func (p Reddit) Kind() statement.Kind           { return statement.KindReddit }
func (p Reddit) Statement() statement.Statement { return p.Stmt }
func (p Reddit) Generate() (string, error)      { return generate(p.Stmt) }
func (p Reddit) Signatures() []string           { return []string{p.Signature} }

func (p Reddit) withStatement(st statement.Statement) (Proof, error) {
	return NewReddit(st, p.Signature, p.Permalink)
}

func (p Reddit) ToContent(text, signature string) (content.Content, error) {
	subject, err := linked(p.Kind(), p.Stmt.Subject, "https://www.reddit.com/user/"+p.Stmt.Handle, map[string]any{"handle": p.Stmt.Handle}, text, signature)
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, map[string]any{
		"handle":    p.Stmt.Handle,
		"permalink": p.Permalink,
	})
}

// SoundCloud proves a profile through its description. The statement
// permalink is the locator.
type SoundCloud struct {
	Stmt      statement.SoundCloud `json:"-"`
	Signature string               `json:"signature"`
}

func NewSoundCloud(st statement.Statement, signature string) (SoundCloud, error) {
	s, ok := st.(statement.SoundCloud)
	if !ok {
		return SoundCloud{}, kindMismatch(statement.KindSoundCloud, st)
	}
	return SoundCloud{s, signature}, nil
}

func (p SoundCloud) isProof()                       {}
func (p SoundCloud) Kind() statement.Kind           { return statement.KindSoundCloud }
func (p SoundCloud) Statement() statement.Statement { return p.Stmt }
func (p SoundCloud) Generate() (string, error)      { return generate(p.Stmt) }
func (p SoundCloud) Signatures() []string           { return []string{p.Signature} }

func (p SoundCloud) withStatement(st statement.Statement) (Proof, error) {
	return NewSoundCloud(st, p.Signature)
}

func (p SoundCloud) ToContent(text, signature string) (content.Content, error) {
	profile := "https://soundcloud.com/" + p.Stmt.Permalink
	subject, err := linked(p.Kind(), p.Stmt.Subject, profile, map[string]any{"permalink": p.Stmt.Permalink}, text, signature)
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, map[string]any{"profile_url": profile})
}
