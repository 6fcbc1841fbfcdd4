package subject

import (
	"context"
	"fmt"
	"strings"
)

// Handle is an account on a platform. It is only ever displayed in statement
// text, it cannot verify signatures.
type Handle struct {
	Platform Type
	Value    string
}

func Twitter(handle string) Handle       { return Handle{TypeTwitter, handle} }
func GitHub(handle string) Handle        { return Handle{TypeGitHub, handle} }
func Reddit(handle string) Handle        { return Handle{TypeReddit, handle} }
func SoundCloud(permalink string) Handle { return Handle{TypeSoundCloud, permalink} }
func DNS(domain string) Handle           { return Handle{TypeDNS, domain} }
func Email(address string) Handle        { return Handle{TypeEmail, address} }

func (h Handle) isSubject() {}

func (h Handle) Type() Type {
	return h.Platform
}

func (h Handle) Title() string {
	switch h.Platform {
	case TypeTwitter:
		return "Twitter Handle"
	case TypeGitHub:
		return "GitHub Handle"
	case TypeReddit:
		return "Reddit Handle"
	case TypeSoundCloud:
		return "SoundCloud Profile"
	case TypeDNS:
		return "Domain"
	case TypeEmail:
		return "Email Address"
	default:
		return string(h.Platform)
	}
}

func (h Handle) validate() error {
	if h.Value == "" || strings.ContainsAny(h.Value, " \t\r\n/") {
		return NewError(MalformedIdentifier, fmt.Sprintf("invalid %s %q", h.Title(), h.Value), nil)
	}
	switch h.Platform {
	case TypeTwitter, TypeGitHub, TypeReddit, TypeSoundCloud, TypeDNS:
	case TypeEmail:
		local, domain, ok := strings.Cut(h.Value, "@")
		if !ok || local == "" || domain == "" {
			return NewError(MalformedIdentifier, fmt.Sprintf("invalid email address %q", h.Value), nil)
		}
	default:
		return NewError(MalformedIdentifier, fmt.Sprintf("unknown platform %q", h.Platform), nil)
	}
	return nil
}

// DID returns the URI of the account, which need not be a DID.
func (h Handle) DID() (string, error) {
	if err := h.validate(); err != nil {
		return "", err
	}
	switch h.Platform {
	case TypeTwitter:
		return "https://twitter.com/" + h.Value, nil
	case TypeGitHub:
		return "https://github.com/" + h.Value, nil
	case TypeReddit:
		return "https://www.reddit.com/user/" + h.Value, nil
	case TypeSoundCloud:
		return "https://soundcloud.com/" + h.Value, nil
	case TypeDNS:
		return "dns:" + h.Value, nil
	default:
		return "mailto:" + h.Value, nil
	}
}

func (h Handle) DisplayID() (string, error) {
	if err := h.validate(); err != nil {
		return "", err
	}
	switch h.Platform {
	case TypeTwitter:
		return "@" + h.Value, nil
	case TypeReddit:
		return "u/" + h.Value, nil
	default:
		return h.Value, nil
	}
}

func (h Handle) ValidSignature(ctx context.Context, statement, sig string) error {
	return NewError(NotVerifiable, fmt.Sprintf("%s subjects do not sign statements", h.Title()), nil)
}

// field is the wire name of the value.
func (h Handle) field() string {
	switch h.Platform {
	case TypeDNS:
		return "domain"
	case TypeEmail:
		return "email"
	case TypeSoundCloud:
		return "permalink"
	default:
		return "handle"
	}
}
