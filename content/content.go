// Package content shapes verified claims into credential content.
package content

import (
	"fmt"
	"maps"

	"github.com/spruceid/rebase-sub001/failure"
	"github.com/spruceid/rebase-sub001/statement"
)

// Content is a verified claim ready to be issued as a credential.
type Content interface {
	Kind() statement.Kind
	// Context is the JSON-LD context of the credential.
	Context() []any
	// Types always starts with "VerifiableCredential".
	Types() []string
	// Subject is the credential subject, it always has an "id".
	Subject() map[string]any
	// Evidence is nil except for kinds located by a third party URL or id.
	Evidence() []map[string]any
}

const ContentError = "ContentError"

type Error struct {
	failure.NamedWithStackTrace
	message string
}

func (e Error) Error() string {
	return e.message
}

func NewError(message string) Error {
	return Error{failure.NamedWithCurrentStackTrace(ContentError), message}
}

const (
	CredentialsContext = "https://www.w3.org/2018/credentials/v1"
	Vocabulary         = "https://spec.rebase.xyz/vocab#"
)

type descriptor struct {
	typ      string
	evidence string
}

var descriptors = map[statement.Kind]descriptor{
	statement.KindDNS:              {"DnsVerification", ""},
	statement.KindEmail:            {"EmailVerification", ""},
	statement.KindGitHub:           {"GitHubVerification", "GitHubGistEvidence"},
	statement.KindTwitter:          {"TwitterVerification", "TwitterTweetEvidence"},
	statement.KindReddit:           {"RedditVerification", "RedditPostEvidence"},
	statement.KindSoundCloud:       {"SoundCloudVerification", "SoundCloudProfileEvidence"},
	statement.KindNFTOwnership:     {"NftOwnershipVerification", ""},
	statement.KindPOAPOwnership:    {"PoapOwnershipVerification", ""},
	statement.KindSameController:   {"SameControllerAssertion", ""},
	statement.KindCrossKey:         {"CrossKeyAssertion", ""},
	statement.KindBasicImage:       {"BasicImageAttestation", ""},
	statement.KindBasicPost:        {"BasicPostAttestation", ""},
	statement.KindBasicTag:         {"BasicTagAttestation", ""},
	statement.KindBasicProfile:     {"BasicProfileAttestation", ""},
	statement.KindFollow:           {"FollowAttestation", ""},
	statement.KindLike:             {"LikeAttestation", ""},
	statement.KindBookReview:       {"BookReviewAttestation", ""},
	statement.KindProgressBookLink: {"ProgressBookLinkAttestation", ""},
	statement.KindDappPreferences:  {"DappPreferencesAttestation", ""},
}

// TypeOf returns the credential type of a kind, e.g. "DnsVerification".
func TypeOf(kind statement.Kind) (string, bool) {
	d, ok := descriptors[kind]
	return d.typ, ok
}

type claim struct {
	kind     statement.Kind
	desc     descriptor
	subject  map[string]any
	evidence map[string]any
}

// New builds the content of a kind. The subject must carry an "id". The
// evidence fields are only kept for kinds that carry evidence, its "type" is
// set from the kind.
func New(kind statement.Kind, subject map[string]any, evidence map[string]any) (Content, error) {
	desc, ok := descriptors[kind]
	if !ok {
		return nil, NewError(fmt.Sprintf("unknown kind %q", kind))
	}
	if id, ok := subject["id"].(string); !ok || id == "" {
		return nil, NewError(fmt.Sprintf("%s: credential subject has no id", kind))
	}
	if desc.evidence == "" {
		evidence = nil
	}
	if desc.evidence != "" && len(evidence) == 0 {
		return nil, NewError(fmt.Sprintf("%s: evidence is required", kind))
	}
	return claim{kind, desc, maps.Clone(subject), maps.Clone(evidence)}, nil
}

func (c claim) Kind() statement.Kind {
	return c.kind
}

func (c claim) Context() []any {
	terms := map[string]any{
		"@vocab":   Vocabulary,
		"sameAs":   "http://schema.org/sameAs",
		c.desc.typ: Vocabulary + c.desc.typ,
	}
	if c.desc.evidence != "" {
		terms[c.desc.evidence] = Vocabulary + c.desc.evidence
	}
	return []any{CredentialsContext, terms}
}

func (c claim) Types() []string {
	return []string{"VerifiableCredential", c.desc.typ}
}

func (c claim) Subject() map[string]any {
	return maps.Clone(c.subject)
}

func (c claim) Evidence() []map[string]any {
	if c.evidence == nil {
		return nil
	}
	ev := maps.Clone(c.evidence)
	ev["type"] = []string{c.desc.evidence}
	return []map[string]any{ev}
}
