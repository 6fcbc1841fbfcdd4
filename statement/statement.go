// Package statement builds the canonical text a subject signs for each kind
// of claim.
package statement

import (
	"fmt"

	"github.com/spruceid/rebase-sub001/failure"
	"github.com/spruceid/rebase-sub001/subject"
)

// Kind is the wire tag of a statement. Tags are only ever added.
type Kind string

const (
	KindDNS              Kind = "dns_verification"
	KindEmail            Kind = "email_verification"
	KindGitHub           Kind = "github_verification"
	KindTwitter          Kind = "twitter_verification"
	KindReddit           Kind = "reddit_verification"
	KindSoundCloud       Kind = "soundcloud_verification"
	KindNFTOwnership     Kind = "nft_ownership_verification"
	KindPOAPOwnership    Kind = "poap_ownership_verification"
	KindSameController   Kind = "same_controller_assertion"
	KindCrossKey         Kind = "cross_key_assertion"
	KindBasicImage       Kind = "basic_image_attestation"
	KindBasicPost        Kind = "basic_post_attestation"
	KindBasicTag         Kind = "basic_tag_attestation"
	KindBasicProfile     Kind = "basic_profile_attestation"
	KindFollow           Kind = "follow_attestation"
	KindLike             Kind = "like_attestation"
	KindBookReview       Kind = "book_review_attestation"
	KindProgressBookLink Kind = "progress_book_link_attestation"
	KindDappPreferences  Kind = "dapp_preferences_attestation"
)

var kinds = []Kind{
	KindDNS,
	KindEmail,
	KindGitHub,
	KindTwitter,
	KindReddit,
	KindSoundCloud,
	KindNFTOwnership,
	KindPOAPOwnership,
	KindSameController,
	KindCrossKey,
	KindBasicImage,
	KindBasicPost,
	KindBasicTag,
	KindBasicProfile,
	KindFollow,
	KindLike,
	KindBookReview,
	KindProgressBookLink,
	KindDappPreferences,
}

// Kinds lists every statement kind.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// IsSelfIssued reports whether statements of kind are self issued.
func IsSelfIssued(kind Kind) bool {
	switch kind {
	case KindBasicImage, KindBasicPost, KindBasicTag, KindBasicProfile, KindFollow,
		KindLike, KindBookReview, KindProgressBookLink, KindDappPreferences:
		return true
	}
	return false
}

// Statement is a claim before it is signed. Generate is pure: the same
// statement always yields byte identical text.
type Statement interface {
	Kind() Kind
	Generate() (string, error)
	// Subjects are the parties whose signatures the statement needs, in
	// signing order.
	Subjects() []subject.Subject
	isStatement()
	withSubjects(subjects []subject.Subject) Statement
}

// SelfIssued statements are structured records embedded directly as the
// credential subject rather than matched against third party content.
type SelfIssued interface {
	Statement
	Fields() (map[string]any, error)
}

const (
	MalformedStatement = "MalformedStatement"
	InvalidTimestamp   = "InvalidTimestamp"
	MalformedSubject   = "MalformedSubject"
)

type Error struct {
	failure.NamedWithStackTrace
	message string
	cause   error
}

func (e Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause)
	}
	return e.message
}

func (e Error) Unwrap() error {
	return e.cause
}

func NewError(name, message string, cause error) Error {
	return Error{failure.NamedWithCurrentStackTrace(name), message, cause}
}

// describe returns the title and display id of s.
func describe(s subject.Subject) (string, string, error) {
	if s == nil {
		return "", "", NewError(MalformedSubject, "missing subject", nil)
	}
	display, err := s.DisplayID()
	if err != nil {
		return "", "", NewError(MalformedSubject, "displaying subject", err)
	}
	return s.Title(), display, nil
}

// required takes name, value pairs and fails on the first empty value.
func required(kind Kind, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return NewError(MalformedStatement, fmt.Sprintf("%s: %s is required", kind, pairs[i]), nil)
		}
	}
	return nil
}
