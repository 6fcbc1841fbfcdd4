// Package recap maps self issued attestation kinds to capability actions so a
// delegated session key can be scoped to a subset of them.
package recap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gowebpki/jcs"
	"github.com/spruceid/rebase-sub001/signer"
	"github.com/spruceid/rebase-sub001/statement"
)

// Namespace is the capability namespace attestation actions live under.
const Namespace = "rebase"

// ActionPrefix prefixes every attestation action.
const ActionPrefix = "attestation/"

// AttestationType is a self issued statement kind that can be delegated.
type AttestationType string

const (
	BasicImage       = AttestationType(statement.KindBasicImage)
	BasicPost        = AttestationType(statement.KindBasicPost)
	BasicTag         = AttestationType(statement.KindBasicTag)
	BasicProfile     = AttestationType(statement.KindBasicProfile)
	Follow           = AttestationType(statement.KindFollow)
	Like             = AttestationType(statement.KindLike)
	BookReview       = AttestationType(statement.KindBookReview)
	ProgressBookLink = AttestationType(statement.KindProgressBookLink)
	DappPreferences  = AttestationType(statement.KindDappPreferences)
)

var types = []AttestationType{
	BasicImage,
	BasicPost,
	BasicTag,
	BasicProfile,
	Follow,
	Like,
	BookReview,
	ProgressBookLink,
	DappPreferences,
}

var byAction = func() map[string]AttestationType {
	m := make(map[string]AttestationType, len(types))
	for _, t := range types {
		m[ToAction(t)] = t
	}
	return m
}()

// Types lists every attestation type.
func Types() []AttestationType {
	return append([]AttestationType(nil), types...)
}

// Kind is the statement kind of the attestation type.
func (t AttestationType) Kind() statement.Kind {
	return statement.Kind(t)
}

// ToAction returns the action string for t, e.g.
// "attestation/basic_post_attestation".
func ToAction(t AttestationType) string {
	return ActionPrefix + string(t)
}

// FromAction is the inverse of ToAction.
func FromAction(action string) (AttestationType, bool) {
	t, ok := byAction[action]
	return t, ok
}

// FromKind returns the attestation type of a statement kind. Only self issued
// kinds have one.
func FromKind(kind statement.Kind) (AttestationType, bool) {
	return FromAction(ToAction(AttestationType(kind)))
}

// Capability delegates the abilities in Can over the resource With.
//
// Abilities match exactly, "*" matches any action and a trailing "/*" matches
// any action with that prefix, e.g. "attestation/*".
type Capability struct {
	With string   `json:"with"`
	Can  []string `json:"can"`
}

// Delegate builds a capability over resource with for the given types.
func Delegate(with string, ts ...AttestationType) Capability {
	can := make([]string, 0, len(ts))
	for _, t := range ts {
		can = append(can, ToAction(t))
	}
	return Capability{With: with, Can: can}
}

func matchAbility(pattern, action string) bool {
	if pattern == action || pattern == "*" {
		return true
	}
	return strings.HasSuffix(pattern, "/*") && strings.HasPrefix(action, pattern[0:len(pattern)-1])
}

func matchResource(pattern, resource string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(resource, pattern[0:len(pattern)-1])
	}
	return pattern == resource
}

// Allows reports whether the capability delegates action.
func (c Capability) Allows(action string) bool {
	for _, can := range c.Can {
		if matchAbility(can, action) {
			return true
		}
	}
	return false
}

// Covers reports whether the capability is held over resource.
func (c Capability) Covers(resource string) bool {
	return c.With != "" && matchResource(c.With, resource)
}

// Types lists the attestation types the capability delegates.
func (c Capability) Types() []AttestationType {
	var out []AttestationType
	for _, t := range types {
		if c.Allows(ToAction(t)) {
			out = append(out, t)
		}
	}
	return out
}

// URNPrefix prefixes an encoded capability.
const URNPrefix = "urn:recap:"

type recapModel struct {
	Att map[string]map[string][]map[string]any `json:"att"`
	Prf []string                               `json:"prf"`
}

// Encode renders the capability as a ReCap URN whose attenuations are keyed
// by resource and then by namespaced ability.
func (c Capability) Encode() (string, error) {
	if c.With == "" {
		return "", fmt.Errorf("capability has no resource")
	}
	abilities := make(map[string][]map[string]any, len(c.Can))
	for _, can := range c.Can {
		abilities[Namespace+"/"+can] = []map[string]any{}
	}
	b, err := json.Marshal(recapModel{
		Att: map[string]map[string][]map[string]any{c.With: abilities},
		Prf: []string{},
	})
	if err != nil {
		return "", fmt.Errorf("encoding capability: %w", err)
	}
	b, err = jcs.Transform(b)
	if err != nil {
		return "", fmt.Errorf("canonicalizing capability: %w", err)
	}
	return URNPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode parses a ReCap URN holding a single resource.
func Decode(urn string) (Capability, error) {
	if !strings.HasPrefix(urn, URNPrefix) {
		return Capability{}, fmt.Errorf("not a recap URN: %q", urn)
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(urn, URNPrefix))
	if err != nil {
		return Capability{}, fmt.Errorf("decoding recap: %w", err)
	}
	var model recapModel
	if err := json.Unmarshal(b, &model); err != nil {
		return Capability{}, fmt.Errorf("decoding recap: %w", err)
	}
	if len(model.Att) != 1 {
		return Capability{}, fmt.Errorf("recap must hold exactly one resource, found %d", len(model.Att))
	}
	var c Capability
	for with, abilities := range model.Att {
		c.With = with
		for ability := range abilities {
			can, ok := strings.CutPrefix(ability, Namespace+"/")
			if !ok {
				return Capability{}, fmt.Errorf("ability outside %s namespace: %q", Namespace, ability)
			}
			c.Can = append(c.Can, can)
		}
	}
	sort.Strings(c.Can)
	return c, nil
}

// Scoped is a signer restricted to the statements its capability delegates.
// It refuses to sign arbitrary messages.
type Scoped struct {
	signer.Signer
	capability Capability
}

// Scope restricts s to capability c.
func Scope(s signer.Signer, c Capability) Scoped {
	return Scoped{s, c}
}

func (s Scoped) Capability() Capability {
	return s.capability
}

func (s Scoped) Sign(message string) (string, error) {
	return "", signer.NewError(signer.Unauthorized, "scoped signer only signs delegated statements", nil)
}

// Authorize checks the capability delegates st to this signer.
func (s Scoped) Authorize(st statement.Statement) error {
	t, ok := FromKind(st.Kind())
	if !ok {
		return signer.NewError(signer.Unauthorized, fmt.Sprintf("%s cannot be delegated", st.Kind()), nil)
	}
	id, err := s.DID()
	if err != nil {
		return signer.NewError(signer.SigningFailed, "signer DID", err)
	}
	if !s.capability.Covers(id) {
		return signer.NewError(signer.Unauthorized, fmt.Sprintf("capability over %q does not cover %s", s.capability.With, id), nil)
	}
	if !s.capability.Allows(ToAction(t)) {
		return signer.NewError(signer.Unauthorized, fmt.Sprintf("%s not delegated", ToAction(t)), nil)
	}
	for _, sub := range st.Subjects() {
		if sub == nil {
			continue
		}
		if sid, err := sub.DID(); err != nil || sid != id {
			return signer.NewError(signer.Unauthorized, fmt.Sprintf("statement is not about %s", id), err)
		}
	}
	return nil
}

// SignStatement generates and signs st if the capability delegates its kind.
// It returns the statement text along with the signature.
func (s Scoped) SignStatement(st statement.Statement) (string, string, error) {
	if err := s.Authorize(st); err != nil {
		return "", "", err
	}
	text, err := st.Generate()
	if err != nil {
		return "", "", err
	}
	sig, err := s.Signer.Sign(text)
	if err != nil {
		return "", "", err
	}
	return text, sig, nil
}
