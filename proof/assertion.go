package proof

import (
	"github.com/spruceid/rebase-sub001/content"
	"github.com/spruceid/rebase-sub001/signer"
	"github.com/spruceid/rebase-sub001/statement"
	"github.com/spruceid/rebase-sub001/subject"
)

// NFTOwnership proves the subject held a token when the statement was issued.
type NFTOwnership struct {
	Stmt      statement.NFTOwnership `json:"-"`
	Signature string                 `json:"signature"`
}

func NewNFTOwnership(st statement.Statement, signature string) (NFTOwnership, error) {
	s, ok := st.(statement.NFTOwnership)
	if !ok {
		return NFTOwnership{}, kindMismatch(statement.KindNFTOwnership, st)
	}
	return NFTOwnership{s, signature}, nil
}

func (p NFTOwnership) isProof()                       {}
func (p NFTOwnership) Kind() statement.Kind           { return statement.KindNFTOwnership }
func (p NFTOwnership) Statement() statement.Statement { return p.Stmt }
func (p NFTOwnership) Generate() (string, error)      { return generate(p.Stmt) }
func (p NFTOwnership) Signatures() []string           { return []string{p.Signature} }

func (p NFTOwnership) withStatement(st statement.Statement) (Proof, error) {
	return NewNFTOwnership(st, p.Signature)
}

func (p NFTOwnership) ToContent(text, signature string) (content.Content, error) {
	subject, err := linked(p.Kind(), p.Stmt.Subject, "", map[string]any{
		"contract_address": p.Stmt.Contract,
		"network":          p.Stmt.Network,
		"issued_at":        p.Stmt.Issued,
	}, text, signature)
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, nil)
}

// POAPOwnership proves the subject held an event POAP when the statement was
// issued.
type POAPOwnership struct {
	Stmt      statement.POAPOwnership `json:"-"`
	Signature string                  `json:"signature"`
}

func NewPOAPOwnership(st statement.Statement, signature string) (POAPOwnership, error) {
	s, ok := st.(statement.POAPOwnership)
	if !ok {
		return POAPOwnership{}, kindMismatch(statement.KindPOAPOwnership, st)
	}
	return POAPOwnership{s, signature}, nil
}

func (p POAPOwnership) isProof()                       {}
func (p POAPOwnership) Kind() statement.Kind           { return statement.KindPOAPOwnership }
func (p POAPOwnership) Statement() statement.Statement { return p.Stmt }
func (p POAPOwnership) Generate() (string, error)      { return generate(p.Stmt) }
func (p POAPOwnership) Signatures() []string           { return []string{p.Signature} }

func (p POAPOwnership) withStatement(st statement.Statement) (Proof, error) {
	return NewPOAPOwnership(st, p.Signature)
}

func (p POAPOwnership) ToContent(text, signature string) (content.Content, error) {
	subject, err := linked(p.Kind(), p.Stmt.Subject, "", map[string]any{
		"event_id":  p.Stmt.EventID,
		"network":   p.Stmt.Network,
		"issued_at": p.Stmt.Issued,
	}, text, signature)
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, nil)
}

func pair(kind statement.Kind, a, b subject.Subject, fields map[string]any) (map[string]any, error) {
	id1, err := subjectID(a)
	if err != nil {
		return nil, err
	}
	id2, err := subjectID(b)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"id":   id1,
		"type": typeMarker(kind),
		"id1":  id1,
		"id2":  id2,
	}
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

// SameController proves both subjects signed the same statement.
type SameController struct {
	Stmt       statement.SameController `json:"-"`
	Signature1 string                   `json:"signature1"`
	Signature2 string                   `json:"signature2"`
}

func NewSameController(st statement.Statement, signature1, signature2 string) (SameController, error) {
	s, ok := st.(statement.SameController)
	if !ok {
		return SameController{}, kindMismatch(statement.KindSameController, st)
	}
	return SameController{s, signature1, signature2}, nil
}

func (p SameController) isProof()                       {}
func (p SameController) Kind() statement.Kind           { return statement.KindSameController }
func (p SameController) Statement() statement.Statement { return p.Stmt }
func (p SameController) Generate() (string, error)      { return generate(p.Stmt) }
func (p SameController) Signatures() []string           { return []string{p.Signature1, p.Signature2} }

func (p SameController) withStatement(st statement.Statement) (Proof, error) {
	return NewSameController(st, p.Signature1, p.Signature2)
}

// ToContent takes the first signature, the second comes from the proof.
func (p SameController) ToContent(text, signature string) (content.Content, error) {
	subject, err := pair(p.Kind(), p.Stmt.ID1, p.Stmt.ID2, map[string]any{
		"statement":  text,
		"signature1": signature,
		"signature2": p.Signature2,
	})
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, nil)
}

// CrossKey proves two keys signed the same message, packed as a single claim
// string.
type CrossKey struct {
	Stmt      statement.CrossKey `json:"-"`
	Claim     string             `json:"claim"`
	Delimiter string             `json:"delimiter"`
}

func NewCrossKey(st statement.Statement, claim, delimiter string) (CrossKey, error) {
	s, ok := st.(statement.CrossKey)
	if !ok {
		return CrossKey{}, kindMismatch(statement.KindCrossKey, st)
	}
	if delimiter == "" {
		delimiter = signer.DefaultDelimiter
	}
	if _, _, _, err := signer.ParseCrossKeyClaim(claim, delimiter); err != nil {
		return CrossKey{}, NewError(MalformedProof, "parsing cross key claim", err)
	}
	return CrossKey{s, claim, delimiter}, nil
}

func (p CrossKey) isProof()                       {}
func (p CrossKey) Kind() statement.Kind           { return statement.KindCrossKey }
func (p CrossKey) Statement() statement.Statement { return p.Stmt }
func (p CrossKey) Generate() (string, error)      { return generate(p.Stmt) }

// Message is the text both keys signed, as carried in the claim.
func (p CrossKey) Message() string {
	msg, _, _, _ := signer.ParseCrossKeyClaim(p.Claim, p.Delimiter)
	return msg
}

func (p CrossKey) Signatures() []string {
	_, sig1, sig2, err := signer.ParseCrossKeyClaim(p.Claim, p.Delimiter)
	if err != nil {
		return nil
	}
	return []string{sig1, sig2}
}

func (p CrossKey) withStatement(st statement.Statement) (Proof, error) {
	return NewCrossKey(st, p.Claim, p.Delimiter)
}

func (p CrossKey) ToContent(text, signature string) (content.Content, error) {
	sigs := p.Signatures()
	if len(sigs) != 2 {
		return nil, NewError(MalformedProof, "parsing cross key claim", nil)
	}
	subject, err := pair(p.Kind(), p.Stmt.Key1, p.Stmt.Key2, map[string]any{
		"statement":  text,
		"signature1": signature,
		"signature2": sigs[1],
		"delimiter":  p.Delimiter,
	})
	if err != nil {
		return nil, err
	}
	return content.New(p.Kind(), subject, nil)
}

// SelfIssued proves a self issued statement signed by its subject.
type SelfIssued struct {
	Stmt      statement.SelfIssued `json:"-"`
	Signature string               `json:"signature"`
}

func NewSelfIssued(st statement.Statement, signature string) (SelfIssued, error) {
	s, ok := st.(statement.SelfIssued)
	if !ok {
		var kind statement.Kind
		if st != nil {
			kind = st.Kind()
		}
		return SelfIssued{}, NewError(KindMismatch, "not a self issued statement: "+string(kind), nil)
	}
	return SelfIssued{s, signature}, nil
}

func (p SelfIssued) isProof()                       {}
func (p SelfIssued) Kind() statement.Kind           { return p.Stmt.Kind() }
func (p SelfIssued) Statement() statement.Statement { return p.Stmt }
func (p SelfIssued) Generate() (string, error)      { return generate(p.Stmt) }
func (p SelfIssued) Signatures() []string           { return []string{p.Signature} }

func (p SelfIssued) withStatement(st statement.Statement) (Proof, error) {
	return NewSelfIssued(st, p.Signature)
}

// ToContent embeds the statement fields directly as the credential subject.
func (p SelfIssued) ToContent(text, signature string) (content.Content, error) {
	fields, err := p.Stmt.Fields()
	if err != nil {
		return nil, NewError(StatementFailure, "statement fields", err)
	}
	fields["type"] = typeMarker(p.Kind())
	fields["signature"] = signature
	return content.New(p.Kind(), fields, nil)
}
