package witness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spruceid/rebase-sub001/content"
	"github.com/spruceid/rebase-sub001/failure"
	"github.com/spruceid/rebase-sub001/proof"
	"github.com/spruceid/rebase-sub001/statement"
	"github.com/spruceid/rebase-sub001/subject"
	"go.uber.org/zap"
)

// evidence checks third party content for a proof whose text and signatures
// already verified. It makes at most one network call.
type evidence func(ctx context.Context, p proof.Proof, text string) error

type pipeline struct {
	kind statement.Kind
	cfg  Config
	log  *zap.SugaredLogger
}

func newPipeline(kind statement.Kind, cfg Config) pipeline {
	cfg = cfg.withDefaults()
	return pipeline{kind, cfg, cfg.Logger.With("kind", string(kind))}
}

func (pl pipeline) Kind() statement.Kind {
	return pl.kind
}

func (pl pipeline) reject(ctx context.Context, stage State, reason, message string, cause error) error {
	if ctx.Err() != nil && reason != StatementMismatch && reason != KindMismatch {
		reason = Aborted
		cause = errors.Join(cause, ctx.Err())
	}
	pl.log.Warnw("rejected", "stage", stage, "reason", reason, "error", cause)
	return NewRejectedError(stage, reason, message, cause)
}

// Statement returns the text to sign for st.
func (pl pipeline) Statement(st statement.Statement) (string, error) {
	ctx := context.Background()
	if st == nil || st.Kind() != pl.kind {
		return "", pl.reject(ctx, StatementRequested, KindMismatch, fmt.Sprintf("statement is not %s", pl.kind), nil)
	}
	text, err := st.Generate()
	if err != nil {
		return "", pl.reject(ctx, StatementRequested, MalformedStatement, "generating statement", err)
	}
	pl.log.Debugw("statement requested")
	return text, nil
}

// signed runs the checks that need no network beyond key resolution: the
// statement text is recomputed, then every signature is verified.
func (pl pipeline) signed(ctx context.Context, p proof.Proof, text string) error {
	if p == nil || p.Kind() != pl.kind {
		return pl.reject(ctx, StatementRequested, KindMismatch, fmt.Sprintf("proof is not %s", pl.kind), nil)
	}
	if err := ctx.Err(); err != nil {
		return pl.reject(ctx, StatementRequested, Aborted, "cancelled", err)
	}
	if err := pl.matchText(p, text); err != nil {
		return pl.reject(ctx, StatementRequested, reasonFromProof(err), "recomputing statement", err)
	}
	if err := pl.checkSignatures(ctx, p, text); err != nil {
		return err
	}
	pl.log.Debugw("statement signed")
	return nil
}

func (pl pipeline) verify(ctx context.Context, p proof.Proof, text string, check evidence) (content.Content, error) {
	if err := pl.signed(ctx, p, text); err != nil {
		return nil, err
	}
	if err := pl.checkFreshness(ctx, p.Statement()); err != nil {
		return nil, err
	}

	if check != nil {
		if err := check(ctx, p, text); err != nil {
			return nil, err
		}
		pl.log.Debugw("evidence fetched")
	}

	c, err := p.ToContent(text, p.Signatures()[0])
	if err != nil {
		return nil, pl.reject(ctx, Verified, ContentError, "materializing content", err)
	}
	pl.log.Debugw("verified")
	return c, nil
}

func (pl pipeline) matchText(p proof.Proof, text string) error {
	if err := proof.Match(p, text); err != nil {
		return err
	}
	if ck, ok := p.(proof.CrossKey); ok && ck.Message() != text {
		return proof.NewError(proof.StatementMismatch, "cross key claim message does not match", nil)
	}
	return nil
}

func reasonFromProof(err error) string {
	var se statement.Error
	if errors.As(err, &se) {
		return MalformedStatement
	}
	switch failure.NameOf(err) {
	case proof.StatementMismatch:
		return StatementMismatch
	case proof.KindMismatch:
		return KindMismatch
	}
	return MalformedStatement
}

func reasonFromSubject(err error) string {
	var se subject.Error
	if !errors.As(err, &se) {
		return InvalidSignature
	}
	switch se.Name() {
	case subject.ResolutionFailed:
		return ResolutionFailed
	case subject.Unimplemented:
		return Unimplemented
	case subject.MalformedIdentifier, subject.NotVerifiable:
		return MalformedStatement
	}
	return InvalidSignature
}

// checkSignatures requires every signature to verify against its subject.
func (pl pipeline) checkSignatures(ctx context.Context, p proof.Proof, text string) error {
	subjects := p.Statement().Subjects()
	sigs := p.Signatures()
	if len(sigs) != len(subjects) {
		return pl.reject(ctx, StatementSigned, InvalidSignature, fmt.Sprintf("%d signatures for %d subjects", len(sigs), len(subjects)), nil)
	}
	for i, s := range subjects {
		if strings.TrimSpace(sigs[i]) == "" {
			return pl.reject(ctx, StatementSigned, InvalidSignature, fmt.Sprintf("signature %d is empty", i+1), nil)
		}
		// subjects are always resolved with the configured resolver
		s = subject.WithResolver(subject.View(s), pl.cfg.Resolver)
		if err := s.ValidSignature(ctx, text, sigs[i]); err != nil {
			return pl.reject(ctx, StatementSigned, reasonFromSubject(err), fmt.Sprintf("signature %d", i+1), err)
		}
	}
	return nil
}

// checkFreshness bounds the age of ownership statements.
func (pl pipeline) checkFreshness(ctx context.Context, st statement.Statement) error {
	o, ok := st.(statement.Ownership)
	if !ok {
		return nil
	}
	issued, err := o.IssuedAt()
	if err != nil {
		return pl.reject(ctx, StatementSigned, MalformedStatement, "issued_at", err)
	}
	now := pl.cfg.Now()
	if issued.After(now.Add(pl.cfg.ClockSkew)) {
		return pl.reject(ctx, StatementSigned, Expired, fmt.Sprintf("issued_at %s is in the future", issued.Format(time.RFC3339)), nil)
	}
	if now.Sub(issued) > pl.cfg.MaxStatementAge {
		return pl.reject(ctx, StatementSigned, Expired, fmt.Sprintf("statement older than %s", pl.cfg.MaxStatementAge), nil)
	}
	return nil
}

// fetchOnce runs a single evidence call under the configured timeout.
func fetchOnce[T any](ctx context.Context, pl pipeline, what string, call func(ctx context.Context) (T, error)) (T, error) {
	fctx, cancel := context.WithTimeout(ctx, pl.cfg.Timeout)
	defer cancel()
	v, err := call(fctx)
	if err != nil {
		var zero T
		return zero, pl.reject(ctx, EvidenceFetched, EvidenceUnreachable, what, err)
	}
	return v, nil
}

func (pl pipeline) mismatch(ctx context.Context, message string) error {
	return pl.reject(ctx, EvidenceFetched, EvidenceMismatch, message, nil)
}
