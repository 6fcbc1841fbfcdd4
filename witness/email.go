package witness

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spruceid/rebase-sub001/content"
	"github.com/spruceid/rebase-sub001/fetch"
	"github.com/spruceid/rebase-sub001/proof"
	"github.com/spruceid/rebase-sub001/statement"
)

// MinChallengeSecret is the shortest accepted challenge key.
const MinChallengeSecret = 32

// Email verifies addresses with a challenge mailed to them. Challenge mails
// it, Verify checks the copy the subject returns.
//
// A challenge is "<unix seconds>.<hex HMAC-SHA256>" over the address, the
// statement, the signature and the timestamp, so no state is kept between
// the two calls.
type Email struct {
	pipeline
	mailer fetch.Mailer
}

func NewEmail(cfg Config, mailer fetch.Mailer) (Email, error) {
	if len(cfg.ChallengeSecret) < MinChallengeSecret {
		return Email{}, fmt.Errorf("challenge secret must be at least %d bytes", MinChallengeSecret)
	}
	if mailer == nil {
		return Email{}, errors.New("email flow needs a mailer")
	}
	return Email{newPipeline(statement.KindEmail, cfg), mailer}, nil
}

func (f Email) mac(p proof.Email, text string, ts int64) string {
	h := hmac.New(sha256.New, f.cfg.ChallengeSecret)
	for _, part := range []string{p.Stmt.Email, text, p.Signature, strconv.FormatInt(ts, 10)} {
		// length prefixed so parts cannot run into each other
		fmt.Fprintf(h, "%d:%s", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Challenge checks the statement and signature of p and mails a challenge to
// the address. The challenge of p itself is ignored. It returns the
// challenge so callers can log or test it; it must never be handed to
// anyone but the mailbox owner.
func (f Email) Challenge(ctx context.Context, p proof.Proof, text string) (string, error) {
	if err := f.signed(ctx, p, text); err != nil {
		return "", err
	}
	ep := p.(proof.Email)
	ts := f.cfg.Now().Unix()
	challenge := strconv.FormatInt(ts, 10) + "." + f.mac(ep, text, ts)

	msg := fetch.Message{
		To:      ep.Stmt.Email,
		Subject: "Verify your email address",
		Body:    "Your verification code is:\n\n" + challenge + "\n\nIt expires in " + f.cfg.ChallengeTTL.String() + ".",
	}
	if _, err := fetchOnce(ctx, f.pipeline, "mailing challenge", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.mailer.Send(ctx, msg)
	}); err != nil {
		return "", err
	}
	f.log.Debugw("challenge mailed")
	return challenge, nil
}

func (f Email) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	return f.verify(ctx, p, text, func(ctx context.Context, p proof.Proof, text string) error {
		ep := p.(proof.Email)
		tsPart, mac, ok := strings.Cut(ep.Challenge, ".")
		if !ok {
			return f.mismatch(ctx, "malformed challenge")
		}
		ts, err := strconv.ParseInt(tsPart, 10, 64)
		if err != nil {
			return f.mismatch(ctx, "malformed challenge")
		}
		if !hmac.Equal([]byte(mac), []byte(f.mac(ep, text, ts))) {
			return f.mismatch(ctx, "challenge does not match")
		}
		issued := time.Unix(ts, 0)
		now := f.cfg.Now()
		if issued.After(now.Add(f.cfg.ClockSkew)) || now.Sub(issued) > f.cfg.ChallengeTTL {
			return f.reject(ctx, EvidenceFetched, Expired, "challenge expired", nil)
		}
		return nil
	})
}
