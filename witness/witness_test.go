package witness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spruceid/rebase-sub001/content"
	"github.com/spruceid/rebase-sub001/fetch"
	"github.com/spruceid/rebase-sub001/proof"
	"github.com/spruceid/rebase-sub001/signer"
	"github.com/spruceid/rebase-sub001/statement"
	"github.com/spruceid/rebase-sub001/testing/fixtures"
	"github.com/spruceid/rebase-sub001/testing/helpers"
	"github.com/stretchr/testify/require"
)

type fakeDNS struct {
	calls  int
	prefix string
	fn     func(ctx context.Context) ([]string, error)
}

func (f *fakeDNS) TXT(ctx context.Context, domain, prefix string) ([]string, error) {
	f.calls++
	f.prefix = prefix
	return f.fn(ctx)
}

func records(values ...string) *fakeDNS {
	return &fakeDNS{fn: func(context.Context) ([]string, error) { return values, nil }}
}

type fakeGists struct {
	calls int
	gist  fetch.Gist
}

func (f *fakeGists) Gist(ctx context.Context, id string) (fetch.Gist, error) {
	f.calls++
	return f.gist, nil
}

type fakeTweets struct {
	calls int
	tweet fetch.Tweet
}

func (f *fakeTweets) Tweet(ctx context.Context, url string) (fetch.Tweet, error) {
	f.calls++
	return f.tweet, nil
}

type fakeOwner struct {
	calls   int
	address string
	owns    bool
}

func (f *fakeOwner) Owns(ctx context.Context, contract, network, address string) (bool, error) {
	f.calls++
	f.address = address
	return f.owns, nil
}

type fakePOAP struct {
	calls   int
	address string
	owns    bool
}

func (f *fakePOAP) Owns(ctx context.Context, eventID, address string) (bool, error) {
	f.calls++
	f.address = address
	return f.owns, nil
}

type fakeMailer struct {
	sent []fetch.Message
}

func (f *fakeMailer) Send(ctx context.Context, m fetch.Message) error {
	f.sent = append(f.sent, m)
	return nil
}

func requireRejected(t *testing.T, err error, stage State, reason string) {
	t.Helper()
	require.Error(t, err)
	var re RejectedError
	require.True(t, errors.As(err, &re), "not a rejection: %v", err)
	require.Equal(t, reason, re.Reason(), err.Error())
	require.Equal(t, stage, re.Stage(), err.Error())
}

func alice(t *testing.T) signer.Ed25519 {
	t.Helper()
	return helpers.Must(signer.NewEd25519(fixtures.Alice))
}

func sign(t *testing.T, s signer.Signer, st statement.Statement) (string, string) {
	t.Helper()
	text, err := st.Generate()
	require.NoError(t, err)
	sig, err := s.Sign(text)
	require.NoError(t, err)
	return text, sig
}

func TestDNS(t *testing.T) {
	a := alice(t)
	st := statement.DNS{Subject: a.AsSubject(), Domain: "example.com"}
	text, sig := sign(t, a, st)
	require.Equal(t, "example.com is linked to "+fixtures.Alice.DID().String(), text)
	p := helpers.Must(proof.NewDNS(st, sig))

	t.Run("verified", func(t *testing.T) {
		dns := records(text)
		flow := NewDNS(DefaultConfig(), dns)

		got, err := flow.Statement(st)
		require.NoError(t, err)
		require.Equal(t, text, got)

		c, err := flow.Verify(context.Background(), p, text)
		require.NoError(t, err)
		require.Equal(t, 1, dns.calls)
		require.Equal(t, DefaultDNSPrefix, dns.prefix)
		require.Equal(t, "example.com", c.Subject()["domain"])
		require.Equal(t, fixtures.Alice.DID().String(), c.Subject()["id"])
	})

	t.Run("any record matches", func(t *testing.T) {
		_, err := NewDNS(DefaultConfig(), records("wrong", text)).Verify(context.Background(), p, text)
		require.NoError(t, err)
	})

	t.Run("no record matches", func(t *testing.T) {
		_, err := NewDNS(DefaultConfig(), records("wrong")).Verify(context.Background(), p, text)
		requireRejected(t, err, EvidenceFetched, EvidenceMismatch)
	})

	t.Run("containment is not enough", func(t *testing.T) {
		_, err := NewDNS(DefaultConfig(), records(`"`+text+`"`)).Verify(context.Background(), p, text)
		requireRejected(t, err, EvidenceFetched, EvidenceMismatch)
	})

	t.Run("tampered text", func(t *testing.T) {
		dns := records(text)
		_, err := NewDNS(DefaultConfig(), dns).Verify(context.Background(), p, text+" ")
		requireRejected(t, err, StatementRequested, StatementMismatch)
		require.Zero(t, dns.calls)
	})

	t.Run("tampered statement", func(t *testing.T) {
		dns := records(text)
		other := helpers.Must(proof.NewDNS(statement.DNS{Subject: a.AsSubject(), Domain: "example.org"}, sig))
		_, err := NewDNS(DefaultConfig(), dns).Verify(context.Background(), other, text)
		requireRejected(t, err, StatementRequested, StatementMismatch)
		require.Zero(t, dns.calls)
	})

	t.Run("invalid signature", func(t *testing.T) {
		dns := records(text)
		forged := helpers.Must(proof.NewDNS(st, helpers.Must(helpers.Must(signer.NewEd25519(fixtures.Mallory)).Sign(text))))
		_, err := NewDNS(DefaultConfig(), dns).Verify(context.Background(), forged, text)
		requireRejected(t, err, StatementSigned, InvalidSignature)
		require.Zero(t, dns.calls)
	})

	t.Run("unreachable", func(t *testing.T) {
		dns := &fakeDNS{fn: func(context.Context) ([]string, error) { return nil, errors.New("connection refused") }}
		_, err := NewDNS(DefaultConfig(), dns).Verify(context.Background(), p, text)
		requireRejected(t, err, EvidenceFetched, EvidenceUnreachable)
	})

	t.Run("fetch timeout", func(t *testing.T) {
		dns := &fakeDNS{fn: func(ctx context.Context) ([]string, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
		cfg := DefaultConfig()
		cfg.Timeout = 10 * time.Millisecond
		_, err := NewDNS(cfg, dns).Verify(context.Background(), p, text)
		requireRejected(t, err, EvidenceFetched, EvidenceUnreachable)
	})

	t.Run("aborted by caller", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		dns := &fakeDNS{fn: func(ctx context.Context) ([]string, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		}}
		_, err := NewDNS(DefaultConfig(), dns).Verify(ctx, p, text)
		requireRejected(t, err, EvidenceFetched, Aborted)
		require.True(t, IsAborted(err))
	})

	t.Run("cancelled before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		dns := records(text)
		_, err := NewDNS(DefaultConfig(), dns).Verify(ctx, p, text)
		require.True(t, IsAborted(err))
		require.Zero(t, dns.calls)
	})

	t.Run("wrong kind", func(t *testing.T) {
		other := helpers.Must(proof.NewSoundCloud(statement.SoundCloud{Subject: a.AsSubject(), Permalink: "alice"}, sig))
		_, err := NewDNS(DefaultConfig(), records(text)).Verify(context.Background(), other, text)
		requireRejected(t, err, StatementRequested, KindMismatch)

		_, err = NewDNS(DefaultConfig(), records(text)).Statement(statement.Like{Subject: a.AsSubject(), Target: "x"})
		requireRejected(t, err, StatementRequested, KindMismatch)
	})
}

func TestSameController(t *testing.T) {
	a := alice(t)
	c := signer.NewEthereum(fixtures.Carol)
	st := statement.SameController{ID1: a.AsSubject(), ID2: c.AsSubject()}
	text, err := st.Generate()
	require.NoError(t, err)
	require.Equal(t, "I am attesting that DID "+fixtures.Alice.DID().String()+" is linked to Ethereum Address "+c.ID(), text)

	sig1 := helpers.Must(a.Sign(text))
	sig2 := helpers.Must(c.Sign(text))
	flow := NewAssertion(DefaultConfig(), statement.KindSameController)

	t.Run("both valid", func(t *testing.T) {
		got, err := flow.Verify(context.Background(), helpers.Must(proof.NewSameController(st, sig1, sig2)), text)
		require.NoError(t, err)
		require.Equal(t, sig1, got.Subject()["signature1"])
		require.Equal(t, sig2, got.Subject()["signature2"])
	})

	t.Run("second invalid", func(t *testing.T) {
		bad := helpers.Must(signer.NewEthereum(fixtures.Carol).Sign("something else"))
		got, err := flow.Verify(context.Background(), helpers.Must(proof.NewSameController(st, sig1, bad)), text)
		requireRejected(t, err, StatementSigned, InvalidSignature)
		require.Nil(t, got)
	})

	t.Run("swapped", func(t *testing.T) {
		_, err := flow.Verify(context.Background(), helpers.Must(proof.NewSameController(st, sig2, sig1)), text)
		require.Equal(t, InvalidSignature, ReasonOf(err))
	})
}

func TestCrossKey(t *testing.T) {
	a := alice(t)
	c := signer.NewEthereum(fixtures.Carol)
	claim := helpers.Must(signer.CrossKeyClaim(a, c))
	st := statement.CrossKey{Key1: a.AsSubject(), Key2: c.AsSubject()}
	text := helpers.Must(st.Generate())
	flow := NewAssertion(DefaultConfig(), statement.KindCrossKey)

	got, err := flow.Verify(context.Background(), helpers.Must(proof.NewCrossKey(st, claim, "")), text)
	require.NoError(t, err)
	require.Equal(t, text, got.Subject()["statement"])

	// a claim over a different message with valid signatures
	other := helpers.Must(signer.CrossKeyClaim(a, c, signer.WithMessage(func(x, y signer.Named) (string, error) {
		return "something else", nil
	})))
	_, err = flow.Verify(context.Background(), helpers.Must(proof.NewCrossKey(st, other, "")), text)
	requireRejected(t, err, StatementRequested, StatementMismatch)
}

func TestSelfIssued(t *testing.T) {
	a := alice(t)
	st := statement.BasicPost{Subject: a.AsSubject(), Title: "Hello", Body: "World"}
	text, sig := sign(t, a, st)
	flow := NewAssertion(DefaultConfig(), statement.KindBasicPost)

	got, err := flow.Verify(context.Background(), helpers.Must(proof.NewSelfIssued(st, sig)), text)
	require.NoError(t, err)
	require.Equal(t, "Hello", got.Subject()["title"])
	require.Equal(t, sig, got.Subject()["signature"])
}

func TestNFT(t *testing.T) {
	c := signer.NewEthereum(fixtures.Carol)
	now := time.Date(2023, 1, 2, 3, 10, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return now }

	build := func(issued string) (proof.Proof, string) {
		st := statement.NFTOwnership{Subject: c.AsSubject(), Contract: "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d", Network: "eth-mainnet", Issued: issued}
		text, sig := sign(t, c, st)
		return helpers.Must(proof.NewNFTOwnership(st, sig)), text
	}

	t.Run("owned", func(t *testing.T) {
		p, text := build("2023-01-02T03:04:05Z")
		indexer := &fakeOwner{owns: true}
		_, err := NewNFT(cfg, indexer).Verify(context.Background(), p, text)
		require.NoError(t, err)
		require.Equal(t, c.ID(), indexer.address)
	})

	t.Run("not owned", func(t *testing.T) {
		p, text := build("2023-01-02T03:04:05Z")
		_, err := NewNFT(cfg, &fakeOwner{}).Verify(context.Background(), p, text)
		requireRejected(t, err, EvidenceFetched, EvidenceMismatch)
	})

	t.Run("stale", func(t *testing.T) {
		p, text := build("2023-01-02T02:00:00Z")
		indexer := &fakeOwner{owns: true}
		_, err := NewNFT(cfg, indexer).Verify(context.Background(), p, text)
		requireRejected(t, err, StatementSigned, Expired)
		require.Zero(t, indexer.calls)
	})

	t.Run("future", func(t *testing.T) {
		p, text := build("2023-01-02T04:00:00Z")
		_, err := NewNFT(cfg, &fakeOwner{owns: true}).Verify(context.Background(), p, text)
		requireRejected(t, err, StatementSigned, Expired)
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		st := statement.NFTOwnership{Subject: c.AsSubject(), Contract: "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d", Network: "eth-mainnet", Issued: "not-a-date"}
		_, err := NewNFT(cfg, &fakeOwner{}).Statement(st)
		requireRejected(t, err, StatementRequested, MalformedStatement)
	})

	t.Run("DID subject", func(t *testing.T) {
		a := alice(t)
		st := statement.NFTOwnership{Subject: a.AsSubject(), Contract: "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d", Network: "eth-mainnet", Issued: "2023-01-02T03:04:05Z"}
		text, sig := sign(t, a, st)
		indexer := &fakeOwner{owns: true}
		_, err := NewNFT(cfg, indexer).Verify(context.Background(), helpers.Must(proof.NewNFTOwnership(st, sig)), text)
		require.True(t, IsUnimplemented(err))
		require.Zero(t, indexer.calls)
	})
}

func TestPOAP(t *testing.T) {
	c := signer.NewEthereum(fixtures.Carol)
	now := time.Date(2023, 1, 2, 3, 10, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return now }

	st := statement.POAPOwnership{Subject: c.AsSubject(), EventID: "12345", Network: "xdai", Issued: "2023-01-02T03:04:05.123Z"}
	text, sig := sign(t, c, st)
	api := &fakePOAP{owns: true}
	got, err := NewPOAP(cfg, api).Verify(context.Background(), helpers.Must(proof.NewPOAPOwnership(st, sig)), text)
	require.NoError(t, err)
	require.Equal(t, 1, api.calls)
	require.Equal(t, "12345", got.Subject()["event_id"])
}

func TestGitHub(t *testing.T) {
	a := alice(t)
	st := statement.GitHub{Subject: a.AsSubject(), Handle: "Alice"}
	text, sig := sign(t, a, st)
	p := helpers.Must(proof.NewGitHub(st, sig, "abc123"))

	gists := &fakeGists{gist: fetch.Gist{Owner: "alice", Files: map[string]string{"readme.md": "# proof\n\n" + text + "\n" + sig}}}
	got, err := NewGitHub(DefaultConfig(), gists).Verify(context.Background(), p, text)
	require.NoError(t, err)
	require.NotNil(t, got.Evidence())

	someoneElse := &fakeGists{gist: fetch.Gist{Owner: "mallory", Files: map[string]string{"readme.md": text}}}
	_, err = NewGitHub(DefaultConfig(), someoneElse).Verify(context.Background(), p, text)
	requireRejected(t, err, EvidenceFetched, EvidenceMismatch)

	empty := &fakeGists{gist: fetch.Gist{Owner: "alice", Files: map[string]string{"readme.md": "nothing"}}}
	_, err = NewGitHub(DefaultConfig(), empty).Verify(context.Background(), p, text)
	requireRejected(t, err, EvidenceFetched, EvidenceMismatch)
}

func TestTwitter(t *testing.T) {
	a := alice(t)
	st := statement.Twitter{Subject: a.AsSubject(), Handle: "alice"}
	text, sig := sign(t, a, st)

	tweets := &fakeTweets{tweet: fetch.Tweet{ID: "1", Author: "Alice", Text: `"` + text + `" ` + sig}}
	_, err := NewTwitter(DefaultConfig(), tweets).Verify(context.Background(), helpers.Must(proof.NewTwitter(st, sig, "https://twitter.com/alice/status/1")), text)
	require.NoError(t, err)

	tweets = &fakeTweets{tweet: fetch.Tweet{ID: "1", Author: "bob", Text: text}}
	_, err = NewTwitter(DefaultConfig(), tweets).Verify(context.Background(), helpers.Must(proof.NewTwitter(st, sig, "https://twitter.com/bob/status/1")), text)
	requireRejected(t, err, EvidenceFetched, EvidenceMismatch)
	require.Zero(t, tweets.calls)
}

type fakePosts struct {
	calls int
	post  fetch.Post
	err   error
}

func (f *fakePosts) Post(ctx context.Context, permalink string) (fetch.Post, error) {
	f.calls++
	return f.post, f.err
}

func TestReddit(t *testing.T) {
	a := alice(t)
	st := statement.Reddit{Subject: a.AsSubject(), Handle: "alice"}
	text, sig := sign(t, a, st)
	p := helpers.Must(proof.NewReddit(st, sig, "/r/rebase/comments/abc/proof/"))

	tests := []struct {
		name   string
		posts  *fakePosts
		reason string
	}{
		{"statement in body", &fakePosts{post: fetch.Post{Author: "alice", Title: "proof", Body: text + "\n" + sig}}, ""},
		{"statement in title", &fakePosts{post: fetch.Post{Author: "alice", Title: text}}, ""},
		{"author with prefix", &fakePosts{post: fetch.Post{Author: "u/Alice", Body: text}}, EvidenceMismatch},
		{"author case", &fakePosts{post: fetch.Post{Author: "Alice", Body: text}}, ""},
		{"other author", &fakePosts{post: fetch.Post{Author: "mallory", Body: text}}, EvidenceMismatch},
		{"statement missing", &fakePosts{post: fetch.Post{Author: "alice", Title: "proof", Body: "nothing"}}, EvidenceMismatch},
		{"unreachable", &fakePosts{err: errors.New("connection refused")}, EvidenceUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReddit(DefaultConfig(), tt.posts).Verify(context.Background(), p, text)
			require.Equal(t, 1, tt.posts.calls)
			if tt.reason != "" {
				requireRejected(t, err, EvidenceFetched, tt.reason)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "alice", got.Subject()["handle"])
			require.Equal(t, "/r/rebase/comments/abc/proof/", got.Evidence()[0]["permalink"])
		})
	}

	t.Run("handle with prefix", func(t *testing.T) {
		st := statement.Reddit{Subject: a.AsSubject(), Handle: "u/alice"}
		text, sig := sign(t, a, st)
		p := helpers.Must(proof.NewReddit(st, sig, "/r/rebase/comments/abc/proof/"))
		_, err := NewReddit(DefaultConfig(), &fakePosts{post: fetch.Post{Author: "alice", Body: text}}).Verify(context.Background(), p, text)
		require.NoError(t, err)
	})

	t.Run("tampered text", func(t *testing.T) {
		posts := &fakePosts{post: fetch.Post{Author: "alice", Body: text}}
		_, err := NewReddit(DefaultConfig(), posts).Verify(context.Background(), p, text+".")
		requireRejected(t, err, StatementRequested, StatementMismatch)
		require.Zero(t, posts.calls)
	})
}

type fakeProfiles struct {
	calls   int
	profile fetch.Profile
	err     error
}

func (f *fakeProfiles) Profile(ctx context.Context, permalink string) (fetch.Profile, error) {
	f.calls++
	return f.profile, f.err
}

func TestSoundCloud(t *testing.T) {
	a := alice(t)
	st := statement.SoundCloud{Subject: a.AsSubject(), Permalink: "alice-beats"}
	text, sig := sign(t, a, st)
	p := helpers.Must(proof.NewSoundCloud(st, sig))

	tests := []struct {
		name     string
		profiles *fakeProfiles
		reason   string
	}{
		{"verified", &fakeProfiles{profile: fetch.Profile{Permalink: "alice-beats", Description: "beats\n" + text}}, ""},
		{"permalink case", &fakeProfiles{profile: fetch.Profile{Permalink: "Alice-Beats", Description: text}}, ""},
		{"other profile", &fakeProfiles{profile: fetch.Profile{Permalink: "mallory", Description: text}}, EvidenceMismatch},
		{"statement missing", &fakeProfiles{profile: fetch.Profile{Permalink: "alice-beats", Description: "beats"}}, EvidenceMismatch},
		{"unreachable", &fakeProfiles{err: errors.New("timeout")}, EvidenceUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSoundCloud(DefaultConfig(), tt.profiles).Verify(context.Background(), p, text)
			require.Equal(t, 1, tt.profiles.calls)
			if tt.reason != "" {
				requireRejected(t, err, EvidenceFetched, tt.reason)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "alice-beats", got.Subject()["permalink"])
			require.Equal(t, "https://soundcloud.com/alice-beats", got.Evidence()[0]["profile_url"])
		})
	}

	t.Run("invalid signature", func(t *testing.T) {
		profiles := &fakeProfiles{profile: fetch.Profile{Permalink: "alice-beats", Description: text}}
		mallory := helpers.Must(signer.NewEd25519(fixtures.Mallory))
		_, forged := sign(t, mallory, st)
		_, err := NewSoundCloud(DefaultConfig(), profiles).Verify(context.Background(), helpers.Must(proof.NewSoundCloud(st, forged)), text)
		requireRejected(t, err, StatementSigned, InvalidSignature)
		require.Zero(t, profiles.calls)
	})
}

func TestEmail(t *testing.T) {
	a := alice(t)
	st := statement.Email{Subject: a.AsSubject(), Email: "alice@example.com"}
	text, sig := sign(t, a, st)

	now := time.Unix(1700000000, 0)
	cfg := DefaultConfig()
	cfg.ChallengeSecret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Now = func() time.Time { return now }

	mailer := &fakeMailer{}
	flow, err := NewEmail(cfg, mailer)
	require.NoError(t, err)

	challenge, err := flow.Challenge(context.Background(), helpers.Must(proof.NewEmail(st, sig, "")), text)
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "alice@example.com", mailer.sent[0].To)
	require.Contains(t, mailer.sent[0].Body, challenge)

	got, err := flow.Verify(context.Background(), helpers.Must(proof.NewEmail(st, sig, challenge)), text)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got.Subject()["email"])

	t.Run("wrong challenge", func(t *testing.T) {
		_, err := flow.Verify(context.Background(), helpers.Must(proof.NewEmail(st, sig, "1700000000.00")), text)
		requireRejected(t, err, EvidenceFetched, EvidenceMismatch)
		_, err = flow.Verify(context.Background(), helpers.Must(proof.NewEmail(st, sig, "garbage")), text)
		requireRejected(t, err, EvidenceFetched, EvidenceMismatch)
	})

	t.Run("expired", func(t *testing.T) {
		later := cfg
		later.Now = func() time.Time { return now.Add(DefaultChallengeTTL + time.Second) }
		expired := helpers.Must(NewEmail(later, mailer))
		_, err := expired.Verify(context.Background(), helpers.Must(proof.NewEmail(st, sig, challenge)), text)
		requireRejected(t, err, EvidenceFetched, Expired)
	})

	t.Run("no mail for bad signatures", func(t *testing.T) {
		before := len(mailer.sent)
		_, err := flow.Challenge(context.Background(), helpers.Must(proof.NewEmail(st, "00", "")), text)
		require.Error(t, err)
		require.Len(t, mailer.sent, before)
	})

	t.Run("short secret", func(t *testing.T) {
		_, err := NewEmail(Config{ChallengeSecret: []byte("short")}, mailer)
		require.Error(t, err)
	})
}

func TestVerifier(t *testing.T) {
	a := alice(t)
	st := statement.DNS{Subject: a.AsSubject(), Domain: "example.com"}
	text, sig := sign(t, a, st)

	cfg := DefaultConfig()
	cfg.ChallengeSecret = []byte("0123456789abcdef0123456789abcdef")
	v, err := NewVerifier(cfg, fetch.Set{DNS: records(text), Mailer: &fakeMailer{}})
	require.NoError(t, err)

	for _, kind := range statement.Kinds() {
		_, ok := v.Flow(kind)
		require.True(t, ok, "no flow for %s", kind)
	}

	got, err := v.Statement(st)
	require.NoError(t, err)
	require.Equal(t, text, got)

	var c content.Content
	c, err = v.Verify(context.Background(), helpers.Must(proof.NewDNS(st, sig)), text)
	require.NoError(t, err)
	require.Equal(t, statement.KindDNS, c.Kind())

	_, err = v.Verify(context.Background(), nil, text)
	require.Error(t, err)

	noEmail, err := NewVerifier(DefaultConfig(), fetch.Set{})
	require.NoError(t, err)
	_, ok := noEmail.Flow(statement.KindEmail)
	require.False(t, ok)
}

func TestRejectionOf(t *testing.T) {
	a := alice(t)
	st := statement.DNS{Subject: a.AsSubject(), Domain: "example.com"}
	text, sig := sign(t, a, st)
	p := helpers.Must(proof.NewDNS(st, sig))

	_, rejected := NewDNS(DefaultConfig(), records("wrong")).Verify(context.Background(), p, text)
	r := RejectionOf(rejected)
	require.Equal(t, EvidenceFetched, r.Stage)
	require.NotNil(t, r.Name)
	require.Equal(t, EvidenceMismatch, *r.Name)
	require.Nil(t, r.Stack)
	require.Contains(t, r.Message, "rejected at EvidenceFetched")

	b, err := json.Marshal(r)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(b, &wire))
	require.Equal(t, map[string]any{
		"name":    EvidenceMismatch,
		"message": r.Message,
		"stage":   string(EvidenceFetched),
	}, wire)

	t.Run("wrapped", func(t *testing.T) {
		r := RejectionOf(fmt.Errorf("verifying: %w", rejected))
		require.Equal(t, EvidenceFetched, r.Stage)
	})

	t.Run("not a rejection", func(t *testing.T) {
		r := RejectionOf(errors.New("boom"))
		require.Nil(t, r.Name)
		require.Empty(t, r.Stage)
		require.Equal(t, "boom", r.Message)
	})
}
