package witness

import (
	"context"
	"fmt"
	"strings"

	"github.com/spruceid/rebase-sub001/content"
	"github.com/spruceid/rebase-sub001/fetch"
	"github.com/spruceid/rebase-sub001/proof"
	"github.com/spruceid/rebase-sub001/statement"
	"github.com/spruceid/rebase-sub001/subject"
)

// Flow verifies proofs of one kind of claim.
type Flow interface {
	Kind() statement.Kind
	// Statement returns the text the subject has to sign.
	Statement(st statement.Statement) (string, error)
	// Verify checks that text is the statement of p, that p is signed and,
	// for witnessed kinds, that the statement was published.
	Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error)
}

// DNS verifies domains through TXT records.
type DNS struct {
	pipeline
	resolver fetch.DNS
}

func NewDNS(cfg Config, resolver fetch.DNS) DNS {
	return DNS{newPipeline(statement.KindDNS, cfg), resolver}
}

// Verify accepts the proof if any TXT record under the prefix equals the
// statement exactly.
func (f DNS) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	return f.verify(ctx, p, text, func(ctx context.Context, p proof.Proof, text string) error {
		domain := p.(proof.DNS).Stmt.Domain
		values, err := fetchOnce(ctx, f.pipeline, "TXT records of "+domain, func(ctx context.Context) ([]string, error) {
			return f.resolver.TXT(ctx, domain, f.cfg.DNSPrefix)
		})
		if err != nil {
			return err
		}
		for _, v := range values {
			if v == text {
				return nil
			}
		}
		return f.mismatch(ctx, fmt.Sprintf("no %s TXT record of %s holds the statement", f.cfg.DNSPrefix, domain))
	})
}

// GitHub verifies handles through a gist containing the statement.
type GitHub struct {
	pipeline
	gists fetch.Gists
}

func NewGitHub(cfg Config, gists fetch.Gists) GitHub {
	return GitHub{newPipeline(statement.KindGitHub, cfg), gists}
}

func (f GitHub) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	return f.verify(ctx, p, text, func(ctx context.Context, p proof.Proof, text string) error {
		gp := p.(proof.GitHub)
		gist, err := fetchOnce(ctx, f.pipeline, "gist "+gp.GistID, func(ctx context.Context) (fetch.Gist, error) {
			return f.gists.Gist(ctx, gp.GistID)
		})
		if err != nil {
			return err
		}
		// GitHub logins are case insensitive
		if !strings.EqualFold(gist.Owner, gp.Stmt.Handle) {
			return f.mismatch(ctx, fmt.Sprintf("gist owned by %q, not %q", gist.Owner, gp.Stmt.Handle))
		}
		for _, body := range gist.Files {
			if strings.Contains(body, text) {
				return nil
			}
		}
		return f.mismatch(ctx, "no gist file contains the statement")
	})
}

// Twitter verifies handles through a tweet containing the statement.
type Twitter struct {
	pipeline
	tweets fetch.Tweets
}

func NewTwitter(cfg Config, tweets fetch.Tweets) Twitter {
	return Twitter{newPipeline(statement.KindTwitter, cfg), tweets}
}

func (f Twitter) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	return f.verify(ctx, p, text, func(ctx context.Context, p proof.Proof, text string) error {
		tp := p.(proof.Twitter)
		want := strings.TrimPrefix(tp.Stmt.Handle, "@")
		handle, _, err := fetch.ParseTweetURL(tp.TweetURL)
		if err != nil {
			return f.mismatch(ctx, err.Error())
		}
		if !strings.EqualFold(handle, want) {
			return f.mismatch(ctx, fmt.Sprintf("tweet URL belongs to %q, not %q", handle, want))
		}
		tweet, err := fetchOnce(ctx, f.pipeline, "tweet "+tp.TweetURL, func(ctx context.Context) (fetch.Tweet, error) {
			return f.tweets.Tweet(ctx, tp.TweetURL)
		})
		if err != nil {
			return err
		}
		if !strings.EqualFold(tweet.Author, want) {
			return f.mismatch(ctx, fmt.Sprintf("tweet authored by %q, not %q", tweet.Author, want))
		}
		if !strings.Contains(tweet.Text, text) {
			return f.mismatch(ctx, "tweet does not contain the statement")
		}
		return nil
	})
}

// Reddit verifies handles through a post containing the statement.
type Reddit struct {
	pipeline
	posts fetch.Reddit
}

func NewReddit(cfg Config, posts fetch.Reddit) Reddit {
	return Reddit{newPipeline(statement.KindReddit, cfg), posts}
}

func (f Reddit) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	return f.verify(ctx, p, text, func(ctx context.Context, p proof.Proof, text string) error {
		rp := p.(proof.Reddit)
		post, err := fetchOnce(ctx, f.pipeline, "reddit post "+rp.Permalink, func(ctx context.Context) (fetch.Post, error) {
			return f.posts.Post(ctx, rp.Permalink)
		})
		if err != nil {
			return err
		}
		want := strings.TrimPrefix(rp.Stmt.Handle, "u/")
		if !strings.EqualFold(post.Author, want) {
			return f.mismatch(ctx, fmt.Sprintf("post authored by %q, not %q", post.Author, want))
		}
		if !strings.Contains(post.Body, text) && !strings.Contains(post.Title, text) {
			return f.mismatch(ctx, "post does not contain the statement")
		}
		return nil
	})
}

// SoundCloud verifies profiles whose description contains the statement.
type SoundCloud struct {
	pipeline
	profiles fetch.SoundCloud
}

func NewSoundCloud(cfg Config, profiles fetch.SoundCloud) SoundCloud {
	return SoundCloud{newPipeline(statement.KindSoundCloud, cfg), profiles}
}

func (f SoundCloud) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	return f.verify(ctx, p, text, func(ctx context.Context, p proof.Proof, text string) error {
		permalink := p.(proof.SoundCloud).Stmt.Permalink
		profile, err := fetchOnce(ctx, f.pipeline, "soundcloud profile "+permalink, func(ctx context.Context) (fetch.Profile, error) {
			return f.profiles.Profile(ctx, permalink)
		})
		if err != nil {
			return err
		}
		if !strings.EqualFold(profile.Permalink, permalink) {
			return f.mismatch(ctx, fmt.Sprintf("profile %q is not %q", profile.Permalink, permalink))
		}
		if !strings.Contains(profile.Description, text) {
			return f.mismatch(ctx, "profile description does not contain the statement")
		}
		return nil
	})
}

// ownerAddress is the chain address an ownership statement is about.
func ownerAddress(s subject.Subject) (string, bool) {
	switch v := subject.View(s).(type) {
	case subject.Ethereum:
		return v.Address, true
	default:
		return "", false
	}
}

// NFT verifies token ownership with a chain indexer.
type NFT struct {
	pipeline
	indexer fetch.NFT
}

func NewNFT(cfg Config, indexer fetch.NFT) NFT {
	return NFT{newPipeline(statement.KindNFTOwnership, cfg), indexer}
}

func (f NFT) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	return f.verify(ctx, p, text, func(ctx context.Context, p proof.Proof, text string) error {
		st := p.(proof.NFTOwnership).Stmt
		address, ok := ownerAddress(st.Subject)
		if !ok {
			return f.reject(ctx, EvidenceFetched, Unimplemented, fmt.Sprintf("NFT ownership of a %s subject", st.Subject.Type()), nil)
		}
		owns, err := fetchOnce(ctx, f.pipeline, "NFT ownership", func(ctx context.Context) (bool, error) {
			return f.indexer.Owns(ctx, st.Contract, st.Network, address)
		})
		if err != nil {
			return err
		}
		if !owns {
			return f.mismatch(ctx, fmt.Sprintf("%s holds no token of %s on %s", address, st.Contract, st.Network))
		}
		return nil
	})
}

// POAP verifies event attendance tokens.
type POAP struct {
	pipeline
	api fetch.POAP
}

func NewPOAP(cfg Config, api fetch.POAP) POAP {
	return POAP{newPipeline(statement.KindPOAPOwnership, cfg), api}
}

func (f POAP) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	return f.verify(ctx, p, text, func(ctx context.Context, p proof.Proof, text string) error {
		st := p.(proof.POAPOwnership).Stmt
		address, ok := ownerAddress(st.Subject)
		if !ok {
			return f.reject(ctx, EvidenceFetched, Unimplemented, fmt.Sprintf("POAP ownership of a %s subject", st.Subject.Type()), nil)
		}
		owns, err := fetchOnce(ctx, f.pipeline, "POAP ownership", func(ctx context.Context) (bool, error) {
			return f.api.Owns(ctx, st.EventID, address)
		})
		if err != nil {
			return err
		}
		if !owns {
			return f.mismatch(ctx, fmt.Sprintf("%s holds no POAP of event %s", address, st.EventID))
		}
		return nil
	})
}

// Assertion verifies kinds that need nothing but signatures: same
// controller, cross key and self issued statements.
type Assertion struct {
	pipeline
}

func NewAssertion(cfg Config, kind statement.Kind) Assertion {
	return Assertion{newPipeline(kind, cfg)}
}

func (f Assertion) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	return f.verify(ctx, p, text, nil)
}

// Verifier dispatches proofs to the flow of their kind.
type Verifier struct {
	flows map[statement.Kind]Flow
}

// NewVerifier builds a flow for every kind. The email flow is only built
// when a challenge secret is configured.
func NewVerifier(cfg Config, fetchers fetch.Set) (*Verifier, error) {
	flows := []Flow{
		NewDNS(cfg, fetchers.DNS),
		NewGitHub(cfg, fetchers.Gists),
		NewTwitter(cfg, fetchers.Tweets),
		NewReddit(cfg, fetchers.Reddit),
		NewSoundCloud(cfg, fetchers.SoundCloud),
		NewNFT(cfg, fetchers.NFT),
		NewPOAP(cfg, fetchers.POAP),
	}
	if len(cfg.ChallengeSecret) > 0 {
		email, err := NewEmail(cfg, fetchers.Mailer)
		if err != nil {
			return nil, err
		}
		flows = append(flows, email)
	}
	for _, kind := range statement.Kinds() {
		if kind == statement.KindSameController || kind == statement.KindCrossKey || statement.IsSelfIssued(kind) {
			flows = append(flows, NewAssertion(cfg, kind))
		}
	}

	v := &Verifier{flows: make(map[statement.Kind]Flow, len(flows))}
	for _, f := range flows {
		v.flows[f.Kind()] = f
	}
	return v, nil
}

// Flow returns the flow of kind.
func (v *Verifier) Flow(kind statement.Kind) (Flow, bool) {
	f, ok := v.flows[kind]
	return f, ok
}

func (v *Verifier) Statement(st statement.Statement) (string, error) {
	if st == nil {
		return "", NewRejectedError(StatementRequested, KindMismatch, "missing statement", nil)
	}
	f, ok := v.flows[st.Kind()]
	if !ok {
		return "", NewRejectedError(StatementRequested, Unimplemented, fmt.Sprintf("no flow for %s", st.Kind()), nil)
	}
	return f.Statement(st)
}

func (v *Verifier) Verify(ctx context.Context, p proof.Proof, text string) (content.Content, error) {
	if p == nil {
		return nil, NewRejectedError(StatementRequested, KindMismatch, "missing proof", nil)
	}
	f, ok := v.flows[p.Kind()]
	if !ok {
		return nil, NewRejectedError(StatementRequested, Unimplemented, fmt.Sprintf("no flow for %s", p.Kind()), nil)
	}
	return f.Verify(ctx, p, text)
}
