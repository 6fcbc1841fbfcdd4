// Package fetch retrieves the third party evidence witness flows match
// statements against. Every call is a single request with no retries.
package fetch

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("fetch")

// DNS looks up TXT records.
type DNS interface {
	// TXT returns the values of the TXT records of domain that carry prefix,
	// with the prefix removed.
	TXT(ctx context.Context, domain, prefix string) ([]string, error)
}

// Gist is a GitHub gist.
type Gist struct {
	ID    string
	Owner string
	// Files maps file names to their content.
	Files map[string]string
}

type Gists interface {
	Gist(ctx context.Context, id string) (Gist, error)
}

// Tweet is a post on Twitter.
type Tweet struct {
	ID     string
	Author string
	Text   string
}

type Tweets interface {
	Tweet(ctx context.Context, url string) (Tweet, error)
}

// Post is a Reddit post.
type Post struct {
	Author string
	Title  string
	Body   string
}

type Reddit interface {
	Post(ctx context.Context, permalink string) (Post, error)
}

// Profile is a SoundCloud user profile.
type Profile struct {
	Permalink   string
	Username    string
	Description string
}

type SoundCloud interface {
	Profile(ctx context.Context, permalink string) (Profile, error)
}

// NFT checks token ownership through a chain indexer.
type NFT interface {
	Owns(ctx context.Context, contract, network, address string) (bool, error)
}

// POAP checks attendance tokens.
type POAP interface {
	Owns(ctx context.Context, eventID, address string) (bool, error)
}
