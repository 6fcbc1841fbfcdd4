package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	neturl "net/url"
	"strings"

	fhttp "github.com/spruceid/rebase-sub001/fetch/http"
)

const (
	DefaultGitHubEndpoint     = "https://api.github.com"
	DefaultTwitterEndpoint    = "https://api.twitter.com"
	DefaultRedditEndpoint     = "https://www.reddit.com"
	DefaultSoundCloudEndpoint = "https://api-v2.soundcloud.com"
)

// GitHub fetches gists from the GitHub REST API.
type GitHub struct {
	channel  *fhttp.Channel
	endpoint string
}

func NewGitHub(channel *fhttp.Channel, endpoint string) *GitHub {
	if endpoint == "" {
		endpoint = DefaultGitHubEndpoint
	}
	return &GitHub{channel, strings.TrimSuffix(endpoint, "/")}
}

func (g *GitHub) Gist(ctx context.Context, id string) (Gist, error) {
	if id == "" || strings.ContainsAny(id, "/?#") {
		return Gist{}, fmt.Errorf("invalid gist id %q", id)
	}
	var res struct {
		ID    string `json:"id"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	log.Debugw("fetching gist", "id", id)
	if err := g.channel.GetJSON(ctx, g.endpoint+"/gists/"+id, &res); err != nil {
		return Gist{}, fmt.Errorf("fetching gist %s: %w", id, err)
	}
	gist := Gist{ID: res.ID, Owner: res.Owner.Login, Files: make(map[string]string, len(res.Files))}
	for name, f := range res.Files {
		gist.Files[name] = f.Content
	}
	return gist, nil
}

// ParseTweetURL extracts the handle and tweet id from a URL of the form
// https://twitter.com/<handle>/status/<id>. x.com URLs are accepted too.
func ParseTweetURL(url string) (handle, id string, err error) {
	u, err := neturl.Parse(url)
	if err != nil {
		return "", "", fmt.Errorf("parsing tweet URL: %w", err)
	}
	switch strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") {
	case "twitter.com", "x.com", "mobile.twitter.com":
	default:
		return "", "", fmt.Errorf("not a tweet URL: %q", url)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[1] != "status" || parts[0] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("not a tweet URL: %q", url)
	}
	for _, r := range parts[2] {
		if r < '0' || r > '9' {
			return "", "", fmt.Errorf("invalid tweet id in %q", url)
		}
	}
	return parts[0], parts[2], nil
}

// Twitter fetches tweets from the Twitter v2 API. The channel must carry the
// bearer token.
type Twitter struct {
	channel  *fhttp.Channel
	endpoint string
}

func NewTwitter(channel *fhttp.Channel, endpoint string) *Twitter {
	if endpoint == "" {
		endpoint = DefaultTwitterEndpoint
	}
	return &Twitter{channel, strings.TrimSuffix(endpoint, "/")}
}

func (t *Twitter) Tweet(ctx context.Context, url string) (Tweet, error) {
	_, id, err := ParseTweetURL(url)
	if err != nil {
		return Tweet{}, err
	}
	var res struct {
		Data struct {
			ID       string `json:"id"`
			Text     string `json:"text"`
			AuthorID string `json:"author_id"`
		} `json:"data"`
		Includes struct {
			Users []struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"users"`
		} `json:"includes"`
	}
	q := neturl.Values{}
	q.Set("expansions", "author_id")
	q.Set("user.fields", "username")
	log.Debugw("fetching tweet", "id", id)
	if err := t.channel.GetJSON(ctx, t.endpoint+"/2/tweets/"+id+"?"+q.Encode(), &res); err != nil {
		return Tweet{}, fmt.Errorf("fetching tweet %s: %w", id, err)
	}
	tweet := Tweet{ID: res.Data.ID, Text: res.Data.Text}
	for _, u := range res.Includes.Users {
		if u.ID == res.Data.AuthorID {
			tweet.Author = u.Username
		}
	}
	if tweet.Author == "" {
		return Tweet{}, fmt.Errorf("fetching tweet %s: author not included in response", id)
	}
	return tweet, nil
}

// RedditAPI fetches posts through the JSON rendering of their permalink.
type RedditAPI struct {
	channel  *fhttp.Channel
	endpoint string
}

func NewReddit(channel *fhttp.Channel, endpoint string) *RedditAPI {
	if endpoint == "" {
		endpoint = DefaultRedditEndpoint
	}
	return &RedditAPI{channel, strings.TrimSuffix(endpoint, "/")}
}

// Post fetches the post at permalink, which is either a path such as
// /r/sub/comments/id/title/ or a full reddit.com URL.
func (r *RedditAPI) Post(ctx context.Context, permalink string) (Post, error) {
	path := permalink
	if u, err := neturl.Parse(permalink); err == nil && u.IsAbs() {
		host := strings.ToLower(u.Hostname())
		if host != "reddit.com" && !strings.HasSuffix(host, ".reddit.com") {
			return Post{}, fmt.Errorf("not a reddit permalink: %q", permalink)
		}
		path = u.Path
	}
	if !strings.Contains(path, "/comments/") {
		return Post{}, fmt.Errorf("not a reddit permalink: %q", permalink)
	}
	path = "/" + strings.Trim(path, "/")

	var listings []struct {
		Data struct {
			Children []struct {
				Data struct {
					Author   string `json:"author"`
					Title    string `json:"title"`
					Selftext string `json:"selftext"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	log.Debugw("fetching reddit post", "permalink", path)
	if err := r.channel.GetJSON(ctx, r.endpoint+path+".json", &listings); err != nil {
		return Post{}, fmt.Errorf("fetching reddit post %s: %w", path, err)
	}
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return Post{}, fmt.Errorf("fetching reddit post %s: empty listing", path)
	}
	p := listings[0].Data.Children[0].Data
	return Post{Author: p.Author, Title: p.Title, Body: p.Selftext}, nil
}

// SoundCloudAPI resolves profiles with the SoundCloud API.
type SoundCloudAPI struct {
	channel  *fhttp.Channel
	endpoint string
	clientID string
}

func NewSoundCloud(channel *fhttp.Channel, endpoint, clientID string) *SoundCloudAPI {
	if endpoint == "" {
		endpoint = DefaultSoundCloudEndpoint
	}
	return &SoundCloudAPI{channel, strings.TrimSuffix(endpoint, "/"), clientID}
}

func (s *SoundCloudAPI) Profile(ctx context.Context, permalink string) (Profile, error) {
	if permalink == "" || strings.ContainsAny(permalink, "/?#") {
		return Profile{}, fmt.Errorf("invalid soundcloud permalink %q", permalink)
	}
	q := neturl.Values{}
	q.Set("url", "https://soundcloud.com/"+permalink)
	if s.clientID != "" {
		q.Set("client_id", s.clientID)
	}
	body, err := s.channel.Get(ctx, s.endpoint+"/resolve?"+q.Encode())
	if err != nil {
		return Profile{}, fmt.Errorf("fetching soundcloud profile %s: %w", permalink, err)
	}
	var res struct {
		Kind        string  `json:"kind"`
		Permalink   string  `json:"permalink"`
		Username    string  `json:"username"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return Profile{}, fmt.Errorf("decoding soundcloud profile %s: %w", permalink, err)
	}
	if res.Kind != "user" {
		return Profile{}, fmt.Errorf("soundcloud permalink %s resolved to a %q", permalink, res.Kind)
	}
	p := Profile{Permalink: res.Permalink, Username: res.Username}
	if res.Description != nil {
		p.Description = *res.Description
	}
	return p, nil
}
