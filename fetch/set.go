package fetch

import (
	"net/http"

	fhttp "github.com/spruceid/rebase-sub001/fetch/http"
	"golang.org/x/time/rate"
)

// Endpoints configures the third party services. Empty endpoints use the
// public defaults.
type Endpoints struct {
	DoH        string
	GitHub     string
	Twitter    string
	Reddit     string
	SoundCloud string
	Alchemy    string
	POAP       string
	SendGrid   string

	GitHubToken        string
	TwitterBearerToken string
	SoundCloudClientID string
	AlchemyAPIKey      string
	POAPAPIKey         string
	SendGridAPIKey     string
	MailFrom           string

	UserAgent string
	// RequestsPerSecond limits each service independently. Zero disables
	// limiting.
	RequestsPerSecond float64
}

// Set bundles one fetcher per evidence source.
type Set struct {
	DNS        DNS
	Gists      Gists
	Tweets     Tweets
	Reddit     Reddit
	SoundCloud SoundCloud
	NFT        NFT
	POAP       POAP
	Mailer     Mailer
}

// New creates the fetchers for e. Every fetcher gets its own channel so rate
// limits and credentials never leak between services.
func New(e Endpoints, client *http.Client) Set {
	channel := func(opts ...fhttp.Option) *fhttp.Channel {
		if client != nil {
			opts = append(opts, fhttp.WithClient(client))
		}
		if e.UserAgent != "" {
			opts = append(opts, fhttp.WithHeader("User-Agent", e.UserAgent))
		}
		if e.RequestsPerSecond > 0 {
			opts = append(opts, fhttp.WithLimiter(rate.NewLimiter(rate.Limit(e.RequestsPerSecond), 1)))
		}
		return fhttp.NewChannel(opts...)
	}
	bearer := func(token string) []fhttp.Option {
		if token == "" {
			return nil
		}
		return []fhttp.Option{fhttp.WithHeader("Authorization", "Bearer "+token)}
	}

	github := append(bearer(e.GitHubToken), fhttp.WithHeader("Accept", "application/vnd.github+json"))
	var poap []fhttp.Option
	if e.POAPAPIKey != "" {
		poap = append(poap, fhttp.WithHeader("X-API-Key", e.POAPAPIKey))
	}
	sendgrid := append(bearer(e.SendGridAPIKey), fhttp.WithSuccessStatusCode(http.StatusOK, http.StatusAccepted))

	return Set{
		DNS:        NewDoH(channel(fhttp.WithHeader("Accept", "application/dns-json")), e.DoH),
		Gists:      NewGitHub(channel(github...), e.GitHub),
		Tweets:     NewTwitter(channel(bearer(e.TwitterBearerToken)...), e.Twitter),
		Reddit:     NewReddit(channel(), e.Reddit),
		SoundCloud: NewSoundCloud(channel(), e.SoundCloud, e.SoundCloudClientID),
		NFT:        NewAlchemy(channel(), e.Alchemy, e.AlchemyAPIKey),
		POAP:       NewPOAP(channel(poap...), e.POAP),
		Mailer:     NewSendGrid(channel(sendgrid...), e.SendGrid, e.MailFrom),
	}
}
