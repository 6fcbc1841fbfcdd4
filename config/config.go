// Package config loads witness and fetch settings from an optional file and
// REBASE_ prefixed environment variables.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/spruceid/rebase-sub001/fetch"
	fhttp "github.com/spruceid/rebase-sub001/fetch/http"
	"github.com/spruceid/rebase-sub001/resolver"
	"github.com/spruceid/rebase-sub001/witness"
	"golang.org/x/time/rate"
)

const EnvPrefix = "REBASE"

type Config struct {
	Witness   WitnessConfig   `mapstructure:"witness"`
	Endpoints EndpointsConfig `mapstructure:"endpoints"`
	Keys      KeysConfig      `mapstructure:"keys"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
}

type WitnessConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxStatementAge time.Duration `mapstructure:"max_statement_age"`
	ClockSkew       time.Duration `mapstructure:"clock_skew"`
	ChallengeTTL    time.Duration `mapstructure:"challenge_ttl"`
	ChallengeSecret string        `mapstructure:"challenge_secret"`
	DNSPrefix       string        `mapstructure:"dns_prefix"`
}

type EndpointsConfig struct {
	DoH        string `mapstructure:"doh"`
	GitHub     string `mapstructure:"github"`
	Twitter    string `mapstructure:"twitter"`
	Reddit     string `mapstructure:"reddit"`
	SoundCloud string `mapstructure:"soundcloud"`
	Alchemy    string `mapstructure:"alchemy"`
	POAP       string `mapstructure:"poap"`
	SendGrid   string `mapstructure:"sendgrid"`
}

// KeysConfig holds API credentials. They are only ever read from the
// environment or a file, never defaulted.
type KeysConfig struct {
	GitHubToken        string `mapstructure:"github_token"`
	TwitterBearerToken string `mapstructure:"twitter_bearer_token"`
	SoundCloudClientID string `mapstructure:"soundcloud_client_id"`
	AlchemyAPIKey      string `mapstructure:"alchemy_api_key"`
	POAPAPIKey         string `mapstructure:"poap_api_key"`
	SendGridAPIKey     string `mapstructure:"sendgrid_api_key"`
	MailFrom           string `mapstructure:"mail_from"`
}

type HTTPConfig struct {
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	ClientTimeout     time.Duration `mapstructure:"client_timeout"`
}

type ResolverConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

// SetDefaults configures default values for all options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("witness.timeout", witness.DefaultTimeout)
	v.SetDefault("witness.max_statement_age", witness.DefaultMaxStatementAge)
	v.SetDefault("witness.clock_skew", witness.DefaultClockSkew)
	v.SetDefault("witness.challenge_ttl", witness.DefaultChallengeTTL)
	v.SetDefault("witness.challenge_secret", "")
	v.SetDefault("witness.dns_prefix", witness.DefaultDNSPrefix)

	v.SetDefault("endpoints.doh", fetch.DefaultDoHEndpoint)
	v.SetDefault("endpoints.github", fetch.DefaultGitHubEndpoint)
	v.SetDefault("endpoints.twitter", fetch.DefaultTwitterEndpoint)
	v.SetDefault("endpoints.reddit", fetch.DefaultRedditEndpoint)
	v.SetDefault("endpoints.soundcloud", fetch.DefaultSoundCloudEndpoint)
	v.SetDefault("endpoints.alchemy", fetch.DefaultAlchemyEndpoint)
	v.SetDefault("endpoints.poap", fetch.DefaultPOAPEndpoint)
	v.SetDefault("endpoints.sendgrid", fetch.DefaultSendGridEndpoint)

	// registered so AutomaticEnv picks them up on Unmarshal
	for _, k := range []string{
		"keys.github_token",
		"keys.twitter_bearer_token",
		"keys.soundcloud_client_id",
		"keys.alchemy_api_key",
		"keys.poap_api_key",
		"keys.sendgrid_api_key",
		"keys.mail_from",
	} {
		v.SetDefault(k, "")
	}

	v.SetDefault("http.user_agent", "rebase-witness")
	v.SetDefault("http.requests_per_second", 0.0)
	v.SetDefault("http.client_timeout", 30*time.Second)

	v.SetDefault("resolver.cache_size", resolver.CacheSize)
}

// New returns a viper instance with defaults set and environment binding
// enabled. REBASE_WITNESS_TIMEOUT overrides witness.timeout.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads configuration from path, when not empty, on top of the
// defaults. Environment variables take precedence over the file. The file
// type is taken from its extension.
func Load(path string) (Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates configuration from v.
func LoadWithViper(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Witness.Timeout <= 0 {
		return fmt.Errorf("witness.timeout must be positive, got %s", c.Witness.Timeout)
	}
	if c.Witness.MaxStatementAge <= 0 {
		return fmt.Errorf("witness.max_statement_age must be positive, got %s", c.Witness.MaxStatementAge)
	}
	if c.Witness.ClockSkew < 0 {
		return fmt.Errorf("witness.clock_skew must not be negative, got %s", c.Witness.ClockSkew)
	}
	if c.Witness.ChallengeTTL <= 0 {
		return fmt.Errorf("witness.challenge_ttl must be positive, got %s", c.Witness.ChallengeTTL)
	}
	if s := c.Witness.ChallengeSecret; s != "" && len(s) < witness.MinChallengeSecret {
		return fmt.Errorf("witness.challenge_secret must be at least %d bytes", witness.MinChallengeSecret)
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must not be negative, got %v", c.HTTP.RequestsPerSecond)
	}
	return nil
}

// WitnessConfig builds the witness configuration. Logger and clock are left
// for the witness package to default.
func (c Config) WitnessConfig() witness.Config {
	wc := witness.Config{
		Timeout:         c.Witness.Timeout,
		MaxStatementAge: c.Witness.MaxStatementAge,
		ClockSkew:       c.Witness.ClockSkew,
		ChallengeTTL:    c.Witness.ChallengeTTL,
		DNSPrefix:       c.Witness.DNSPrefix,
	}
	if c.Witness.ChallengeSecret != "" {
		wc.ChallengeSecret = []byte(c.Witness.ChallengeSecret)
	}
	return wc
}

func (c Config) FetchEndpoints() fetch.Endpoints {
	return fetch.Endpoints{
		DoH:        c.Endpoints.DoH,
		GitHub:     c.Endpoints.GitHub,
		Twitter:    c.Endpoints.Twitter,
		Reddit:     c.Endpoints.Reddit,
		SoundCloud: c.Endpoints.SoundCloud,
		Alchemy:    c.Endpoints.Alchemy,
		POAP:       c.Endpoints.POAP,
		SendGrid:   c.Endpoints.SendGrid,

		GitHubToken:        c.Keys.GitHubToken,
		TwitterBearerToken: c.Keys.TwitterBearerToken,
		SoundCloudClientID: c.Keys.SoundCloudClientID,
		AlchemyAPIKey:      c.Keys.AlchemyAPIKey,
		POAPAPIKey:         c.Keys.POAPAPIKey,
		SendGridAPIKey:     c.Keys.SendGridAPIKey,
		MailFrom:           c.Keys.MailFrom,

		UserAgent:         c.HTTP.UserAgent,
		RequestsPerSecond: c.HTTP.RequestsPerSecond,
	}
}

func (c Config) Client() *http.Client {
	return &http.Client{Timeout: c.HTTP.ClientTimeout}
}

// NewResolver builds the default did:key and did:web resolver behind an LRU
// cache of the configured size.
func (c Config) NewResolver() (*resolver.Cache, error) {
	options := []fhttp.Option{
		fhttp.WithClient(c.Client()),
		fhttp.WithHeader("Accept", "application/did+json, application/json"),
		fhttp.WithHeader("User-Agent", c.HTTP.UserAgent),
	}
	if c.HTTP.RequestsPerSecond > 0 {
		options = append(options, fhttp.WithLimiter(rate.NewLimiter(rate.Limit(c.HTTP.RequestsPerSecond), 1)))
	}
	return resolver.NewCache(resolver.Default(resolver.WithChannel(fhttp.NewChannel(options...))), c.Resolver.CacheSize)
}

// NewVerifier wires the witness flows to live fetchers and the DID
// resolver.
func (c Config) NewVerifier() (*witness.Verifier, error) {
	r, err := c.NewResolver()
	if err != nil {
		return nil, fmt.Errorf("building resolver: %w", err)
	}
	wc := c.WitnessConfig()
	wc.Resolver = r
	return witness.NewVerifier(wc, fetch.New(c.FetchEndpoints(), c.Client()))
}
