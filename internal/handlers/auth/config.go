package auth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type GoogleLogin struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

var (
	// tests use this to override to test server
	tokenExchangeEndpoint string
)

func (g *GoogleLogin) enabled() bool {
	return g.ClientID != ""
}

func (g *GoogleLogin) oauth2Config() *oauth2.Config {
	endpoints := google.Endpoint
	if tokenExchangeEndpoint != "" {
		endpoints.TokenURL = tokenExchangeEndpoint
	}

	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURI,
		Scopes:       []string{"profile", "email", "openid"},
		Endpoint:     endpoints,
	}
}

type Config struct {
	// SessionTTLHours is how long a login session lives.
	SessionTTLHours int `yaml:"session_ttl_hours"`

	Google GoogleLogin `yaml:"google"`
}

func (c *Config) applyDefaults() {
	if c.SessionTTLHours <= 0 {
		// 30 days.
		c.SessionTTLHours = 720
	}
}
