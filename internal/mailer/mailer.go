// Package mailer renders and dispatches transactional email. The provider
// behind it is chosen by configuration so tests and local development can
// run without Resend credentials.
package mailer

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

var (
	logger = log.With().Str("component", "mailer").Logger()
)

// Email is a fully rendered message ready for a provider.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Provider delivers a rendered email and returns the provider message id.
type Provider interface {
	Send(ctx context.Context, email *Email) (string, error)
}

type Config struct {
	// Provider selects the delivery backend: "resend" or "console".
	Provider     string `yaml:"provider"`
	ResendAPIKey string `yaml:"resend_api_key"`
	FromAddress  string `yaml:"from_address"`
	FromName     string `yaml:"from_name"`
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "console"
		logger.Warn().Msg("No mail provider configured, emails will be logged to console")
	}
	if c.FromAddress == "" {
		c.FromAddress = "noreply@localhost"
	}
	if c.FromName == "" {
		c.FromName = "Teamspace"
	}
}

type Service struct {
	provider Provider
	baseURL  string
	fromName string
}

func NewService(cfg *Config, baseURL string) *Service {
	cfg.applyDefaults()

	var provider Provider
	switch cfg.Provider {
	case "resend":
		provider = NewResendProvider(cfg.ResendAPIKey, cfg.FromName, cfg.FromAddress)
	default:
		provider = &ConsoleProvider{}
	}

	return &Service{
		provider: provider,
		baseURL:  baseURL,
		fromName: cfg.FromName,
	}
}

// SendInvitationEmail mails the acceptance link for a workspace invitation.
// The token is the single credential; it travels URL-encoded in one query
// parameter.
func (s *Service) SendInvitationEmail(ctx context.Context, email, companyName, inviterName, token string) (string, error) {
	acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", s.baseURL, url.QueryEscape(token))

	html := fmt.Sprintf(`<p>%s invited you to join the <b>%s</b> workspace on %s.</p>
<p><a href="%s">Accept invitation</a></p>
<p>Or copy this link: %s</p>
<p>This invitation expires; if the link stops working, ask for a new invite.</p>`,
		inviterName, companyName, s.fromName, acceptURL, acceptURL)

	text := fmt.Sprintf(`%s invited you to join the %s workspace on %s.

Accept the invitation:
%s

This invitation expires; if the link stops working, ask for a new invite.`,
		inviterName, companyName, s.fromName, acceptURL)

	return s.provider.Send(ctx, &Email{
		To:      email,
		Subject: fmt.Sprintf("You have been invited to %s", companyName),
		HTML:    html,
		Text:    text,
	})
}

// SendVerificationEmail mails the address-verification link issued at
// registration.
func (s *Service) SendVerificationEmail(ctx context.Context, email, token string) (string, error) {
	verifyURL := fmt.Sprintf("%s/auth/verify?token=%s", s.baseURL, url.QueryEscape(token))

	html := fmt.Sprintf(`<p>Welcome to %s!</p>
<p><a href="%s">Verify your email address</a></p>
<p>Or copy this link: %s</p>
<p>This link expires in 24 hours. If you didn't create an account, you can ignore this email.</p>`,
		s.fromName, verifyURL, verifyURL)

	text := fmt.Sprintf(`Welcome to %s!

Verify your email address:
%s

This link expires in 24 hours. If you didn't create an account, you can ignore this email.`,
		s.fromName, verifyURL)

	return s.provider.Send(ctx, &Email{
		To:      email,
		Subject: fmt.Sprintf("Verify your %s account", s.fromName),
		HTML:    html,
		Text:    text,
	})
}

// ResendProvider sends emails using the Resend API.
type ResendProvider struct {
	client *resend.Client
	from   string
}

func NewResendProvider(apiKey, fromName, fromAddress string) *ResendProvider {
	return &ResendProvider{
		client: resend.NewClient(apiKey),
		from:   fmt.Sprintf("%s <%s>", fromName, fromAddress),
	}
}

func (p *ResendProvider) Send(ctx context.Context, email *Email) (string, error) {
	params := &resend.SendEmailRequest{
		From:    p.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	sent, err := p.client.Emails.Send(params)
	if err != nil {
		return "", fmt.Errorf("sending email via Resend: %w", err)
	}

	logger.Info().Str("to", email.To).Str("subject", email.Subject).Msg("Email sent via Resend")
	return sent.Id, nil
}

// ConsoleProvider logs emails instead of sending them (for development).
type ConsoleProvider struct{}

func (p *ConsoleProvider) Send(ctx context.Context, email *Email) (string, error) {
	logger.Info().
		Str("to", email.To).
		Str("subject", email.Subject).
		Str("body", email.Text).
		Msg("Email (console provider)")
	return uuid.New().String(), nil
}
