// Package mail sends account emails.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gomail "github.com/wneessen/go-mail"

	"twii/internal/config"
)

const (
	verificationSubject = "Confirm your email - Twii"
	sendTimeout         = 10 * time.Second
)

// Mailer delivers the verification email that carries the token link.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
}

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1f2937;">
    <h2>Welcome to Twii, {{.Name}}!</h2>
    <p>Confirm your email address to finish setting up your account.</p>
    <p><a href="{{.Link}}" style="background:#1d9bf0;color:#fff;padding:10px 18px;border-radius:20px;text-decoration:none;">Verify email</a></p>
    <p>Or open this link: <br><a href="{{.Link}}">{{.Link}}</a></p>
    <p style="color:#6b7280;font-size:12px;">The link expires in 24 hours. If you did not create an account you can ignore this message.</p>
  </body>
</html>`))

// VerificationLink builds the frontend URL that embeds the token.
func VerificationLink(frontendURL, token string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", frontendURL, url.QueryEscape(token))
}

func renderVerification(name, link string) (string, error) {
	var buf bytes.Buffer
	if err := verificationTemplate.Execute(&buf, struct{ Name, Link string }{name, link}); err != nil {
		return "", fmt.Errorf("render verification email: %w", err)
	}
	return buf.String(), nil
}

// sender abstracts the SMTP client so the message assembly can be tested.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPMailer sends HTML mail through an SMTP relay.
type SMTPMailer struct {
	client      sender
	from        string
	fromName    string
	frontendURL string
	logger      zerolog.Logger
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithTimeout(sendTimeout),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUser),
			gomail.WithPassword(cfg.SMTPPass),
		)
	}
	if cfg.SMTPSecure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return newSMTPMailer(client, cfg), nil
}

func newSMTPMailer(client sender, cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		client:      client,
		from:        cfg.SMTPUser,
		fromName:    cfg.MailFromName,
		frontendURL: cfg.FrontendURL,
		logger:      log.With().Str("component", "mail").Logger(),
	}
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	msg, err := m.buildVerification(to, name, token)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error().Err(err).Str("to", to).Msg("failed to send verification email")
		return fmt.Errorf("send verification email: %w", err)
	}

	m.logger.Info().Str("to", to).Msg("verification email sent")
	return nil
}

func (m *SMTPMailer) buildVerification(to, name, token string) (*gomail.Msg, error) {
	body, err := renderVerification(name, VerificationLink(m.frontendURL, token))
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(verificationSubject)
	msg.SetBodyString(gomail.TypeTextHTML, body)
	return msg, nil
}

// LogMailer writes the verification link to the log instead of sending it.
// Used when no SMTP host is configured.
type LogMailer struct {
	frontendURL string
	logger      zerolog.Logger
}

func NewLogMailer(frontendURL string) *LogMailer {
	return &LogMailer{
		frontendURL: frontendURL,
		logger:      log.With().Str("component", "mail").Logger(),
	}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	m.logger.Warn().
		Str("to", to).
		Str("link", VerificationLink(m.frontendURL, token)).
		Msg("SMTP not configured, verification email not sent")
	return nil
}

// New picks the SMTP mailer when a host is configured and the log mailer otherwise.
func New(cfg *config.Config) (Mailer, error) {
	if cfg.SMTPHost == "" {
		return NewLogMailer(cfg.FrontendURL), nil
	}
	return NewSMTPMailer(cfg)
}
