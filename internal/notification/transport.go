package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, subject, body string, recipients []string) error
}

// SMTPConfig configures the SMTP transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type smtpTransport struct {
	cfg    SMTPConfig
	logger zerolog.Logger
}

// NewSMTPTransport creates a transport that dials the SMTP server per message.
func NewSMTPTransport(cfg SMTPConfig, logger zerolog.Logger) Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &smtpTransport{
		cfg:    cfg,
		logger: logger.With().Str("component", "smtp-transport").Logger(),
	}
}

func (t *smtpTransport) Send(ctx context.Context, subject, body string, recipients []string) error {
	msg := mail.NewMsg()
	if err := msg.From(t.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(t.cfg.Timeout),
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}

	client, err := mail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	t.logger.Debug().
		Str("subject", subject).
		Int("recipients", len(recipients)).
		Msg("mail sent")

	return nil
}

// logTransport writes messages to the log instead of sending them.
type logTransport struct {
	logger zerolog.Logger
}

// NewLogTransport creates a transport for environments without a mail server.
func NewLogTransport(logger zerolog.Logger) Transport {
	return &logTransport{
		logger: logger.With().Str("component", "log-transport").Logger(),
	}
}

func (t *logTransport) Send(ctx context.Context, subject, body string, recipients []string) error {
	t.logger.Info().
		Str("subject", subject).
		Str("recipients", strings.Join(recipients, ",")).
		Str("body", body).
		Msg("notification")
	return nil
}
