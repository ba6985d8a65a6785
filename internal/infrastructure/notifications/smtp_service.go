package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the outgoing mail server settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPServiceImpl sends HTML email through an SMTP relay
type SMTPServiceImpl struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPService creates an email sender. With no host the message is
// logged instead of sent.
func NewSMTPService(cfg SMTPConfig, logger *slog.Logger) *SMTPServiceImpl {
	return &SMTPServiceImpl{cfg: cfg, logger: logger.With("component", "smtp")}
}

// SendEmail delivers an HTML message
func (s *SMTPServiceImpl) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if s.cfg.Host == "" {
		s.logger.InfoContext(ctx, "mock email", "to", to, "subject", subject, "body", htmlBody)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
