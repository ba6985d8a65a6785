package notifications

import (
	"context"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type emailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// Notifier implements domain.NotificationService over an SMS and an email sender
type Notifier struct {
	sms   smsSender
	email emailSender
}

// NewNotifier combines the two channels
func NewNotifier(sms smsSender, email emailSender) domain.NotificationService {
	return &Notifier{sms: sms, email: email}
}

// SendSMS implements domain.NotificationService
func (n *Notifier) SendSMS(ctx context.Context, to, message string) error {
	return n.sms.SendSMS(ctx, to, message)
}

// SendEmail implements domain.NotificationService
func (n *Notifier) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	return n.email.SendEmail(ctx, to, subject, htmlBody)
}
