package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioServiceImpl sends SMS through Twilio
type TwilioServiceImpl struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *slog.Logger
}

// NewTwilioService creates a new Twilio SMS sender. With no fromNumber the
// message is logged instead of sent.
func NewTwilioService(accountSID, authToken, fromNumber string, logger *slog.Logger) *TwilioServiceImpl {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		client:     client,
		fromNumber: fromNumber,
		logger:     logger.With("component", "twilio"),
	}
}

// SendSMS delivers message to the given phone number
func (t *TwilioServiceImpl) SendSMS(ctx context.Context, to, message string) error {
	// If credentials are not configured, log instead of sending
	if t.fromNumber == "" {
		t.logger.InfoContext(ctx, "mock sms", "to", to, "message", message)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	// The Twilio client takes no context; bound the wait instead.
	done := make(chan error, 1)
	go func() {
		_, err := t.client.Api.CreateMessage(params)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send SMS: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send SMS: %w", ctx.Err())
	}
}
