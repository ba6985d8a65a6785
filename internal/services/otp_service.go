package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/notifications"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type OTPConfig struct {
	Length          int
	TTL             time.Duration
	Channel         string
	DeliveryTimeout time.Duration
}

// OTPServiceImpl implements domain.OTPService with database persistence
type OTPServiceImpl struct {
	notificationSvc domain.NotificationService
	userRepo        domain.UserRepository
	otpRepo         domain.OTPRepository
	audit           domain.AuditLogger
	config          OTPConfig
	now             func() time.Time
}

// NewOTPService creates a new OTP service
func NewOTPService(notificationSvc domain.NotificationService, userRepo domain.UserRepository, otpRepo domain.OTPRepository, audit domain.AuditLogger, config OTPConfig) *OTPServiceImpl {
	if config.DeliveryTimeout <= 0 {
		config.DeliveryTimeout = 10 * time.Second
	}
	return &OTPServiceImpl{
		notificationSvc: notificationSvc,
		userRepo:        userRepo,
		otpRepo:         otpRepo,
		audit:           audit,
		config:          config,
		now:             time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *OTPServiceImpl) WithClock(now func() time.Time) *OTPServiceImpl {
	s.now = now
	return s
}

// Send implements domain.OTPService. The code is delivered before it is
// stored, so a failed delivery leaves any previous code in place.
func (s *OTPServiceImpl) Send(ctx context.Context, userID uint, overrideEmail *string) (*domain.OTP, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Unauthorized("headers.authorization.payload.sub", "Not valid", err)
		}
		return nil, domain.NewServerError("find user", err)
	}

	code, err := s.generateSecureCode()
	if err != nil {
		return nil, domain.NewServerError("generate otp", err)
	}
	expiredAt := s.now().Add(s.config.TTL)

	if err := s.deliver(ctx, user, code, overrideEmail); err != nil {
		logAudit(ctx, s.audit, domain.NewAuditEvent(domain.OTPDeliveryFailEvent, user.ID).
			WithMetadata("channel", s.config.Channel).WithError(err))
		return nil, domain.NewServerError("deliver otp", err)
	}

	otp, err := s.otpRepo.Upsert(ctx, user.ID, code, expiredAt)
	if err != nil {
		return nil, domain.NewServerError("store otp", err)
	}

	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.OTPSentEvent, user.ID).
		WithMetadata("channel", s.config.Channel))
	return otp, nil
}

func (s *OTPServiceImpl) deliver(ctx context.Context, user *domain.User, code string, overrideEmail *string) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.DeliveryTimeout)
	defer cancel()

	minutes := int(s.config.TTL.Minutes())

	if s.config.Channel == ChannelSMS {
		message := fmt.Sprintf("Your Eazy Career verification code is: %s. Valid for %d minutes.", code, minutes)
		return s.notificationSvc.SendSMS(ctx, user.PhoneNumber, message)
	}

	to := user.Email
	if overrideEmail != nil && *overrideEmail != "" {
		to = *overrideEmail
	}
	subject, body, err := notifications.OTPEmail(user.Name, code, fmt.Sprintf("%d minutes", minutes))
	if err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}
	return s.notificationSvc.SendEmail(ctx, to, subject, body)
}

// Verify implements domain.OTPService. A wrong code is rejected before an
// expired one, and an expired row is kept.
func (s *OTPServiceImpl) Verify(ctx context.Context, userID uint, code string) (*domain.OTP, error) {
	otp, err := s.otpRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrOTPNotFound) {
			return nil, s.verifyFailed(ctx, userID, otpNotFound())
		}
		return nil, domain.NewServerError("find otp", err)
	}

	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		return nil, s.verifyFailed(ctx, userID, domain.NewClientError(http.StatusUnauthorized, domain.OriginBody,
			domain.FieldErrors{}.With("body.otp", "Not valid"), domain.ErrOTPInvalid))
	}

	if otp.Expired(s.now()) {
		return nil, s.verifyFailed(ctx, userID, domain.NewClientError(http.StatusUnauthorized, domain.OriginBody,
			domain.FieldErrors{}.With("body.otp", "Expired"), domain.ErrOTPExpired))
	}

	if err := s.otpRepo.Delete(ctx, otp.ID, otp.Code); err != nil {
		if errors.Is(err, domain.ErrOTPNotFound) {
			return nil, s.verifyFailed(ctx, userID, otpNotFound())
		}
		return nil, domain.NewServerError("delete otp", err)
	}

	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.OTPVerifiedEvent, userID))
	return otp, nil
}

// otpNotFound is returned when no code is stored, including when another
// verify consumed it first.
func otpNotFound() *domain.ClientError {
	return domain.NewClientError(http.StatusBadRequest, domain.OriginBody,
		domain.FieldErrors{}.With("body.otp", "Not valid"), domain.ErrOTPNotFound)
}

func (s *OTPServiceImpl) verifyFailed(ctx context.Context, userID uint, err *domain.ClientError) error {
	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.OTPVerifyFailureEvent, userID).WithError(err.Err))
	return err
}

// generateSecureCode generates a cryptographically secure OTP code
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}

func logAudit(ctx context.Context, audit domain.AuditLogger, event *domain.AuditEvent) {
	if audit == nil {
		return
	}
	_ = audit.LogEvent(ctx, event)
}
