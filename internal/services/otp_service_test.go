package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/mocks"
)

type otpFixture struct {
	svc      *OTPServiceImpl
	notifier *mocks.MockNotificationService
	users    *mocks.MockUserRepository
	otps     *mocks.MockOTPRepository
	audit    *mocks.MockAuditLogger
}

// createOTPServiceForTest creates an OTPService with mock dependencies
func createOTPServiceForTest(t *testing.T, channel string) *otpFixture {
	t.Helper()

	f := &otpFixture{
		notifier: mocks.NewMockNotificationService(),
		users:    mocks.NewMockUserRepository(),
		otps:     mocks.NewMockOTPRepository(),
		audit:    mocks.NewMockAuditLogger(),
	}
	user := createValidUser(t)
	f.users.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
		if id != user.ID {
			return nil, domain.ErrUserNotFound
		}
		return user, nil
	}
	f.svc = NewOTPService(f.notifier, f.users, f.otps, f.audit, OTPConfig{
		Length:  6,
		TTL:     15 * time.Minute,
		Channel: channel,
	}).WithClock(fixedClock(testNow))
	return f
}

func TestOTPServiceImpl_SendEmail(t *testing.T) {
	f := createOTPServiceForTest(t, ChannelEmail)

	otp, err := f.svc.Send(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(otp.Code) != 6 {
		t.Errorf("expected 6 digit code, got %q", otp.Code)
	}
	for _, r := range otp.Code {
		if r < '0' || r > '9' {
			t.Fatalf("expected digits only, got %q", otp.Code)
		}
	}
	if !otp.ExpiredAt.Equal(testNow.Add(15 * time.Minute)) {
		t.Errorf("expected expiry in 15m, got %v", otp.ExpiredAt)
	}

	mail, ok := f.notifier.LastEmail()
	if !ok {
		t.Fatal("expected an email to be sent")
	}
	if mail.To != "jane@example.com" {
		t.Errorf("expected mail to account address, got %s", mail.To)
	}
	if !strings.Contains(mail.Body, otp.Code) {
		t.Error("expected email body to carry the code")
	}
	if len(f.notifier.SMS) != 0 {
		t.Error("expected no sms on the email channel")
	}

	stored, err := f.otps.FindByUserID(context.Background(), 1)
	if err != nil || stored.Code != otp.Code {
		t.Errorf("expected stored code %s, got %+v (%v)", otp.Code, stored, err)
	}
	if got := f.audit.Types(); len(got) != 1 || got[0] != domain.OTPSentEvent {
		t.Errorf("expected OTP_SENT audit, got %v", got)
	}
}

func TestOTPServiceImpl_SendOverrideEmail(t *testing.T) {
	f := createOTPServiceForTest(t, ChannelEmail)
	override := "other@example.com"

	if _, err := f.svc.Send(context.Background(), 1, &override); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	mail, _ := f.notifier.LastEmail()
	if mail.To != override {
		t.Errorf("expected override recipient, got %s", mail.To)
	}
}

func TestOTPServiceImpl_SendSMS(t *testing.T) {
	f := createOTPServiceForTest(t, ChannelSMS)

	otp, err := f.svc.Send(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(f.notifier.SMS) != 1 {
		t.Fatalf("expected one sms, got %d", len(f.notifier.SMS))
	}
	if sms := f.notifier.SMS[0]; sms.To != "081234567890" || !strings.Contains(sms.Body, otp.Code) {
		t.Errorf("unexpected sms %+v", sms)
	}
}

func TestOTPServiceImpl_SendReplacesCode(t *testing.T) {
	f := createOTPServiceForTest(t, ChannelEmail)
	ctx := context.Background()

	first, err := f.svc.Send(ctx, 1, nil)
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	second, err := f.svc.Send(ctx, 1, nil)
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the code row to be reused, got ids %d and %d", first.ID, second.ID)
	}

	stored, _ := f.otps.FindByUserID(ctx, 1)
	if stored.Code != second.Code {
		t.Errorf("expected latest code to be stored")
	}
}

func TestOTPServiceImpl_SendFailures(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		f := createOTPServiceForTest(t, ChannelEmail)

		_, err := f.svc.Send(context.Background(), 42, nil)
		wantClientError(t, err, 401, domain.OriginHeaders, "headers.authorization.payload.sub", "Not valid")
	})

	t.Run("delivery failure keeps previous code", func(t *testing.T) {
		f := createOTPServiceForTest(t, ChannelEmail)
		ctx := context.Background()

		prev, err := f.svc.Send(ctx, 1, nil)
		if err != nil {
			t.Fatalf("seed send: %v", err)
		}
		f.notifier.SendEmailFunc = func(ctx context.Context, to, subject, body string) error {
			return errors.New("smtp: 421 service not available")
		}

		_, err = f.svc.Send(ctx, 1, nil)
		wantServerError(t, err)

		stored, _ := f.otps.FindByUserID(ctx, 1)
		if stored.Code != prev.Code {
			t.Error("expected failed delivery to leave the stored code untouched")
		}
		types := f.audit.Types()
		if types[len(types)-1] != domain.OTPDeliveryFailEvent {
			t.Errorf("expected OTP_DELIVERY_FAILED audit, got %v", types)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		f := createOTPServiceForTest(t, ChannelEmail)
		f.otps.UpsertFunc = func(ctx context.Context, userID uint, code string, exp time.Time) (*domain.OTP, error) {
			return nil, errors.New("disk full")
		}

		_, err := f.svc.Send(context.Background(), 1, nil)
		wantServerError(t, err)
	})
}

func TestOTPServiceImpl_Verify(t *testing.T) {
	tests := []struct {
		name      string
		stored    *domain.OTP
		code      string
		status    int
		msg       string
		sentinel  error
		wantKept  bool
		wantValid bool
	}{
		{
			name:      "valid code",
			stored:    &domain.OTP{Code: "482913", ExpiredAt: testNow.Add(time.Minute)},
			code:      "482913",
			wantValid: true,
		},
		{
			name:     "no code issued",
			code:     "482913",
			status:   400,
			msg:      "Not valid",
			sentinel: domain.ErrOTPNotFound,
		},
		{
			name:     "wrong code",
			stored:   &domain.OTP{Code: "482913", ExpiredAt: testNow.Add(time.Minute)},
			code:     "000000",
			status:   401,
			msg:      "Not valid",
			sentinel: domain.ErrOTPInvalid,
			wantKept: true,
		},
		{
			name:     "expired code is kept",
			stored:   &domain.OTP{Code: "482913", ExpiredAt: testNow.Add(-time.Second)},
			code:     "482913",
			status:   401,
			msg:      "Expired",
			sentinel: domain.ErrOTPExpired,
			wantKept: true,
		},
		{
			name:     "wrong code reported before expiry",
			stored:   &domain.OTP{Code: "482913", ExpiredAt: testNow.Add(-time.Hour)},
			code:     "111111",
			status:   401,
			msg:      "Not valid",
			sentinel: domain.ErrOTPInvalid,
			wantKept: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createOTPServiceForTest(t, ChannelEmail)
			ctx := context.Background()
			if tt.stored != nil {
				if _, err := f.otps.Upsert(ctx, 1, tt.stored.Code, tt.stored.ExpiredAt); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}

			_, err := f.svc.Verify(ctx, 1, tt.code)

			_, findErr := f.otps.FindByUserID(ctx, 1)
			if tt.wantValid {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if !errors.Is(findErr, domain.ErrOTPNotFound) {
					t.Error("expected a verified code to be consumed")
				}
				return
			}

			wantClientError(t, err, tt.status, domain.OriginBody, "body.otp", tt.msg)
			wantSentinel(t, err, tt.sentinel)
			if tt.wantKept && findErr != nil {
				t.Error("expected the stored code to survive a failed verify")
			}
		})
	}
}

func TestOTPServiceImpl_VerifyOnce(t *testing.T) {
	f := createOTPServiceForTest(t, ChannelEmail)
	ctx := context.Background()

	otp, err := f.svc.Send(ctx, 1, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.svc.Verify(ctx, 1, otp.Code); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	_, err = f.svc.Verify(ctx, 1, otp.Code)
	wantClientError(t, err, 400, domain.OriginBody, "body.otp", "Not valid")
}

func TestOTPServiceImpl_VerifyLosesDeleteRace(t *testing.T) {
	f := createOTPServiceForTest(t, ChannelEmail)
	ctx := context.Background()

	otp, err := f.svc.Send(ctx, 1, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	var deleted struct {
		id   uint
		code string
	}
	// Another verify consumed the row between the read and the delete.
	f.otps.DeleteFunc = func(ctx context.Context, id uint, code string) error {
		deleted.id, deleted.code = id, code
		return domain.ErrOTPNotFound
	}

	_, err = f.svc.Verify(ctx, 1, otp.Code)

	wantClientError(t, err, 400, domain.OriginBody, "body.otp", "Not valid")
	wantSentinel(t, err, domain.ErrOTPNotFound)
	if deleted.id != otp.ID || deleted.code != otp.Code {
		t.Errorf("expected delete of %d/%s, got %d/%s", otp.ID, otp.Code, deleted.id, deleted.code)
	}
}

func TestOTPServiceImpl_GenerateSecureCode(t *testing.T) {
	f := createOTPServiceForTest(t, ChannelEmail)
	f.svc.config.Length = 8

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := f.svc.generateSecureCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("expected 8 digits, got %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("expected mostly distinct codes, got %d unique of 50", len(seen))
	}
}
