package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// MockSessionService implements domain.SessionService interface for testing
type MockSessionService struct {
	CreateFunc func(ctx context.Context, userID uint, typeName string, ttl time.Duration) (*domain.Session, error)
	CheckFunc  func(ctx context.Context, sessionID uint, allowed []string) (*domain.Session, error)
}

// NewMockSessionService creates a new MockSessionService with default behaviors
func NewMockSessionService() *MockSessionService {
	return &MockSessionService{}
}

// Create opens or replaces the user's session
func (m *MockSessionService) Create(ctx context.Context, userID uint, typeName string, ttl time.Duration) (*domain.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, typeName, ttl)
	}
	// Default behavior: session id mirrors the user id
	return &domain.Session{ID: userID, UserID: userID, ExpiredAt: time.Now().Add(ttl)}, nil
}

// Check validates a session against the allowed types
func (m *MockSessionService) Check(ctx context.Context, sessionID uint, allowed []string) (*domain.Session, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, sessionID, allowed)
	}
	return &domain.Session{ID: sessionID, UserID: sessionID, ExpiredAt: time.Now().Add(time.Hour)}, nil
}

var _ domain.SessionService = (*MockSessionService)(nil)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	SendFunc   func(ctx context.Context, userID uint, overrideEmail *string) (*domain.OTP, error)
	VerifyFunc func(ctx context.Context, userID uint, code string) (*domain.OTP, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Send issues a code to the user
func (m *MockOTPService) Send(ctx context.Context, userID uint, overrideEmail *string) (*domain.OTP, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, userID, overrideEmail)
	}
	return &domain.OTP{ID: 1, UserID: userID, Code: "123456", ExpiredAt: time.Now().Add(15 * time.Minute)}, nil
}

// Verify checks the submitted code
func (m *MockOTPService) Verify(ctx context.Context, userID uint, code string) (*domain.OTP, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, userID, code)
	}
	// Default behavior: only 123456 is valid
	if code != "123456" {
		return nil, domain.NewClientError(http.StatusUnauthorized, domain.OriginBody,
			domain.FieldErrors{}.With("body.otp", "Not valid"), domain.ErrOTPInvalid)
	}
	return &domain.OTP{ID: 1, UserID: userID, Code: code}, nil
}

var _ domain.OTPService = (*MockOTPService)(nil)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	RegisterFunc  func(ctx context.Context, in domain.RegisterInput) (*domain.TokenResult, error)
	LoginFunc     func(ctx context.Context, email, password string) (*domain.TokenResult, error)
	SendOTPFunc   func(ctx context.Context, userID uint, overrideEmail *string) error
	VerifyOTPFunc func(ctx context.Context, claims *domain.AccessClaims, code string) (*domain.TokenResult, error)
	ProfileFunc   func(ctx context.Context, userID uint) (*domain.UserProfile, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, in domain.RegisterInput) (*domain.TokenResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return &domain.TokenResult{Token: "otp_token_user_1", SessionID: 1, UserID: 1}, nil
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.TokenResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return &domain.TokenResult{Token: "otp_token_user_1", SessionID: 1, UserID: 1}, nil
}

func (m *MockAuthService) SendOTP(ctx context.Context, userID uint, overrideEmail *string) error {
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, userID, overrideEmail)
	}
	return nil
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, claims *domain.AccessClaims, code string) (*domain.TokenResult, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, claims, code)
	}
	return &domain.TokenResult{Token: "auth_token_user_1", SessionID: 1, UserID: 1}, nil
}

func (m *MockAuthService) Profile(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

var _ domain.AuthService = (*MockAuthService)(nil)

// MockUserService implements domain.UserService interface for testing
type MockUserService struct {
	UpdateFunc           func(ctx context.Context, userID uint, in domain.UpdateUserInput) (*domain.UserProfile, error)
	UpdatePasswordFunc   func(ctx context.Context, userID uint, oldPassword, newPassword string) (*domain.UserProfile, error)
	UpdateEmailFunc      func(ctx context.Context, userID uint, newEmail string) (*domain.UserProfile, error)
	UpdateSfiaScoresFunc func(ctx context.Context, userID uint, scores map[string]int) (map[string]int, error)
}

// NewMockUserService creates a new MockUserService with default behaviors
func NewMockUserService() *MockUserService {
	return &MockUserService{}
}

func mockProfile(userID uint) *domain.UserProfile {
	return &domain.UserProfile{
		User: domain.User{ID: userID, Name: "Jane Doe", Email: "jane@example.com"},
		Role: domain.NewCandidateRole(domain.CandidateProfile{}),
	}
}

func (m *MockUserService) Update(ctx context.Context, userID uint, in domain.UpdateUserInput) (*domain.UserProfile, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, in)
	}
	p := mockProfile(userID)
	p.User.Name = in.Name
	return p, nil
}

func (m *MockUserService) UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) (*domain.UserProfile, error) {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, oldPassword, newPassword)
	}
	return mockProfile(userID), nil
}

func (m *MockUserService) UpdateEmail(ctx context.Context, userID uint, newEmail string) (*domain.UserProfile, error) {
	if m.UpdateEmailFunc != nil {
		return m.UpdateEmailFunc(ctx, userID, newEmail)
	}
	p := mockProfile(userID)
	p.User.Email = newEmail
	return p, nil
}

func (m *MockUserService) UpdateSfiaScores(ctx context.Context, userID uint, scores map[string]int) (map[string]int, error) {
	if m.UpdateSfiaScoresFunc != nil {
		return m.UpdateSfiaScoresFunc(ctx, userID, scores)
	}
	return scores, nil
}

var _ domain.UserService = (*MockUserService)(nil)

// MockPasswordService implements domain.PasswordService interface for testing
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool
}

// NewMockPasswordService creates a new MockPasswordService with default behaviors
func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

// Hash hashes a password
func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	// Default behavior: return a predictable hash
	return "hashed_" + password, nil
}

// Verify verifies a password against its hash
func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	return hashedPassword == "hashed_"+password
}

var _ domain.PasswordService = (*MockPasswordService)(nil)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	IssueFunc            func(ctx context.Context, header domain.TokenHeader, payload domain.TokenPayload) (string, error)
	IssueAccessTokenFunc func(ctx context.Context, userID uint, id domain.TokenID, expiredAt time.Time) (string, error)
	VerifyFunc           func(ctx context.Context, raw string) (*domain.AccessClaims, error)
	JWKSFunc             func(ctx context.Context) (json.RawMessage, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) Issue(ctx context.Context, header domain.TokenHeader, payload domain.TokenPayload) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, header, payload)
	}
	return fmt.Sprintf("token_%s_%s", payload.Sub, payload.Jti), nil
}

// IssueAccessToken returns a token encoding the user and jti
func (m *MockTokenService) IssueAccessToken(ctx context.Context, userID uint, id domain.TokenID, expiredAt time.Time) (string, error) {
	if m.IssueAccessTokenFunc != nil {
		return m.IssueAccessTokenFunc(ctx, userID, id, expiredAt)
	}
	return fmt.Sprintf("token_%d_%s", userID, id), nil
}

// Verify parses tokens produced by IssueAccessToken
func (m *MockTokenService) Verify(ctx context.Context, raw string) (*domain.AccessClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, raw)
	}
	var userID uint
	var jti string
	if _, err := fmt.Sscanf(raw, "token_%d_%s", &userID, &jti); err != nil {
		return nil, domain.Unauthorized("headers.authorization", "Not valid", domain.ErrTokenInvalid)
	}
	return &domain.AccessClaims{
		Header:  domain.TokenHeader{Alg: "ES256", Typ: "JWT", Kid: "mock"},
		Payload: domain.TokenPayload{Sub: fmt.Sprint(userID), Jti: jti},
	}, nil
}

func (m *MockTokenService) JWKS(ctx context.Context) (json.RawMessage, error) {
	if m.JWKSFunc != nil {
		return m.JWKSFunc(ctx)
	}
	return json.RawMessage(`{"keys":[]}`), nil
}

var _ domain.TokenService = (*MockTokenService)(nil)

// MockNotificationService implements domain.NotificationService interface for testing.
// Delivered messages are recorded when no override is set.
type MockNotificationService struct {
	SendSMSFunc   func(ctx context.Context, to, message string) error
	SendEmailFunc func(ctx context.Context, to, subject, htmlBody string) error

	mu     sync.Mutex
	Emails []SentMessage
	SMS    []SentMessage
}

// SentMessage is one recorded delivery
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendSMS sends an SMS message
func (m *MockNotificationService) SendSMS(ctx context.Context, to, message string) error {
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(ctx, to, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SMS = append(m.SMS, SentMessage{To: to, Body: message})
	return nil
}

// SendEmail sends an email message
func (m *MockNotificationService) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, to, subject, htmlBody)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emails = append(m.Emails, SentMessage{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// LastEmail returns the most recent recorded email
func (m *MockNotificationService) LastEmail() (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Emails) == 0 {
		return SentMessage{}, false
	}
	return m.Emails[len(m.Emails)-1], true
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
