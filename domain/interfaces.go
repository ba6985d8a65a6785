package domain

import (
	"context"
	"encoding/json"
	"time"
)

// RoleRecord is a role reference row
type RoleRecord struct {
	ID   uint
	Kind RoleKind
}

// UserRepository defines user data access operations
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	FindProfile(ctx context.Context, userID uint) (*UserProfile, error)
	// Transaction runs fn against a store bound to one database transaction.
	// fn returning an error rolls every write back.
	Transaction(ctx context.Context, fn func(store RegistrationStore) error) error
	// UpdateTransaction is Transaction for account updates.
	UpdateTransaction(ctx context.Context, fn func(store UserUpdateStore) error) error
}

// RegistrationStore is the set of writes a registration performs atomically
type RegistrationStore interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindRoleByName(ctx context.Context, name string) (*RoleRecord, error)
	CreateUser(ctx context.Context, user *User) error
	AssignRole(ctx context.Context, userID, roleID uint) error
	FindSfiaCategoryByName(ctx context.Context, name string) (*SfiaCategory, error)
	SaveSfiaScores(ctx context.Context, userID uint, scores map[uint]int) error
	CreateCandidate(ctx context.Context, userID uint) error
	FindOrCreatePosition(ctx context.Context, name string) (uint, error)
	FindOrCreateCompany(ctx context.Context, name string) (uint, error)
	CreateRecruiter(ctx context.Context, userID, positionID, companyID uint) error
}

// UserUpdateStore is the set of reads and writes an account update performs atomically
type UserUpdateStore interface {
	FindUserByID(ctx context.Context, id uint) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindRoleKind(ctx context.Context, userID uint) (RoleKind, error)
	UpdateUser(ctx context.Context, user *User) error
	UpdateCandidate(ctx context.Context, userID uint, patch CandidatePatch) error
	FindOrCreatePosition(ctx context.Context, name string) (uint, error)
	FindOrCreateCompany(ctx context.Context, name string) (uint, error)
	UpdateRecruiter(ctx context.Context, userID, positionID, companyID uint) error
	FindSfiaCategoryByName(ctx context.Context, name string) (*SfiaCategory, error)
	UpsertSfiaScores(ctx context.Context, userID uint, scores map[uint]int) error
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	// Upsert inserts the user's session or re-keys the existing row in place.
	Upsert(ctx context.Context, userID, sessionTypeID uint, expiredAt time.Time) (*Session, error)
	FindByID(ctx context.Context, id uint) (*Session, error)
}

// SessionTypeRepository reads the session type reference table
type SessionTypeRepository interface {
	FindByName(ctx context.Context, name string) (*SessionType, error)
	FindByID(ctx context.Context, id uint) (*SessionType, error)
}

// OTPRepository defines OTP data access operations
type OTPRepository interface {
	// Upsert inserts the user's code or overwrites the existing row.
	Upsert(ctx context.Context, userID uint, code string, expiredAt time.Time) (*OTP, error)
	FindByUserID(ctx context.Context, userID uint) (*OTP, error)
	// Delete removes the row only while it still holds code.
	Delete(ctx context.Context, id uint, code string) error
}

// SessionService owns the per-user session state machine
type SessionService interface {
	Create(ctx context.Context, userID uint, typeName string, ttl time.Duration) (*Session, error)
	Check(ctx context.Context, sessionID uint, allowed []string) (*Session, error)
}

// OTPService defines OTP operations
type OTPService interface {
	Send(ctx context.Context, userID uint, overrideEmail *string) (*OTP, error)
	Verify(ctx context.Context, userID uint, code string) (*OTP, error)
}

// AuthService composes credentials, OTP, sessions and tokens
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*TokenResult, error)
	Login(ctx context.Context, email, password string) (*TokenResult, error)
	SendOTP(ctx context.Context, userID uint, overrideEmail *string) error
	// VerifyOTP returns a nil result when the caller already holds an auth-stage token.
	VerifyOTP(ctx context.Context, claims *AccessClaims, code string) (*TokenResult, error)
	Profile(ctx context.Context, userID uint) (*UserProfile, error)
}

// UserService changes the signed-in user's own account
type UserService interface {
	Update(ctx context.Context, userID uint, in UpdateUserInput) (*UserProfile, error)
	UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) (*UserProfile, error)
	UpdateEmail(ctx context.Context, userID uint, newEmail string) (*UserProfile, error)
	// UpdateSfiaScores upserts the given categories and returns every stored score.
	UpdateSfiaScores(ctx context.Context, userID uint, scores map[string]int) (map[string]int, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService signs, verifies and publishes access tokens
type TokenService interface {
	Issue(ctx context.Context, header TokenHeader, payload TokenPayload) (string, error)
	IssueAccessToken(ctx context.Context, userID uint, id TokenID, expiredAt time.Time) (string, error)
	Verify(ctx context.Context, raw string) (*AccessClaims, error)
	JWKS(ctx context.Context) (json.RawMessage, error)
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(ctx context.Context, to, message string) error
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}

// RateLimiter counts requests per key in fixed windows
type RateLimiter interface {
	// Allow records one hit for key and reports whether it is within limit.
	// retryAfter is the time left in the current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}
