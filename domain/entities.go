package domain

import "time"

// Session type names. Rows with these names are seeded at deploy time.
const (
	SessionTypeOTPPending = "OTP_PENDING"
	SessionTypeUserAuth   = "USER_AUTH"
)

// User represents a registered account
type User struct {
	ID           uint
	Name         string
	Email        string
	PasswordHash string
	DateOfBirth  time.Time
	PhoneNumber  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionType is a reference row naming a session stage
type SessionType struct {
	ID   uint
	Name string
}

// Session is the single per-user record gating which token stage is live
type Session struct {
	ID            uint
	UserID        uint
	SessionTypeID uint
	ExpiredAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiredAt.Before(now)
}

// OTP is the single active one-time code of a user
type OTP struct {
	ID        uint
	Code      string
	ExpiredAt time.Time
	UserID    uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the code is past its expiry at now.
func (o *OTP) Expired(now time.Time) bool {
	return o.ExpiredAt.Before(now)
}

// SfiaCategory is a reference row naming a SFIA skill category
type SfiaCategory struct {
	ID   uint
	Name string
}

// RegisterInput carries a validated registration request
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth time.Time
	PhoneNumber string
	Role        string
	SfiaScores  map[string]int
	Position    *string
	Company     *string
}

// UpdateUserInput carries a validated profile update. Nil candidate or
// recruiter fields keep the stored value.
type UpdateUserInput struct {
	Name        string
	DateOfBirth time.Time
	PhoneNumber string
	Portfolio   *string
	AboutMe     *string
	Domicile    *string
	Position    *string
	Company     *string
}

// CandidatePatch lists the candidate columns to overwrite; nil keeps.
type CandidatePatch struct {
	Portfolio *string
	AboutMe   *string
	Domicile  *string
}

// TokenResult is returned to the client after a successful auth stage
type TokenResult struct {
	Token     string
	SessionID uint
	UserID    uint
}
