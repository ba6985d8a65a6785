package repositories

import "time"

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:255;not null"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `gorm:"column:password;not null"`
	DateOfBirth  time.Time `gorm:"not null"`
	PhoneNumber  string    `gorm:"size:32;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (DBUser) TableName() string { return "users" }

type DBRole struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:64;not null"`
}

func (DBRole) TableName() string { return "roles" }

type DBUserRole struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"uniqueIndex;not null"`
	RoleID uint `gorm:"index;not null"`
}

func (DBUserRole) TableName() string { return "user_roles" }

type DBCandidate struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"uniqueIndex;not null"`
	Portfolio *string `gorm:"column:portofolio"`
	AboutMe   *string
	Domicile  *string
}

func (DBCandidate) TableName() string { return "candidates" }

type DBPosition struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null"`
}

func (DBPosition) TableName() string { return "positions" }

type DBCompany struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null"`
}

func (DBCompany) TableName() string { return "companies" }

type DBRecruiter struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"uniqueIndex;not null"`
	PositionID uint `gorm:"index;not null"`
	CompanyID  uint `gorm:"index;not null"`
}

func (DBRecruiter) TableName() string { return "recruiters" }

type DBSfiaCategory struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:16;not null"`
}

func (DBSfiaCategory) TableName() string { return "sfia_categories" }

type DBUserSfiaScore struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"uniqueIndex:idx_user_sfia;not null"`
	SfiaCategoryID uint `gorm:"uniqueIndex:idx_user_sfia;not null"`
	Score          int  `gorm:"not null"`
}

func (DBUserSfiaScore) TableName() string { return "user_sfia_scores" }

type DBSessionType struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:32;not null"`
}

func (DBSessionType) TableName() string { return "session_types" }

// DBSession holds at most one row per user.
type DBSession struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"uniqueIndex;not null"`
	SessionTypeID uint      `gorm:"index;not null"`
	ExpiredAt     time.Time `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (DBSession) TableName() string { return "sessions" }

// DBOTP holds at most one row per user.
type DBOTP struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"column:otp;size:16;not null"`
	ExpiredAt time.Time `gorm:"not null"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DBOTP) TableName() string { return "otps" }

// Models lists every table for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&DBUser{}, &DBRole{}, &DBUserRole{},
		&DBCandidate{}, &DBPosition{}, &DBCompany{}, &DBRecruiter{},
		&DBSfiaCategory{}, &DBUserSfiaScore{},
		&DBSessionType{}, &DBSession{}, &DBOTP{},
	}
}
