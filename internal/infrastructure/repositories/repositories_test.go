package repositories

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// Each new connection would open a separate in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	for _, name := range []string{"OTP_PENDING", "USER_AUTH"} {
		db.Create(&DBSessionType{Name: name})
	}
	for _, name := range []string{"Candidate", "Recruiter"} {
		db.Create(&DBRole{Name: name})
	}
	for _, name := range []string{"AIFL", "DTAN", "WEBD"} {
		db.Create(&DBSfiaCategory{Name: name})
	}

	return db
}
