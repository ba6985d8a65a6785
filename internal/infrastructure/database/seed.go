package database

import (
	"context"
	"fmt"

	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/repositories"
	"gorm.io/gorm"
)

// SfiaCategories are the skill categories a candidate can be scored on.
var SfiaCategories = []string{
	"AIFL", "DTAN", "CLCO", "SCTY", "PRMG",
	"ADAP", "COMS", "TEAM", "WEBD", "MOBD",
}

// Seed inserts the reference rows. It is safe to run on every start.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range []string{domain.SessionTypeOTPPending, domain.SessionTypeUserAuth} {
			if err := tx.Where(repositories.DBSessionType{Name: name}).FirstOrCreate(&repositories.DBSessionType{}).Error; err != nil {
				return fmt.Errorf("seed session type %s: %w", name, err)
			}
		}
		for _, kind := range []domain.RoleKind{domain.RoleCandidate, domain.RoleRecruiter} {
			if err := tx.Where(repositories.DBRole{Name: string(kind)}).FirstOrCreate(&repositories.DBRole{}).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", kind, err)
			}
		}
		for _, name := range SfiaCategories {
			if err := tx.Where(repositories.DBSfiaCategory{Name: name}).FirstOrCreate(&repositories.DBSfiaCategory{}).Error; err != nil {
				return fmt.Errorf("seed sfia category %s: %w", name, err)
			}
		}
		return nil
	})
}
