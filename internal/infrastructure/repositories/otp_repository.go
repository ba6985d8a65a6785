package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OTPRepositoryImpl implements domain.OTPRepository using GORM
type OTPRepositoryImpl struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *gorm.DB) domain.OTPRepository {
	return &OTPRepositoryImpl{db: db}
}

// Upsert implements domain.OTPRepository
func (r *OTPRepositoryImpl) Upsert(ctx context.Context, userID uint, code string, expiredAt time.Time) (*domain.OTP, error) {
	var row DBOTP
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		in := DBOTP{Code: code, ExpiredAt: expiredAt, UserID: userID, CreatedAt: now, UpdatedAt: now}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"otp", "expired_at", "updated_at"}),
		}).Create(&in).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).First(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return otpToDomain(&row), nil
}

// FindByUserID implements domain.OTPRepository
func (r *OTPRepositoryImpl) FindByUserID(ctx context.Context, userID uint) (*domain.OTP, error) {
	var row DBOTP
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, err
	}
	return otpToDomain(&row), nil
}

// Delete implements domain.OTPRepository. The row is only removed while it
// still holds code, so a resend racing the verify keeps the newer code.
func (r *OTPRepositoryImpl) Delete(ctx context.Context, id uint, code string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND otp = ?", id, code).Delete(&DBOTP{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOTPNotFound
	}
	return nil
}

func otpToDomain(row *DBOTP) *domain.OTP {
	return &domain.OTP{
		ID:        row.ID,
		Code:      row.Code,
		ExpiredAt: row.ExpiredAt,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
