package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepositoryImpl implements domain.SessionRepository using GORM
type SessionRepositoryImpl struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) domain.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// Upsert implements domain.SessionRepository. The row id survives an update.
func (r *SessionRepositoryImpl) Upsert(ctx context.Context, userID, sessionTypeID uint, expiredAt time.Time) (*domain.Session, error) {
	var row DBSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		in := DBSession{
			UserID:        userID,
			SessionTypeID: sessionTypeID,
			ExpiredAt:     expiredAt,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"session_type_id", "expired_at", "updated_at"}),
		}).Create(&in).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).First(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return sessionToDomain(&row), nil
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Session, error) {
	var row DBSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return sessionToDomain(&row), nil
}

func sessionToDomain(row *DBSession) *domain.Session {
	return &domain.Session{
		ID:            row.ID,
		UserID:        row.UserID,
		SessionTypeID: row.SessionTypeID,
		ExpiredAt:     row.ExpiredAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// SessionTypeRepositoryImpl implements domain.SessionTypeRepository
type SessionTypeRepositoryImpl struct {
	db *gorm.DB
}

// NewSessionTypeRepository creates a session type repository
func NewSessionTypeRepository(db *gorm.DB) domain.SessionTypeRepository {
	return &SessionTypeRepositoryImpl{db: db}
}

func (r *SessionTypeRepositoryImpl) FindByName(ctx context.Context, name string) (*domain.SessionType, error) {
	return r.find(ctx, "name = ?", name)
}

func (r *SessionTypeRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.SessionType, error) {
	return r.find(ctx, "id = ?", id)
}

func (r *SessionTypeRepositoryImpl) find(ctx context.Context, query string, arg interface{}) (*domain.SessionType, error) {
	var row DBSessionType
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionTypeNotFound
		}
		return nil, err
	}
	return &domain.SessionType{ID: row.ID, Name: row.Name}, nil
}
