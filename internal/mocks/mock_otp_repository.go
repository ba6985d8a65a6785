package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// MockOTPRepository implements domain.OTPRepository interface for testing
type MockOTPRepository struct {
	UpsertFunc       func(ctx context.Context, userID uint, code string, expiredAt time.Time) (*domain.OTP, error)
	FindByUserIDFunc func(ctx context.Context, userID uint) (*domain.OTP, error)
	DeleteFunc       func(ctx context.Context, id uint, code string) error

	mu     sync.Mutex
	byUser map[uint]*domain.OTP
	nextID uint
}

// NewMockOTPRepository creates a new MockOTPRepository with default behaviors
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{byUser: make(map[uint]*domain.OTP), nextID: 1}
}

// Upsert stores the user's current code
func (m *MockOTPRepository) Upsert(ctx context.Context, userID uint, code string, expiredAt time.Time) (*domain.OTP, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, code, expiredAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.byUser[userID]
	if !ok {
		o = &domain.OTP{ID: m.nextID, UserID: userID}
		m.nextID++
		m.byUser[userID] = o
	}
	o.Code, o.ExpiredAt = code, expiredAt
	cp := *o
	return &cp, nil
}

// FindByUserID returns the user's current code
func (m *MockOTPRepository) FindByUserID(ctx context.Context, userID uint) (*domain.OTP, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byUser[userID]
	if !ok {
		return nil, domain.ErrOTPNotFound
	}
	cp := *o
	return &cp, nil
}

// Delete removes a code by ID while it still matches
func (m *MockOTPRepository) Delete(ctx context.Context, id uint, code string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, o := range m.byUser {
		if o.ID == id && o.Code == code {
			delete(m.byUser, userID)
			return nil
		}
	}
	return domain.ErrOTPNotFound
}

// Compile-time interface compliance verification
var _ domain.OTPRepository = (*MockOTPRepository)(nil)
