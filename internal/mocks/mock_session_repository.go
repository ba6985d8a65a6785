package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// MockSessionRepository implements domain.SessionRepository interface for testing.
// Without overrides it keeps one session row per user in memory.
type MockSessionRepository struct {
	UpsertFunc   func(ctx context.Context, userID, sessionTypeID uint, expiredAt time.Time) (*domain.Session, error)
	FindByIDFunc func(ctx context.Context, id uint) (*domain.Session, error)

	mu     sync.Mutex
	byUser map[uint]*domain.Session
	nextID uint
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{byUser: make(map[uint]*domain.Session), nextID: 1}
}

// Upsert creates or replaces the user's session
func (m *MockSessionRepository) Upsert(ctx context.Context, userID, sessionTypeID uint, expiredAt time.Time) (*domain.Session, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, sessionTypeID, expiredAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byUser[userID]
	if !ok {
		s = &domain.Session{ID: m.nextID, UserID: userID}
		m.nextID++
		m.byUser[userID] = s
	}
	s.SessionTypeID, s.ExpiredAt = sessionTypeID, expiredAt
	cp := *s
	return &cp, nil
}

// FindByID finds a session by ID
func (m *MockSessionRepository) FindByID(ctx context.Context, id uint) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byUser {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)

// MockSessionTypeRepository implements domain.SessionTypeRepository for testing.
// Defaults know OTP_PENDING as 1 and USER_AUTH as 2.
type MockSessionTypeRepository struct {
	FindByNameFunc func(ctx context.Context, name string) (*domain.SessionType, error)
	FindByIDFunc   func(ctx context.Context, id uint) (*domain.SessionType, error)
}

var defaultSessionTypes = []domain.SessionType{
	{ID: 1, Name: domain.SessionTypeOTPPending},
	{ID: 2, Name: domain.SessionTypeUserAuth},
}

// NewMockSessionTypeRepository creates a new MockSessionTypeRepository with default behaviors
func NewMockSessionTypeRepository() *MockSessionTypeRepository {
	return &MockSessionTypeRepository{}
}

func (m *MockSessionTypeRepository) FindByName(ctx context.Context, name string) (*domain.SessionType, error) {
	if m.FindByNameFunc != nil {
		return m.FindByNameFunc(ctx, name)
	}
	for _, st := range defaultSessionTypes {
		if st.Name == name {
			cp := st
			return &cp, nil
		}
	}
	return nil, domain.ErrSessionTypeNotFound
}

func (m *MockSessionTypeRepository) FindByID(ctx context.Context, id uint) (*domain.SessionType, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	for _, st := range defaultSessionTypes {
		if st.ID == id {
			cp := st
			return &cp, nil
		}
	}
	return nil, domain.ErrSessionTypeNotFound
}

var _ domain.SessionTypeRepository = (*MockSessionTypeRepository)(nil)
