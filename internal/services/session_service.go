package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// SessionServiceImpl implements domain.SessionService
type SessionServiceImpl struct {
	sessions domain.SessionRepository
	types    domain.SessionTypeRepository
	now      func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(sessions domain.SessionRepository, types domain.SessionTypeRepository) *SessionServiceImpl {
	return &SessionServiceImpl{sessions: sessions, types: types, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (s *SessionServiceImpl) WithClock(now func() time.Time) *SessionServiceImpl {
	s.now = now
	return s
}

// Create implements domain.SessionService. Each user holds one session row;
// creating again re-keys that row to typeName and a fresh expiry.
func (s *SessionServiceImpl) Create(ctx context.Context, userID uint, typeName string, ttl time.Duration) (*domain.Session, error) {
	st, err := s.types.FindByName(ctx, typeName)
	if err != nil {
		if errors.Is(err, domain.ErrSessionTypeNotFound) {
			return nil, domain.NewServerError("session type not found", fmt.Errorf("%w: %s", err, typeName))
		}
		return nil, domain.NewServerError("find session type", err)
	}

	session, err := s.sessions.Upsert(ctx, userID, st.ID, s.now().Add(ttl))
	if err != nil {
		return nil, domain.NewServerError("upsert session", err)
	}
	return session, nil
}

// Check implements domain.SessionService
func (s *SessionServiceImpl) Check(ctx context.Context, sessionID uint, allowed []string) (*domain.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.Unauthorized("headers.authorization", "Session not found", domain.ErrSessionNotFound)
		}
		return nil, domain.NewServerError("find session", err)
	}

	if session.Expired(s.now()) {
		return nil, domain.Unauthorized("headers.authorization", "Session expired", domain.ErrSessionExpired)
	}

	st, err := s.types.FindByID(ctx, session.SessionTypeID)
	if err != nil {
		return nil, domain.NewServerError("session type not found", err)
	}

	for _, name := range allowed {
		if st.Name == name {
			return session, nil
		}
	}
	return nil, domain.Unauthorized("headers.authorization", "Session type not valid", domain.ErrSessionTypeInvalid)
}
