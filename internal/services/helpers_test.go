package services

import (
	"errors"
	"testing"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// createValidUser creates a valid user entity for testing
func createValidUser(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:           1,
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		PasswordHash: "hashed_Secret1!",
		DateOfBirth:  time.Date(1999, 1, 2, 0, 0, 0, 0, time.UTC),
		PhoneNumber:  "081234567890",
		CreatedAt:    testNow.Add(-24 * time.Hour),
		UpdatedAt:    testNow.Add(-time.Hour),
	}
}

// wantClientError asserts err is a ClientError with status and a message at path.
func wantClientError(t *testing.T, err error, status int, origin domain.ErrorOrigin, path, msg string) *domain.ClientError {
	t.Helper()

	ce, ok := domain.AsClientError(err)
	if !ok {
		t.Fatalf("expected client error, got %T: %v", err, err)
	}
	if ce.Status != status {
		t.Errorf("expected status %d, got %d", status, ce.Status)
	}

	var fields domain.FieldErrors
	switch origin {
	case domain.OriginHeaders:
		fields = ce.Errors.HeadersErrors
	case domain.OriginBody:
		fields = ce.Errors.BodyErrors
	default:
		t.Fatalf("unexpected origin %s", origin)
	}
	msgs, ok := fields[path]
	if !ok {
		t.Fatalf("expected error at %s, got paths %v", path, fields.Paths())
	}
	for _, m := range msgs {
		if m == msg {
			return ce
		}
	}
	t.Errorf("expected message %q at %s, got %v", msg, path, msgs)
	return ce
}

func wantServerError(t *testing.T, err error) *domain.ServerError {
	t.Helper()

	se, ok := domain.AsServerError(err)
	if !ok {
		t.Fatalf("expected server error, got %T: %v", err, err)
	}
	return se
}

func wantSentinel(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("expected error wrapping %v, got %v", target, err)
	}
}
