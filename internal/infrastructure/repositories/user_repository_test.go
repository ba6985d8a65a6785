package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

func registerCandidate(t *testing.T, repo domain.UserRepository, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "Ana",
		Email:        email,
		PasswordHash: "hash",
		DateOfBirth:  time.Date(1999, 1, 2, 0, 0, 0, 0, time.UTC),
		PhoneNumber:  "081234567890",
	}
	err := repo.Transaction(context.Background(), func(s domain.RegistrationStore) error {
		ctx := context.Background()
		role, err := s.FindRoleByName(ctx, "Candidate")
		if err != nil {
			return err
		}
		if err := s.CreateUser(ctx, user); err != nil {
			return err
		}
		if err := s.AssignRole(ctx, user.ID, role.ID); err != nil {
			return err
		}
		cat, err := s.FindSfiaCategoryByName(ctx, "WEBD")
		if err != nil {
			return err
		}
		if err := s.SaveSfiaScores(ctx, user.ID, map[uint]int{cat.ID: 4}); err != nil {
			return err
		}
		return s.CreateCandidate(ctx, user.ID)
	})
	require.NoError(t, err)
	return user
}

func TestUserRepositoryImpl_FindByEmail(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		expectedError error
	}{
		{name: "existing user", email: "ana@example.com"},
		{name: "unknown email", email: "nobody@example.com", expectedError: domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			seeded := registerCandidate(t, repo, "ana@example.com")

			got, err := repo.FindByEmail(context.Background(), tt.email)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, seeded.ID, got.ID)
			assert.Equal(t, "hash", got.PasswordHash)

			byID, err := repo.FindByID(context.Background(), seeded.ID)
			require.NoError(t, err)
			assert.Equal(t, got.Email, byID.Email)
		})
	}
}

func TestUserRepositoryImpl_TransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	boom := errors.New("boom")

	err := repo.Transaction(context.Background(), func(s domain.RegistrationStore) error {
		u := &domain.User{Name: "Bo", Email: "bo@example.com", PasswordHash: "h", PhoneNumber: "0812345678"}
		if err := s.CreateUser(context.Background(), u); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.FindByEmail(context.Background(), "bo@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepositoryImpl_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	registerCandidate(t, repo, "dup@example.com")

	err := repo.Transaction(context.Background(), func(s domain.RegistrationStore) error {
		return s.CreateUser(context.Background(), &domain.User{Name: "X", Email: "dup@example.com", PasswordHash: "h", PhoneNumber: "0812345678"})
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestRegistrationStore_Lookups(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	err := repo.Transaction(ctx, func(s domain.RegistrationStore) error {
		_, err := s.FindRoleByName(ctx, "Admin")
		assert.ErrorIs(t, err, domain.ErrRoleNotFound)

		_, err = s.FindSfiaCategoryByName(ctx, "NOPE")
		assert.ErrorIs(t, err, domain.ErrSfiaCategoryNotFound)

		a, err := s.FindOrCreatePosition(ctx, "Engineer")
		require.NoError(t, err)
		b, err := s.FindOrCreatePosition(ctx, "Engineer")
		require.NoError(t, err)
		assert.Equal(t, a, b)

		c1, err := s.FindOrCreateCompany(ctx, "Acme")
		require.NoError(t, err)
		c2, err := s.FindOrCreateCompany(ctx, "Globex")
		require.NoError(t, err)
		assert.NotEqual(t, c1, c2)
		return nil
	})
	require.NoError(t, err)
}

func TestUserRepositoryImpl_FindProfile(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	t.Run("candidate", func(t *testing.T) {
		u := registerCandidate(t, repo, "cand@example.com")
		p, err := repo.FindProfile(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCandidate, p.Role.Kind)
		require.NotNil(t, p.Role.Candidate)
		assert.Equal(t, map[string]int{"WEBD": 4}, p.Role.Candidate.SfiaScores)
		assert.Nil(t, p.Role.Recruiter)
	})

	t.Run("recruiter", func(t *testing.T) {
		user := &domain.User{Name: "Rita", Email: "rita@example.com", PasswordHash: "h", PhoneNumber: "0812345678"}
		err := repo.Transaction(ctx, func(s domain.RegistrationStore) error {
			role, err := s.FindRoleByName(ctx, "Recruiter")
			if err != nil {
				return err
			}
			if err := s.CreateUser(ctx, user); err != nil {
				return err
			}
			if err := s.AssignRole(ctx, user.ID, role.ID); err != nil {
				return err
			}
			pos, err := s.FindOrCreatePosition(ctx, "HR Lead")
			if err != nil {
				return err
			}
			co, err := s.FindOrCreateCompany(ctx, "Acme")
			if err != nil {
				return err
			}
			return s.CreateRecruiter(ctx, user.ID, pos, co)
		})
		require.NoError(t, err)

		p, err := repo.FindProfile(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleRecruiter, p.Role.Kind)
		assert.Equal(t, &domain.RecruiterProfile{Position: "HR Lead", Company: "Acme"}, p.Role.Recruiter)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.FindProfile(ctx, 12345)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserUpdateStore_UpdatesCandidate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	u := registerCandidate(t, repo, "upd@example.com")
	aboutMe := "Go developer"

	err := repo.UpdateTransaction(ctx, func(s domain.UserUpdateStore) error {
		kind, err := s.FindRoleKind(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCandidate, kind)

		user, err := s.FindUserByID(ctx, u.ID)
		require.NoError(t, err)
		user.Name = "Ana Maria"
		user.PasswordHash = "new-hash"
		if err := s.UpdateUser(ctx, user); err != nil {
			return err
		}
		if err := s.UpdateCandidate(ctx, u.ID, domain.CandidatePatch{AboutMe: &aboutMe}); err != nil {
			return err
		}
		webd, err := s.FindSfiaCategoryByName(ctx, "WEBD")
		require.NoError(t, err)
		aifl, err := s.FindSfiaCategoryByName(ctx, "AIFL")
		require.NoError(t, err)
		return s.UpsertSfiaScores(ctx, u.ID, map[uint]int{webd.ID: 6, aifl.ID: 2})
	})
	require.NoError(t, err)

	p, err := repo.FindProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", p.User.Name)
	assert.Equal(t, "new-hash", p.User.PasswordHash)
	require.NotNil(t, p.Role.Candidate.AboutMe)
	assert.Equal(t, aboutMe, *p.Role.Candidate.AboutMe)
	assert.Nil(t, p.Role.Candidate.Portfolio)
	assert.Equal(t, map[string]int{"WEBD": 6, "AIFL": 2}, p.Role.Candidate.SfiaScores)
}

func TestUserUpdateStore_Errors(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	registerCandidate(t, repo, "taken@example.com")
	u := registerCandidate(t, repo, "mine@example.com")

	err := repo.UpdateTransaction(ctx, func(s domain.UserUpdateStore) error {
		user, err := s.FindUserByID(ctx, u.ID)
		require.NoError(t, err)
		user.Email = "taken@example.com"
		return s.UpdateUser(ctx, user)
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	err = repo.UpdateTransaction(ctx, func(s domain.UserUpdateStore) error {
		return s.UpdateUser(ctx, &domain.User{ID: 9999, Name: "Ghost", Email: "ghost@example.com"})
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	err = repo.UpdateTransaction(ctx, func(s domain.UserUpdateStore) error {
		_, err := s.FindRoleKind(ctx, 9999)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine@example.com", got.Email)
}
