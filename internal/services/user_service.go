package services

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// UserServiceImpl implements domain.UserService
type UserServiceImpl struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	audit       domain.AuditLogger
}

// NewUserService creates the account update service
func NewUserService(userRepo domain.UserRepository, passwordSvc domain.PasswordService, audit domain.AuditLogger) *UserServiceImpl {
	return &UserServiceImpl{userRepo: userRepo, passwordSvc: passwordSvc, audit: audit}
}

var _ domain.UserService = (*UserServiceImpl)(nil)

func subjectNotValid(err error) *domain.ClientError {
	return domain.Unauthorized("headers.authorization.payload.sub", "Not valid", err)
}

// passThrough keeps client and server errors and wraps anything else.
func passThrough(op string, err error) error {
	if _, ok := domain.AsClientError(err); ok {
		return err
	}
	if _, ok := domain.AsServerError(err); ok {
		return err
	}
	return domain.NewServerError(op, err)
}

// findSubject loads the token subject inside store, mapping a missing row to 401.
func findSubject(ctx context.Context, store domain.UserUpdateStore, userID uint) (*domain.User, error) {
	user, err := store.FindUserByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, subjectNotValid(err)
	}
	return user, err
}

// Update implements domain.UserService
func (s *UserServiceImpl) Update(ctx context.Context, userID uint, in domain.UpdateUserInput) (*domain.UserProfile, error) {
	err := s.userRepo.UpdateTransaction(ctx, func(store domain.UserUpdateStore) error {
		user, err := findSubject(ctx, store, userID)
		if err != nil {
			return err
		}
		kind, err := store.FindRoleKind(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrRoleNotFound) {
				return subjectNotValid(err)
			}
			return err
		}

		user.Name = in.Name
		user.DateOfBirth = in.DateOfBirth
		user.PhoneNumber = in.PhoneNumber
		if err := store.UpdateUser(ctx, user); err != nil {
			return err
		}

		switch kind {
		case domain.RoleCandidate:
			return store.UpdateCandidate(ctx, userID, domain.CandidatePatch{
				Portfolio: in.Portfolio,
				AboutMe:   in.AboutMe,
				Domicile:  in.Domicile,
			})
		case domain.RoleRecruiter:
			return s.updateRecruiter(ctx, store, userID, in.Position, in.Company)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough("update user", err)
	}

	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.UserUpdatedEvent, userID))
	return s.reload(ctx, userID)
}

func (s *UserServiceImpl) updateRecruiter(ctx context.Context, store domain.UserUpdateStore, userID uint, position, company *string) error {
	fields := domain.FieldErrors{}
	if position == nil || strings.TrimSpace(*position) == "" {
		fields = fields.With("body.position", "Not found")
	}
	if company == nil || strings.TrimSpace(*company) == "" {
		fields = fields.With("body.company", "Not found")
	}
	if len(fields) > 0 {
		return domain.NewClientError(http.StatusBadRequest, domain.OriginBody, fields, nil)
	}

	positionID, err := store.FindOrCreatePosition(ctx, strings.TrimSpace(*position))
	if err != nil {
		return err
	}
	companyID, err := store.FindOrCreateCompany(ctx, strings.TrimSpace(*company))
	if err != nil {
		return err
	}
	return store.UpdateRecruiter(ctx, userID, positionID, companyID)
}

// UpdatePassword implements domain.UserService. The old password must match
// the stored hash.
func (s *UserServiceImpl) UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) (*domain.UserProfile, error) {
	err := s.userRepo.UpdateTransaction(ctx, func(store domain.UserUpdateStore) error {
		user, err := findSubject(ctx, store, userID)
		if err != nil {
			return err
		}
		if !s.passwordSvc.Verify(user.PasswordHash, oldPassword) {
			return bodyError(http.StatusUnauthorized, "body.oldPassword", "Not valid", domain.ErrInvalidCredentials)
		}

		hash, err := s.passwordSvc.Hash(newPassword)
		if err != nil {
			return domain.NewServerError("hash password", err)
		}
		user.PasswordHash = hash
		return store.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, passThrough("update password", err)
	}

	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.PasswordChangedEvent, userID))
	return s.reload(ctx, userID)
}

// UpdateEmail implements domain.UserService
func (s *UserServiceImpl) UpdateEmail(ctx context.Context, userID uint, newEmail string) (*domain.UserProfile, error) {
	var previous string

	err := s.userRepo.UpdateTransaction(ctx, func(store domain.UserUpdateStore) error {
		if _, err := store.FindUserByEmail(ctx, newEmail); err == nil {
			return bodyError(http.StatusBadRequest, "body.email", "Already exist", domain.ErrUserAlreadyExists)
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		user, err := findSubject(ctx, store, userID)
		if err != nil {
			return err
		}
		previous = user.Email
		user.Email = newEmail
		if err := store.UpdateUser(ctx, user); err != nil {
			if errors.Is(err, domain.ErrUserAlreadyExists) {
				return bodyError(http.StatusBadRequest, "body.email", "Already exist", err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, passThrough("update email", err)
	}

	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.EmailChangedEvent, userID).
		WithEmail(newEmail).WithMetadata("previous_email", previous))
	return s.reload(ctx, userID)
}

// UpdateSfiaScores implements domain.UserService. Only candidates hold scores.
func (s *UserServiceImpl) UpdateSfiaScores(ctx context.Context, userID uint, scores map[string]int) (map[string]int, error) {
	err := s.userRepo.UpdateTransaction(ctx, func(store domain.UserUpdateStore) error {
		if _, err := findSubject(ctx, store, userID); err != nil {
			return err
		}
		kind, err := store.FindRoleKind(ctx, userID)
		if err != nil && !errors.Is(err, domain.ErrRoleNotFound) {
			return err
		}
		if kind != domain.RoleCandidate {
			return domain.NewClientError(http.StatusForbidden, domain.OriginHeaders,
				domain.FieldErrors{}.With("headers.authorization.payload.sub", "Role not have access"),
				domain.ErrInsufficientRole)
		}

		names := make([]string, 0, len(scores))
		for name := range scores {
			names = append(names, name)
		}
		sort.Strings(names)

		fields := domain.FieldErrors{}
		byID := make(map[uint]int, len(scores))
		for _, name := range names {
			cat, err := store.FindSfiaCategoryByName(ctx, name)
			if errors.Is(err, domain.ErrSfiaCategoryNotFound) {
				fields = fields.With("body.sfiaScores."+name, "Property name not valid")
				continue
			} else if err != nil {
				return err
			}
			byID[cat.ID] = scores[name]
		}
		if len(fields) > 0 {
			return domain.NewClientError(http.StatusBadRequest, domain.OriginBody, fields, domain.ErrSfiaCategoryNotFound)
		}
		if len(byID) == 0 {
			return nil
		}
		return store.UpsertSfiaScores(ctx, userID, byID)
	})
	if err != nil {
		return nil, passThrough("update sfia scores", err)
	}

	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.SfiaScoresUpdatedEvent, userID).
		WithMetadata("categories", len(scores)))

	profile, err := s.reload(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.Role.Candidate == nil {
		return map[string]int{}, nil
	}
	return profile.Role.Candidate.SfiaScores, nil
}

func (s *UserServiceImpl) reload(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	profile, err := s.userRepo.FindProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, subjectNotValid(err)
		}
		return nil, domain.NewServerError("load profile", err)
	}
	return profile, nil
}
