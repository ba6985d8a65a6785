package services

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

type AuthConfig struct {
	OTPPendingTTL time.Duration
	UserAuthTTL   time.Duration
}

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	otpSvc      domain.OTPService
	sessionSvc  domain.SessionService
	tokenSvc    domain.TokenService
	audit       domain.AuditLogger
	config      AuthConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	otpSvc domain.OTPService,
	sessionSvc domain.SessionService,
	tokenSvc domain.TokenService,
	audit domain.AuditLogger,
	config AuthConfig,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		otpSvc:      otpSvc,
		sessionSvc:  sessionSvc,
		tokenSvc:    tokenSvc,
		audit:       audit,
		config:      config,
	}
}

func bodyError(status int, path, msg string, cause error) *domain.ClientError {
	return domain.NewClientError(status, domain.OriginBody, domain.FieldErrors{}.With(path, msg), cause)
}

// Register implements domain.AuthService. The user, role link and profile
// rows are written in one transaction.
func (s *AuthServiceImpl) Register(ctx context.Context, in domain.RegisterInput) (*domain.TokenResult, error) {
	var user *domain.User

	err := s.userRepo.Transaction(ctx, func(store domain.RegistrationStore) error {
		if _, err := store.FindUserByEmail(ctx, in.Email); err == nil {
			return bodyError(http.StatusBadRequest, "body.email", "Already exist", domain.ErrUserAlreadyExists)
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		role, err := store.FindRoleByName(ctx, in.Role)
		if err != nil {
			if errors.Is(err, domain.ErrRoleNotFound) {
				return bodyError(http.StatusBadRequest, "body.role", "Not valid", err)
			}
			return err
		}

		hash, err := s.passwordSvc.Hash(in.Password)
		if err != nil {
			return domain.NewServerError("hash password", err)
		}

		u := &domain.User{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
			DateOfBirth:  in.DateOfBirth,
			PhoneNumber:  in.PhoneNumber,
		}
		if err := store.CreateUser(ctx, u); err != nil {
			if errors.Is(err, domain.ErrUserAlreadyExists) {
				return bodyError(http.StatusBadRequest, "body.email", "Already exist", err)
			}
			return err
		}
		if err := store.AssignRole(ctx, u.ID, role.ID); err != nil {
			return err
		}

		switch role.Kind {
		case domain.RoleCandidate:
			err = s.registerCandidate(ctx, store, u.ID, in.SfiaScores)
		case domain.RoleRecruiter:
			err = s.registerRecruiter(ctx, store, u.ID, in.Position, in.Company)
		}
		if err != nil {
			return err
		}

		user = u
		return nil
	})
	if err != nil {
		if _, ok := domain.AsClientError(err); ok {
			return nil, err
		}
		if _, ok := domain.AsServerError(err); ok {
			return nil, err
		}
		return nil, domain.NewServerError("register user", err)
	}

	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.UserRegistrationEvent, user.ID).
		WithEmail(user.Email).WithMetadata("role", in.Role))

	return s.startOTPStage(ctx, user.ID, nil)
}

func (s *AuthServiceImpl) registerCandidate(ctx context.Context, store domain.RegistrationStore, userID uint, scores map[string]int) error {
	if len(scores) == 0 {
		return bodyError(http.StatusBadRequest, "body.sfiaScores", "Not exist", nil)
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

	if err := store.SaveSfiaScores(ctx, userID, byID); err != nil {
		return err
	}
	return store.CreateCandidate(ctx, userID)
}

func (s *AuthServiceImpl) registerRecruiter(ctx context.Context, store domain.RegistrationStore, userID uint, position, company *string) error {
	fields := domain.FieldErrors{}
	if position == nil || strings.TrimSpace(*position) == "" {
		fields = fields.With("body.position", "Not exist")
	}
	if company == nil || strings.TrimSpace(*company) == "" {
		fields = fields.With("body.company", "Not exist")
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
	return store.CreateRecruiter(ctx, userID, positionID, companyID)
}

// Login implements domain.AuthService
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.TokenResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			logAudit(ctx, s.audit, domain.NewAuditEvent(domain.UserLoginFailureEvent, 0).WithEmail(email).WithError(err))
			return nil, bodyError(http.StatusUnauthorized, "body.email", "Not found", err)
		}
		return nil, domain.NewServerError("find user", err)
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		logAudit(ctx, s.audit, domain.NewAuditEvent(domain.UserLoginFailureEvent, user.ID).
			WithEmail(email).WithError(domain.ErrInvalidCredentials))
		return nil, bodyError(http.StatusUnauthorized, "body.password", "Not match", domain.ErrInvalidCredentials)
	}

	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).WithEmail(email))
	return s.startOTPStage(ctx, user.ID, nil)
}

// startOTPStage sends a code, moves the session to OTP_PENDING and mints
// the otp-stage token.
func (s *AuthServiceImpl) startOTPStage(ctx context.Context, userID uint, overrideEmail *string) (*domain.TokenResult, error) {
	if _, err := s.otpSvc.Send(ctx, userID, overrideEmail); err != nil {
		return nil, err
	}

	session, err := s.sessionSvc.Create(ctx, userID, domain.SessionTypeOTPPending, s.config.OTPPendingTTL)
	if err != nil {
		return nil, err
	}

	id := domain.TokenID{Kind: domain.TokenKindOTP, SessionID: session.ID}
	token, err := s.tokenSvc.IssueAccessToken(ctx, userID, id, session.ExpiredAt)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResult{Token: token, SessionID: session.ID, UserID: userID}, nil
}

// SendOTP implements domain.AuthService
func (s *AuthServiceImpl) SendOTP(ctx context.Context, userID uint, overrideEmail *string) error {
	_, err := s.otpSvc.Send(ctx, userID, overrideEmail)
	return err
}

// VerifyOTP implements domain.AuthService
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, claims *domain.AccessClaims, code string) (*domain.TokenResult, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, domain.Unauthorized("headers.authorization.payload.sub", "Not valid", err)
	}
	tid, err := claims.TokenID()
	if err != nil {
		return nil, domain.Unauthorized("headers.authorization.payload.jti", "Not valid", err)
	}

	if _, err := s.otpSvc.Verify(ctx, userID, code); err != nil {
		return nil, err
	}

	if tid.Kind == domain.TokenKindAuth {
		return nil, nil
	}

	session, err := s.sessionSvc.Create(ctx, userID, domain.SessionTypeUserAuth, s.config.UserAuthTTL)
	if err != nil {
		return nil, err
	}

	id := domain.TokenID{Kind: domain.TokenKindAuth, SessionID: session.ID}
	token, err := s.tokenSvc.IssueAccessToken(ctx, userID, id, session.ExpiredAt)
	if err != nil {
		return nil, err
	}

	logAudit(ctx, s.audit, domain.NewAuditEvent(domain.SessionEscalatedEvent, userID).
		WithMetadata("session_id", session.ID))
	return &domain.TokenResult{Token: token, SessionID: session.ID, UserID: userID}, nil
}

// Profile implements domain.AuthService
func (s *AuthServiceImpl) Profile(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	profile, err := s.userRepo.FindProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Unauthorized("headers.authorization.payload.sub", "Not valid", err)
		}
		return nil, domain.NewServerError("load profile", err)
	}
	return profile, nil
}
