package middleware

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// SessionGate names the token kinds and session types a route accepts.
type SessionGate struct {
	Kinds []domain.TokenKind
	Types []string
}

var (
	// AnyStage admits both otp-stage and auth-stage tokens.
	AnyStage = SessionGate{
		Kinds: []domain.TokenKind{domain.TokenKindOTP, domain.TokenKindAuth},
		Types: []string{domain.SessionTypeOTPPending, domain.SessionTypeUserAuth},
	}
	// UserAuthOnly admits auth-stage tokens backed by a USER_AUTH session.
	UserAuthOnly = SessionGate{
		Kinds: []domain.TokenKind{domain.TokenKindAuth},
		Types: []string{domain.SessionTypeUserAuth},
	}
)

func (g SessionGate) admits(kind domain.TokenKind) bool {
	for _, k := range g.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// AuthMW gates routes on a verified token backed by a live session.
type AuthMW struct {
	tokenSvc   domain.TokenService
	sessionSvc domain.SessionService
	logger     *slog.Logger
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(tokenSvc domain.TokenService, sessionSvc domain.SessionService, logger *slog.Logger) *AuthMW {
	return &AuthMW{
		tokenSvc:   tokenSvc,
		sessionSvc: sessionSvc,
		logger:     logger.With("component", "auth_middleware"),
	}
}

// RequireSession verifies the Authorization token, requires its jti kind to
// be one the gate admits and its session to be live and of an allowed type.
// The session row is shared by both stages, so the kind check is what keeps
// an otp-stage token out once the row has moved to USER_AUTH.
func (mw *AuthMW) RequireSession(gate SessionGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}
		if raw == "" {
			mw.reject(c, domain.Unauthorized("headers.authorization", "Not exist", domain.ErrUnauthorized))
			return
		}

		claims, err := mw.tokenSvc.Verify(ctx, raw)
		if err != nil {
			mw.reject(c, err)
			return
		}

		tid, err := domain.ParseTokenID(claims.Payload.Jti)
		if err != nil {
			mw.reject(c, domain.Unauthorized("headers.authorization.payload.jti", "Not valid", err))
			return
		}
		if !gate.admits(tid.Kind) {
			mw.reject(c, domain.Unauthorized("headers.authorization.payload.jti", "Not valid", domain.ErrSessionTypeInvalid))
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			mw.reject(c, domain.Unauthorized("headers.authorization.payload.sub", "Not valid", err))
			return
		}

		session, err := mw.sessionSvc.Check(ctx, tid.SessionID, gate.Types)
		if err != nil {
			mw.reject(c, err)
			return
		}
		if session.UserID != userID {
			mw.reject(c, domain.Unauthorized("headers.authorization.payload.sub", "Not valid", domain.ErrUnauthorized))
			return
		}

		rawClaims, err := json.Marshal(claims)
		if err != nil {
			mw.reject(c, domain.NewServerError("encode claims", err))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(RawClaimsKey, json.RawMessage(rawClaims))
		c.Set(UserIDKey, userID)
		c.Set(SessionKey, session)
		c.Next()
	}
}

func (mw *AuthMW) reject(c *gin.Context, err error) {
	if _, ok := domain.AsServerError(err); ok {
		mw.logger.Error("authorization failed", "route", c.FullPath(), "error", err)
	} else {
		mw.logger.Warn("unauthorized", "route", c.FullPath(), "error", err)
	}
	abortFor(c, err)
}
