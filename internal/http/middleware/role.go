package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// RoleMW loads the caller's profile once per request, after RequireSession.
type RoleMW struct {
	authSvc domain.AuthService
	logger  *slog.Logger
}

func NewRoleMW(authSvc domain.AuthService, logger *slog.Logger) *RoleMW {
	return &RoleMW{authSvc: authSvc, logger: logger.With("component", "role_middleware")}
}

// Resolve stores the caller's profile under ProfileKey.
func (mw *RoleMW) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ProfileFrom(c); ok {
			c.Next()
			return
		}

		userID, ok := UserIDFrom(c)
		if !ok {
			mw.logger.Error("role resolution without session", "route", c.FullPath())
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		profile, err := mw.authSvc.Profile(c.Request.Context(), userID)
		if err != nil {
			mw.logger.Warn("profile lookup failed", "user_id", userID, "error", err)
			abortFor(c, err)
			return
		}

		c.Set(ProfileKey, profile)
		c.Next()
	}
}
