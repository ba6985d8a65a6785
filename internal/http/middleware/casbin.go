package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// CasbinMW authorizes the caller's role against route policies.
type CasbinMW struct {
	policy domain.PolicyService
	audit  domain.AuditLogger
	logger *slog.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policy domain.PolicyService, audit domain.AuditLogger, logger *slog.Logger) *CasbinMW {
	return &CasbinMW{policy: policy, audit: audit, logger: logger.With("component", "casbin_middleware")}
}

// Enforce returns the casbin authorization middleware. It needs RoleMW to
// have resolved the profile.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := ProfileFrom(c)
		if !ok {
			mw.logger.Error("policy check without profile", "route", c.FullPath())
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		// Match against the route pattern, e.g. /user/:id
		obj := c.FullPath()
		if obj == "" {
			obj = c.Request.URL.Path
		}
		sub := profile.Role.PolicySubject()
		act := c.Request.Method

		allowed, err := mw.policy.CheckPermission(sub, obj, act)
		if err != nil {
			mw.logger.Error("authorization check failed", "subject", sub, "object", obj, "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		eventType := domain.AccessGrantedEvent
		if !allowed {
			eventType = domain.AccessDeniedEvent
		}
		event := domain.NewAuditEvent(eventType, profile.User.ID).
			WithClientContext(domain.ClientContextFrom(c.Request.Context())).
			WithMetadata("subject", sub).
			WithMetadata("object", obj).
			WithMetadata("action", act)
		if !allowed {
			event = event.WithError(domain.ErrInsufficientRole)
		}
		if mw.audit != nil {
			_ = mw.audit.LogEvent(c.Request.Context(), event)
		}

		if !allowed {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
