package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// Keys set on the gin context by the middleware chain.
const (
	ClaimsKey    = "claims"
	RawClaimsKey = "claims_json"
	UserIDKey    = "user_id"
	SessionKey   = "session"
	ProfileKey   = "profile"
	RequestIDKey = "request_id"
)

// ClaimsFrom returns the verified claims set by RequireSession.
func ClaimsFrom(c *gin.Context) (*domain.AccessClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.AccessClaims)
	return claims, ok
}

// UserIDFrom returns the token subject set by RequireSession.
func UserIDFrom(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// ProfileFrom returns the profile resolved by RoleMW.
func ProfileFrom(c *gin.Context) (*domain.UserProfile, bool) {
	v, ok := c.Get(ProfileKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*domain.UserProfile)
	return p, ok
}

// abortFor ends the request for err. Client errors become a bare 401 so the
// caller cannot tell which check failed; server errors keep their status.
func abortFor(c *gin.Context, err error) {
	if se, ok := domain.AsServerError(err); ok {
		c.AbortWithStatus(se.Status)
		return
	}
	c.AbortWithStatus(http.StatusUnauthorized)
}
