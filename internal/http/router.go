package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/http/handlers"
	"github.com/temptedwithouta/eazy-career-backend/internal/http/middleware"
)

// RouteLimits configures the per-group fixed window.
type RouteLimits struct {
	Window time.Duration
	Auth   int
	User   int
}

// Deps is everything the router wires into handlers and middleware.
type Deps struct {
	Auth    *handlers.AuthHandlers
	User    *handlers.UserHandlers
	AuthMW  *middleware.AuthMW
	RoleMW  *middleware.RoleMW
	Casbin  *middleware.CasbinMW
	Limiter domain.RateLimiter
	Limits  RouteLimits
	Logger  *slog.Logger
}

func BuildRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		handlers.RespondData(c, http.StatusOK, gin.H{"ok": true})
	})

	pendingOrAuth := d.AuthMW.RequireSession(middleware.AnyStage)
	userAuth := d.AuthMW.RequireSession(middleware.UserAuthOnly)

	auth := r.Group("/auth", middleware.RateLimit(d.Limiter, "auth", d.Limits.Auth, d.Limits.Window, d.Logger))
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/send-otp", pendingOrAuth, d.Auth.SendOTP)
	auth.POST("/verify-otp", pendingOrAuth, d.Auth.VerifyOTP)
	auth.GET("/jwks", d.Auth.JWKS)

	user := r.Group("/user",
		middleware.RateLimit(d.Limiter, "user", d.Limits.User, d.Limits.Window, d.Logger),
		userAuth,
		d.RoleMW.Resolve(),
		d.Casbin.Enforce(),
	)
	user.GET("", d.User.Profile)
	user.PUT("", d.User.Update)
	user.PATCH("/password", d.User.UpdatePassword)
	user.PATCH("/email", d.User.UpdateEmail)
	user.GET("/sfiaScore", d.User.SfiaScore)
	user.POST("/sfiaScore", d.User.UpdateSfiaScore)

	return r
}
