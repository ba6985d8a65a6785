package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/config"
	httpx "github.com/temptedwithouta/eazy-career-backend/internal/http"
	"github.com/temptedwithouta/eazy-career-backend/internal/http/handlers"
	"github.com/temptedwithouta/eazy-career-backend/internal/http/middleware"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/auth"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/database"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/logging"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/notifications"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/ratelimit"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/repositories"
	"github.com/temptedwithouta/eazy-career-backend/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient redis.UniversalClient
	Keys        *auth.KeyManager

	// Repositories
	UserRepo        domain.UserRepository
	SessionRepo     domain.SessionRepository
	SessionTypeRepo domain.SessionTypeRepository
	OTPRepo         domain.OTPRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	AuditLogger     domain.AuditLogger
	SessionSvc      domain.SessionService
	OTPSvc          domain.OTPService
	AuthSvc         domain.AuthService
	UserSvc         domain.UserService
	PolicySvc       *services.PolicyServiceImpl
	Limiter         domain.RateLimiter
}

// Infra is what the container needs from the outside world. Nil fields
// are built from the config.
type Infra struct {
	DB       *gorm.DB
	Redis    redis.UniversalClient
	Notifier domain.NotificationService
}

// NewContainer connects to postgres and redis from the config and wires
// every service.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	return NewContainerWith(ctx, cfg, logger, Infra{})
}

// NewContainerWith wires the services over the given infrastructure.
func NewContainerWith(ctx context.Context, cfg *config.Config, logger *slog.Logger, infra Infra) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initDatabase(ctx, infra.DB); err != nil {
		return nil, err
	}
	if err := c.initRedis(ctx, infra.Redis); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initKeys(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.initRepositories()

	if err := c.initServices(infra.Notifier); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPolicies(); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

func (c *Container) initDatabase(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		var err error
		if db, err = database.Open(c.Config.DSN); err != nil {
			return err
		}
	}

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	if err := database.Seed(ctx, db); err != nil {
		return err
	}

	c.DB = db
	return nil
}

func (c *Container) initRedis(ctx context.Context, client redis.UniversalClient) error {
	if client == nil {
		client = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB).Client
	}
	c.RedisClient = client
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *Container) initKeys(ctx context.Context) error {
	keys, err := auth.NewKeyManager(c.Config.KeyDir, c.Config.JWTAlg)
	if err != nil {
		return err
	}
	if _, err := keys.EnsureKeyPair(ctx); err != nil {
		return fmt.Errorf("ensure key pair: %w", err)
	}
	c.Keys = keys
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.DB)
	c.SessionTypeRepo = repositories.NewSessionTypeRepository(c.DB)
	c.OTPRepo = repositories.NewOTPRepository(c.DB)
}

func (c *Container) initServices(notifier domain.NotificationService) error {
	cfg := c.Config

	c.PasswordSvc = auth.NewPasswordService(cfg.SaltRounds)

	tokenSvc, err := auth.NewTokenService(c.Keys, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		return err
	}
	c.TokenSvc = tokenSvc

	if notifier == nil {
		notifier = notifications.NewNotifier(
			notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, c.Logger),
			notifications.NewSMTPService(notifications.SMTPConfig{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUsername,
				Password: cfg.SMTPPassword,
				From:     cfg.SMTPFrom,
			}, c.Logger),
		)
	}
	c.NotificationSvc = notifier
	c.AuditLogger = logging.NewAuditLogger(c.Logger)

	c.SessionSvc = services.NewSessionService(c.SessionRepo, c.SessionTypeRepo)
	c.OTPSvc = services.NewOTPService(c.NotificationSvc, c.UserRepo, c.OTPRepo, c.AuditLogger, services.OTPConfig{
		Length:          cfg.OTP_Length,
		TTL:             cfg.OTP_TTL,
		Channel:         cfg.OTPChannel,
		DeliveryTimeout: cfg.OTPDeliveryTimeout,
	})

	// Auth service depends on all other services
	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.PasswordSvc,
		c.OTPSvc,
		c.SessionSvc,
		c.TokenSvc,
		c.AuditLogger,
		services.AuthConfig{OTPPendingTTL: cfg.OTPPendingTTL, UserAuthTTL: cfg.UserAuthTTL},
	)

	c.UserSvc = services.NewUserService(c.UserRepo, c.PasswordSvc, c.AuditLogger)

	c.Limiter = ratelimit.NewRedisLimiter(c.RedisClient, "ratelimit:")
	return nil
}

func (c *Container) initPolicies() error {
	cas, err := auth.NewCasbinService(c.DB)
	if err != nil {
		return err
	}
	c.PolicySvc = services.NewPolicyService(cas.E)
	if err := c.PolicySvc.Seed(services.DefaultPolicies); err != nil {
		return err
	}
	c.Logger.Info("casbin policies ready", "count", len(c.PolicySvc.GetPolicies()))
	return nil
}

// Router builds the HTTP handler over the container's services.
func (c *Container) Router() (*gin.Engine, error) {
	v, err := handlers.NewValidator(c.Config.OTP_Length)
	if err != nil {
		return nil, err
	}

	return httpx.BuildRouter(httpx.Deps{
		Auth:    handlers.NewAuthHandlers(c.AuthSvc, c.TokenSvc, v, c.Logger),
		User:    handlers.NewUserHandlers(c.UserSvc, v, c.Logger),
		AuthMW:  middleware.NewAuthMW(c.TokenSvc, c.SessionSvc, c.Logger),
		RoleMW:  middleware.NewRoleMW(c.AuthSvc, c.Logger),
		Casbin:  middleware.NewCasbinMW(c.PolicySvc, c.AuditLogger, c.Logger),
		Limiter: c.Limiter,
		Limits: httpx.RouteLimits{
			Window: c.Config.RateWindow,
			Auth:   c.Config.AuthRateLimit,
			User:   c.Config.UserRateLimit,
		},
		Logger: c.Logger,
	}), nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
