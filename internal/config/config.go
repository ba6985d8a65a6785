package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SupportedAlgs lists the JWS algorithms the key manager can generate keys for.
var SupportedAlgs = []string{
	"RS256", "RS384", "RS512",
	"PS256", "PS384", "PS512",
	"ES256", "ES384", "ES512",
	"EdDSA",
}

type AppConfig struct {
	Port     int    `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
	LogLevel string `yaml:"log_level"`
	PageSize int    `yaml:"page_size"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Alg      string `yaml:"alg"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
	KeyDir   string `yaml:"key_dir"`
}

type SessionConfig struct {
	OTPPendingTTL string `yaml:"otp_pending_ttl"`
	UserAuthTTL   string `yaml:"user_auth_ttl"`
}

type OTPConfig struct {
	TTL             string `yaml:"ttl"`
	Length          int    `yaml:"length"`
	Channel         string `yaml:"channel"`
	DeliveryTimeout string `yaml:"delivery_timeout"`
}

type PasswordConfig struct {
	SaltRounds int `yaml:"salt_rounds"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type RateLimitConfig struct {
	Window string `yaml:"window"`
	Auth   int    `yaml:"auth"`
	User   int    `yaml:"user"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Session   SessionConfig   `yaml:"session"`
	OTP       OTPConfig       `yaml:"otp"`
	Password  PasswordConfig  `yaml:"password"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Twilio    TwilioConfig    `yaml:"twilio"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	PageSize int

	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTAlg      string
	JWTIssuer   string
	JWTAudience string
	KeyDir      string

	OTPPendingTTL time.Duration
	UserAuthTTL   time.Duration

	OTP_TTL            time.Duration
	OTP_Length         int
	OTPChannel         string
	OTPDeliveryTimeout time.Duration
	SaltRounds         int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	RateWindow    time.Duration
	AuthRateLimit int
	UserRateLimit int
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// Load reads .env (when present), the yaml file at CONFIG_PATH and the
// environment overrides, in that order.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	configFile, err := loadConfigFile(env("CONFIG_PATH", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg, err := FromFile(configFile)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile flattens a parsed config file, filling defaults for blank values.
func FromFile(f *ConfigFile) (*Config, error) {
	cfg := &Config{
		Port:     fmt.Sprintf("%d", orInt(f.App.Port, 3000)),
		GinMode:  orString(f.App.GinMode, "release"),
		LogLevel: orString(f.App.LogLevel, "info"),
		PageSize: orInt(f.App.PageSize, 10),

		DSN:           f.Database.DSN,
		RedisAddr:     orString(f.Redis.Addr, "localhost:6379"),
		RedisPassword: f.Redis.Password,
		RedisDB:       f.Redis.DB,

		JWTAlg:      orString(f.JWT.Alg, "ES256"),
		JWTIssuer:   f.JWT.Issuer,
		JWTAudience: f.JWT.Audience,
		KeyDir:      orString(f.JWT.KeyDir, "key"),

		OTP_Length: orInt(f.OTP.Length, 6),
		OTPChannel: orString(f.OTP.Channel, "email"),
		SaltRounds: orInt(f.Password.SaltRounds, 10),

		SMTPHost:     f.SMTP.Host,
		SMTPPort:     orInt(f.SMTP.Port, 587),
		SMTPUsername: f.SMTP.Username,
		SMTPPassword: f.SMTP.Password,
		SMTPFrom:     f.SMTP.From,

		TwilioSID:   f.Twilio.AccountSID,
		TwilioToken: f.Twilio.AuthToken,
		TwilioFrom:  f.Twilio.FromNumber,

		AuthRateLimit: orInt(f.RateLimit.Auth, 10),
		UserRateLimit: orInt(f.RateLimit.User, 100),
	}

	durations := []struct {
		name string
		raw  string
		def  string
		dst  *time.Duration
	}{
		{"session OTP pending TTL", f.Session.OTPPendingTTL, "1h", &cfg.OTPPendingTTL},
		{"session user auth TTL", f.Session.UserAuthTTL, "1440h", &cfg.UserAuthTTL},
		{"OTP TTL", f.OTP.TTL, "15m", &cfg.OTP_TTL},
		{"OTP delivery timeout", f.OTP.DeliveryTimeout, "10s", &cfg.OTPDeliveryTimeout},
		{"rate limit window", f.RateLimit.Window, "1h", &cfg.RateWindow},
	}

	for _, d := range durations {
		v, err := time.ParseDuration(orString(d.raw, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = env("PORT", cfg.Port)
	cfg.DSN = env("DATABASE_DSN", cfg.DSN)
	cfg.RedisAddr = env("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = env("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.JWTAlg = env("JWT_ALG", cfg.JWTAlg)
	cfg.JWTIssuer = env("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTAudience = env("JWT_AUDIENCE", cfg.JWTAudience)
	cfg.KeyDir = env("JWT_KEY_DIR", cfg.KeyDir)
	cfg.OTP_Length = envInt("OTP_LENGTH", cfg.OTP_Length)
	cfg.SaltRounds = envInt("SALT_ROUNDS", cfg.SaltRounds)
	cfg.SMTPHost = env("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = envInt("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = env("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = env("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPFrom = env("SMTP_FROM", cfg.SMTPFrom)
	cfg.TwilioSID = env("TWILIO_ACCOUNT_SID", cfg.TwilioSID)
	cfg.TwilioToken = env("TWILIO_AUTH_TOKEN", cfg.TwilioToken)
	cfg.TwilioFrom = env("TWILIO_FROM_NUMBER", cfg.TwilioFrom)
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	if !IsSupportedAlg(c.JWTAlg) {
		return fmt.Errorf("unsupported JWT algorithm %q", c.JWTAlg)
	}
	if c.JWTIssuer == "" || c.JWTAudience == "" {
		return errors.New("JWT issuer and audience are required")
	}
	if c.OTP_Length < 4 || c.OTP_Length > 10 {
		return fmt.Errorf("OTP length must be between 4 and 10, got %d", c.OTP_Length)
	}
	if c.OTP_TTL <= 0 || c.OTPPendingTTL <= 0 || c.UserAuthTTL <= 0 || c.OTPDeliveryTimeout <= 0 {
		return errors.New("TTLs must be positive")
	}
	if c.OTPChannel != "email" && c.OTPChannel != "sms" {
		return fmt.Errorf("unknown OTP channel %q", c.OTPChannel)
	}
	if c.SaltRounds < 4 || c.SaltRounds > 31 {
		return fmt.Errorf("salt rounds must be between 4 and 31, got %d", c.SaltRounds)
	}
	return nil
}

// IsSupportedAlg reports whether alg is in SupportedAlgs.
func IsSupportedAlg(alg string) bool {
	for _, a := range SupportedAlgs {
		if a == alg {
			return true
		}
	}
	return false
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
