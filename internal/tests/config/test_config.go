package config

import (
	"testing"

	"github.com/temptedwithouta/eazy-career-backend/internal/config"
)

const (
	TestIssuer   = "eazy-career-test"
	TestAudience = "eazy-career-test-web"
)

// LoadTestConfig builds a configuration for end-to-end tests. Keys live in
// a per-test temporary directory and bcrypt runs at its cheapest cost.
func LoadTestConfig(t *testing.T, overrides ...func(*config.Config)) *config.Config {
	t.Helper()

	cfg, err := config.FromFile(&config.ConfigFile{
		App:      config.AppConfig{GinMode: "test", LogLevel: "error"},
		JWT:      config.JWTConfig{Alg: "ES256", Issuer: TestIssuer, Audience: TestAudience, KeyDir: t.TempDir()},
		Password: config.PasswordConfig{SaltRounds: 4},
		RateLimit: config.RateLimitConfig{
			Auth: 1000,
			User: 1000,
		},
	})
	if err != nil {
		t.Fatalf("Failed to build test configuration: %v", err)
	}

	for _, o := range overrides {
		o(cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Invalid test configuration: %v", err)
	}
	return cfg
}
