package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	strong := "secure-secret-at-least-32-chars-long"

	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{"Missing port", Config{JWTSecret: strong}, true},
		{"Missing JWT secret", Config{Port: "8080"}, true},
		{"Development with short secret", Config{Port: "8080", Env: "development", JWTSecret: "short"}, false},
		{"Production with default secret", Config{Port: "8080", Env: "production", JWTSecret: defaultJWTSecret, SessionSecret: strong, DBSSLMode: "require", FrontendURL: "https://app.example.com"}, true},
		{"Production with short session secret", Config{Port: "8080", Env: "production", JWTSecret: strong, SessionSecret: "short", DBSSLMode: "require", FrontendURL: "https://app.example.com"}, true},
		{"Production with SSL disabled", Config{Port: "8080", Env: "prod", JWTSecret: strong, SessionSecret: strong, DBSSLMode: "disable", FrontendURL: "https://app.example.com"}, true},
		{"Production with DATABASE_URL", Config{Port: "8080", Env: "prod", JWTSecret: strong, SessionSecret: strong, DatabaseURL: "postgres://u:p@db/inkwell?sslmode=require", FrontendURL: "https://app.example.com"}, false},
		{"Production without frontend", Config{Port: "8080", Env: "production", JWTSecret: strong, SessionSecret: strong, DBSSLMode: "verify-full"}, true},
		{"Wildcard frontend", Config{Port: "8080", Env: "development", JWTSecret: strong, FrontendURL: "*"}, true},
		{"Wildcard among frontends", Config{Port: "8080", Env: "development", JWTSecret: strong, FrontendURL: "https://app.example.com, *"}, true},
		{"Production fully configured", Config{Port: "8080", Env: "production", JWTSecret: strong, SessionSecret: strong, DBSSLMode: "verify-full", FrontendURL: "https://app.example.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_RateLimitsEnabled(t *testing.T) {
	for _, env := range []string{"", "development", "test"} {
		assert.False(t, (&Config{Env: env}).RateLimitsEnabled(), env)
	}
	for _, env := range []string{"staging", "production", "prod"} {
		assert.True(t, (&Config{Env: env}).RateLimitsEnabled(), env)
	}
}

func TestLoadConfig_RejectsWildcardFrontend(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("FRONTEND_URL", "*")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "FRONTEND_URL")
}

func TestConfig_StateSecretFallsBackToJWTSecret(t *testing.T) {
	c := &Config{JWTSecret: "jwt-secret"}
	assert.Equal(t, "jwt-secret", c.StateSecret())

	c.SessionSecret = "session-secret"
	assert.Equal(t, "session-secret", c.StateSecret())
}

func TestConfig_GoogleEnabled(t *testing.T) {
	assert.False(t, (&Config{GoogleClientID: "id"}).GoogleEnabled())
	assert.True(t, (&Config{GoogleClientID: "id", GoogleClientSecret: "secret"}).GoogleEnabled())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("FRONTEND_URL", "http://localhost:5173/")
	t.Setenv("PORT", "9090")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "http://localhost:5173", c.FrontendURL)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "test", c.Env)
}
