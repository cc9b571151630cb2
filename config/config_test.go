package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAuth() *AuthConfig {
	return &AuthConfig{
		Secret:         "test_secret_key_very_long_for_testing",
		Algorithm:      AlgorithmHS256,
		AccessTokenTTL: 30 * time.Minute,
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *AuthConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(a *AuthConfig) {}},
		{name: "HS512 accepted", mutate: func(a *AuthConfig) { a.Algorithm = AlgorithmHS512 }},
		{name: "empty secret", mutate: func(a *AuthConfig) { a.Secret = "" }, wantErr: "auth.secret must be provided"},
		{name: "blank secret", mutate: func(a *AuthConfig) { a.Secret = "   " }, wantErr: "auth.secret must be provided"},
		{name: "missing algorithm", mutate: func(a *AuthConfig) { a.Algorithm = "" }, wantErr: "auth.algorithm must be provided"},
		{name: "unsupported algorithm", mutate: func(a *AuthConfig) { a.Algorithm = "none" }, wantErr: `auth.algorithm "none" is not supported`},
		{name: "zero ttl", mutate: func(a *AuthConfig) { a.AccessTokenTTL = 0 }, wantErr: "auth.accessTokenTTL must be positive"},
		{name: "negative leeway", mutate: func(a *AuthConfig) { a.Leeway = -time.Second }, wantErr: "auth.leeway must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAuth()
			tt.mutate(a)

			err := a.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateRequiresSections(t *testing.T) {
	cfg := &Config{Auth: validAuth()}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	cfg = &Config{Postgres: &postgres.DBConn{}}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth section is required")

	cfg = &Config{Postgres: &postgres.DBConn{}, Auth: validAuth()}
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Metrics = &MetricsConfig{Enabled: true}
	cfg.applyDefaults()

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, defaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Equal(t, defaultHashConcurrency, cfg.Auth.HashConcurrency)
	require.NotNil(t, cfg.PasswordStrength)
	assert.Equal(t, 8, cfg.PasswordStrength.MinLength)
	assert.Equal(t, defaultPasswordMaxLength, cfg.PasswordStrength.MaxLength)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

type testConfig struct {
	Auth *AuthConfig `json:"auth" yaml:"auth"`
}

func TestLoadWithEnv_OverridesYAMLWithEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte("auth:\n  secret: from-yaml\n  algorithm: HS256\n  accessTokenTTL: 15m\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "svc.yaml"), content, 0o600))
	t.Chdir(dir)

	cfg, err := LoadWithEnv[testConfig]("svc")
	require.NoError(t, err)
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, "from-yaml", cfg.Auth.Secret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)

	t.Setenv("AUTH_SECRET", "from-env")
	t.Setenv("AUTH_ACCESSTOKENTTL", "45m")

	cfg, err = LoadWithEnv[testConfig]("svc")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, 45*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, AlgorithmHS256, cfg.Auth.Algorithm)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[testConfig]("absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file absent.yaml not found")
}
