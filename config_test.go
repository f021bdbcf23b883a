package identity_test

import (
	"os"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes a variable for the duration of the test, t.Setenv first so
// the original value is restored on cleanup.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	unsetEnv(t, "SERVER_ADDRESS")
	unsetEnv(t, "APP_ENV")
	unsetEnv(t, "JWT_EXPIRES_IN_HOURS")
	unsetEnv(t, "JWT_ISSUER")
	unsetEnv(t, "JWT_AUDIENCE")

	cfg, err := identity.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.ServerAddress)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 24, cfg.TokenExpiration)
	assert.Equal(t, "go-identity", cfg.Issuer)
	assert.Equal(t, "test-secret", cfg.GetSigningKey())
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_ADDRESS", ":8080")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_EXPIRES_IN_HOURS", "1")
	t.Setenv("JWT_ISSUER", "my-issuer")
	t.Setenv("JWT_AUDIENCE", "api,web")

	cfg, err := identity.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 1, cfg.GetTokenExpiration())
	assert.Equal(t, "my-issuer", cfg.GetIssuer())
	assert.Equal(t, []string{"api", "web"}, cfg.GetAudience())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	unsetEnv(t, "JWT_SECRET")

	cfg, err := identity.LoadConfig()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, identity.ErrMissingSigningSecret)
}
