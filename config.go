package identity

import (
	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// AppConfig is the process-wide configuration, loaded once at startup and
// read-only afterwards. It satisfies the Config interface consumed by the
// authenticator and token service.
type AppConfig struct {
	ServerAddress   string   `env:"SERVER_ADDRESS" envDefault:":3000"`
	Environment     string   `env:"APP_ENV" envDefault:"production"`
	DatabaseDSN     string   `env:"DATABASE_URL" envDefault:"file:database.sqlite?cache=shared"`
	SigningKey      string   `env:"JWT_SECRET"`
	TokenExpiration int      `env:"JWT_EXPIRES_IN_HOURS" envDefault:"24"`
	Issuer          string   `env:"JWT_ISSUER" envDefault:"go-identity"`
	Audience        []string `env:"JWT_AUDIENCE" envSeparator:","`
}

var _ Config = (*AppConfig)(nil)

// LoadConfig parses configuration from the environment and validates it.
// A missing signing secret is fatal here, not at the first login.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse environment configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the invariants boot depends on
func (c *AppConfig) Validate() error {
	if c.SigningKey == "" {
		return ErrMissingSigningSecret
	}
	return nil
}

// IsDevelopment reports whether error responses may carry internal detail
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *AppConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *AppConfig) GetIssuer() string {
	return c.Issuer
}

func (c *AppConfig) GetAudience() []string {
	return c.Audience
}
