// Package jwtware provides bearer-token middleware for fiber. It mirrors the
// small slice of the auth surface it needs (TokenValidator, AuthClaims) to
// avoid an import cycle with the root package.
package jwtware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup = "header:" + fiber.HeaderAuthorization

	// ErrJWTMissingOrMalformed is returned when no usable token is present
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// TokenValidator validates a raw token and returns structured claims.
// This mirrors the TokenService.Validate method from the identity package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// ValidatorFunc adapts a plain function to the TokenValidator interface.
type ValidatorFunc func(tokenString string) (AuthClaims, error)

func (f ValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	return f(tokenString)
}

// AuthClaims is the claim surface the middleware exposes to handlers.
// This mirrors the AuthClaims interface from the identity package.
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
}

type Config struct {
	// Filter defines a function to skip the middleware
	Filter func(*fiber.Ctx) bool

	// SuccessHandler runs after the token has been validated and stored
	SuccessHandler fiber.Handler

	// ErrorHandler runs when extraction or validation fails
	ErrorHandler fiber.ErrorHandler

	// ContextKey is the Locals key the validated claims are stored under
	ContextKey string

	// TokenLookup is a "<source>:<name>" string, e.g. "header:Authorization"
	TokenLookup string

	// AuthScheme is stripped from header values, defaults to "Bearer"
	AuthScheme string

	// TokenValidator is required for token validation
	TokenValidator TokenValidator
}

// New returns a fiber handler that extracts and validates a bearer token on
// every request. No session state is kept, the decision is re-made each time.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := extractToken(c, cfg)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.SuccessHandler != nil {
			return cfg.SuccessHandler(c)
		}

		return c.Next()
	}
}

// ClaimsFromContext returns the claims stored by the middleware, if any.
func ClaimsFromContext(c *fiber.Ctx, contextKey string) (AuthClaims, bool) {
	claims, ok := c.Locals(contextKey).(AuthClaims)
	return claims, ok
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("jwtware: TokenValidator is required")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
	}

	return cfg
}

func extractToken(c *fiber.Ctx, cfg Config) (string, error) {
	parts := strings.SplitN(cfg.TokenLookup, ":", 2)
	if len(parts) != 2 {
		return "", ErrJWTMissingOrMalformed
	}

	source, name := parts[0], parts[1]

	var raw string
	switch source {
	case "header":
		raw = c.Get(name)
		if cfg.AuthScheme != "" {
			prefix := cfg.AuthScheme + " "
			if !strings.HasPrefix(raw, prefix) {
				return "", ErrJWTMissingOrMalformed
			}
			raw = strings.TrimPrefix(raw, prefix)
		}
	case "query":
		raw = c.Query(name)
	case "cookie":
		raw = c.Cookies(name)
	default:
		return "", ErrJWTMissingOrMalformed
	}

	if raw == "" {
		return "", ErrJWTMissingOrMalformed
	}

	return raw, nil
}
