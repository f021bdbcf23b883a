package jwtware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-identity/middleware/jwtware"
)

type stubClaims struct {
	subject string
	role    string
}

func (c stubClaims) Subject() string { return c.subject }
func (c stubClaims) UserID() string  { return c.subject }
func (c stubClaims) Role() string    { return c.role }

// okValidator accepts exactly one token value and rejects everything else.
func okValidator(accepted string, claims jwtware.AuthClaims) jwtware.ValidatorFunc {
	return func(raw string) (jwtware.AuthClaims, error) {
		if raw == accepted {
			return claims, nil
		}
		return nil, errors.New("token is malformed")
	}
}

func newApp(cfg jwtware.Config) *fiber.App {
	app := fiber.New()
	app.Use(jwtware.New(cfg))
	app.Get("/protected", func(c *fiber.Ctx) error {
		claims, ok := jwtware.ClaimsFromContext(c, "user")
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"subject": claims.Subject(), "role": claims.Role()})
	})
	return app
}

func testRequest(t *testing.T, app *fiber.App, header string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestJWTWare_ValidToken(t *testing.T) {
	app := newApp(jwtware.Config{
		TokenValidator: okValidator("good-token", stubClaims{subject: "12345", role: "admin"}),
	})

	resp, body := testRequest(t, app, "Bearer good-token")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "12345", body["subject"])
	assert.Equal(t, "admin", body["role"])
}

func TestJWTWare_MissingToken(t *testing.T) {
	app := newApp(jwtware.Config{
		TokenValidator: okValidator("good-token", stubClaims{subject: "12345"}),
	})

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic abc123"},
		{name: "scheme without token", header: "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := testRequest(t, app, tt.header)

			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, jwtware.ErrJWTMissingOrMalformed.Error(), body["error"])
		})
	}
}

func TestJWTWare_InvalidToken(t *testing.T) {
	app := newApp(jwtware.Config{
		TokenValidator: okValidator("good-token", stubClaims{subject: "12345"}),
	})

	resp, body := testRequest(t, app, "Bearer bad-token")

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "token is malformed", body["error"])
}

func TestJWTWare_CustomErrorHandler(t *testing.T) {
	var seen error
	app := newApp(jwtware.Config{
		TokenValidator: okValidator("good-token", stubClaims{subject: "12345"}),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			seen = err
			return c.Status(fiber.StatusTeapot).JSON(fiber.Map{"error": "custom"})
		},
	})

	resp, body := testRequest(t, app, "")

	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "custom", body["error"])
	assert.ErrorIs(t, seen, jwtware.ErrJWTMissingOrMalformed)
}

func TestJWTWare_SuccessHandler(t *testing.T) {
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		ContextKey:     "claims",
		TokenValidator: okValidator("good-token", stubClaims{subject: "12345"}),
		SuccessHandler: func(c *fiber.Ctx) error {
			claims, ok := jwtware.ClaimsFromContext(c, "claims")
			if !ok {
				return c.SendStatus(fiber.StatusInternalServerError)
			}
			c.Locals("resolved", claims.UserID())
			return c.Next()
		},
	}))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"resolved": c.Locals("resolved")})
	})

	resp, body := testRequest(t, app, "Bearer good-token")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "12345", body["resolved"])
}

func TestJWTWare_Filter(t *testing.T) {
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		TokenValidator: okValidator("good-token", stubClaims{subject: "12345"}),
		Filter: func(c *fiber.Ctx) bool {
			return c.Path() == "/public"
		},
	}))
	app.Get("/public", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"public": true})
	})

	req := httptest.NewRequest(fiber.MethodGet, "/public", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTWare_QueryLookup(t *testing.T) {
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		TokenLookup:    "query:token",
		TokenValidator: okValidator("good-token", stubClaims{subject: "12345"}),
	}))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected?token=good-token", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTWare_RequiresValidator(t *testing.T) {
	assert.Panics(t, func() {
		jwtware.New(jwtware.Config{})
	})
}
