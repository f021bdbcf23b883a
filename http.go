package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-identity/middleware/jwtware"
	"github.com/google/uuid"
)

const (
	// ClaimsContextKey is the Locals key holding the validated token claims
	ClaimsContextKey = "identity:claims"
	// UserContextKey is the Locals key holding the resolved user record
	UserContextKey = "identity:user"
)

const (
	msgNoToken          = "Access denied. No token provided."
	msgInvalidToken     = "Invalid token."
	msgInvalidOrBlocked = "Invalid token or user is blocked."
	msgNotAuthenticated = "Not authenticated."
)

// RouteAuthenticator owns the per-request authentication decision and the
// authorization middleware layered on top of it. It is stateless between
// requests; every request re-validates the token and re-reads the directory.
type RouteAuthenticator struct {
	tokens TokenService
	repo   RepositoryManager
	Logger Logger
}

// NewHTTPAuthenticator returns a RouteAuthenticator bound to the given token
// service and directory.
func NewHTTPAuthenticator(tokens TokenService, repo RepositoryManager) *RouteAuthenticator {
	return &RouteAuthenticator{
		tokens: tokens,
		repo:   repo,
		Logger: defLogger{},
	}
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// Protected builds the authentication middleware. The decision is a small
// state machine: no token rejects immediately, a token that fails validation
// rejects, a token whose subject does not resolve to an active user rejects
// with a message deliberately indistinguishable from the blocked case.
func (a *RouteAuthenticator) Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		ContextKey: ClaimsContextKey,
		TokenValidator: jwtware.ValidatorFunc(func(raw string) (jwtware.AuthClaims, error) {
			claims, err := a.tokens.Validate(raw)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			msg := msgInvalidToken
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				msg = msgNoToken
			}
			return unauthorized(c, msg)
		},
		SuccessHandler: a.resolveUser,
	})
}

// resolveUser turns validated claims into a live user record. Unknown ids and
// blocked accounts get the same rejection so the API does not leak which
// accounts exist.
func (a *RouteAuthenticator) resolveUser(c *fiber.Ctx) error {
	claims, ok := jwtware.ClaimsFromContext(c, ClaimsContextKey)
	if !ok {
		return unauthorized(c, msgInvalidToken)
	}

	user, err := findUserByID(c, a.repo, claims.UserID())
	if err != nil || user == nil || user.IsBlocked() {
		return unauthorized(c, msgInvalidOrBlocked)
	}

	c.Locals(UserContextKey, user)
	return c.Next()
}

// RequireAdmin authorizes admin-only routes. It must run after Protected.
func (a *RouteAuthenticator) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return unauthorized(c, msgNotAuthenticated)
		}

		if err := RequireAdmin(user); err != nil {
			return forbidden(c, err)
		}

		return c.Next()
	}
}

// RequireSelfOrAdmin authorizes routes addressing a single user, identified
// by the given route parameter. It must run after Protected.
func (a *RouteAuthenticator) RequireSelfOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return unauthorized(c, msgNotAuthenticated)
		}

		if err := RequireSelfOrAdmin(user, c.Params(param)); err != nil {
			return forbidden(c, err)
		}

		return c.Next()
	}
}

// UserFromContext returns the user resolved by the Protected middleware.
func UserFromContext(c *fiber.Ctx) (*User, bool) {
	user, ok := c.Locals(UserContextKey).(*User)
	return user, ok
}

func findUserByID(c *fiber.Ctx, repo RepositoryManager, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return repo.Users().GetByID(c.UserContext(), uid)
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

func forbidden(c *fiber.Ctx, err error) error {
	msg := err.Error()
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		msg = richErr.Message
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
