package identity

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeAdminRequired flags an admin-only route hit without the role
	TextCodeAdminRequired = "ADMIN_REQUIRED"
	// TextCodeSelfOrAdminRequired flags access to another user's resource
	TextCodeSelfOrAdminRequired = "SELF_OR_ADMIN_REQUIRED"
)

// ErrAdminRequired denies access to admin-only resources.
var ErrAdminRequired = goerrors.New("Access denied. Admin role required.", goerrors.CategoryAuthz).
	WithTextCode(TextCodeAdminRequired).
	WithCode(goerrors.CodeForbidden)

// ErrSelfOrAdminRequired denies access to resources owned by another user.
var ErrSelfOrAdminRequired = goerrors.New("Access denied. Can only access your own data or admin required.", goerrors.CategoryAuthz).
	WithTextCode(TextCodeSelfOrAdminRequired).
	WithCode(goerrors.CodeForbidden)

// RequireAdmin allows the operation iff the user holds the admin role. Pure
// function of already resolved state, no I/O.
func RequireAdmin(user *User) error {
	if user == nil || user.Role != RoleAdmin {
		return ErrAdminRequired
	}
	return nil
}

// RequireSelfOrAdmin allows the operation iff the user is the resource owner
// or holds the admin role.
func RequireSelfOrAdmin(user *User, targetID string) error {
	if user == nil {
		return ErrSelfOrAdminRequired
	}
	if user.Role == RoleAdmin {
		return nil
	}
	if user.ID.String() == targetID {
		return nil
	}
	return ErrSelfOrAdminRequired
}
