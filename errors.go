package identity

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCreds is returned for unknown emails and wrong passwords alike
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeAccountBlocked is returned when a blocked account attempts to log in
	TextCodeAccountBlocked = "ACCOUNT_BLOCKED"
	// TextCodeEmailExists flags duplicate registrations
	TextCodeEmailExists = "EMAIL_EXISTS"
	// TextCodeTokenExpired flags tokens past their exp claim
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed flags tokens with bad structure or signature
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeEmptyPassword flags hashing attempts with no input
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
	// TextCodeUserNotFound flags lookups for ids that do not resolve
	TextCodeUserNotFound = "USER_NOT_FOUND"
	// TextCodeMissingSecret flags a boot attempt without a signing secret
	TextCodeMissingSecret = "MISSING_SIGNING_SECRET"
)

// ErrMismatchedHashAndPassword is returned when the submitted password does
// not verify against the stored hash. Unknown identifiers surface the same
// error so callers cannot probe which accounts exist.
var ErrMismatchedHashAndPassword = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountBlocked is returned when a blocked account attempts to authenticate.
var ErrAccountBlocked = goerrors.New("account is blocked", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountBlocked).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserExists flags a registration against an email already in the directory.
var ErrUserExists = goerrors.New("user already exists with this email", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is returned when an id does not resolve to a user record.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTokenExpired is returned when a presented token is past its expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for structurally invalid or badly signed tokens.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingSigningSecret aborts boot, this is an operator error not a client error
var ErrMissingSigningSecret = goerrors.New("signing secret is not configured", goerrors.CategoryInternal).
	WithTextCode(TextCodeMissingSecret).
	WithCode(goerrors.CodeInternal)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueViolation matches the driver-specific unique constraint failures the
// directory surfaces when two writers race on the same email.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func statusAuthError(status UserStatus) error {
	if status == UserStatusBlocked {
		return ErrAccountBlocked
	}
	return nil
}
