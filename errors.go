package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrInvalidCredentials is returned for a failed login regardless of whether
// the email is unknown or the password did not match. Callers must not be
// able to tell the two cases apart.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrIdentityExists is returned when registering an email that is already
// taken, including case variants of it.
var ErrIdentityExists = errors.New("user already exists", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("IDENTITY_EXISTS")

// ErrTokenInvalid covers every token verification failure: bad signature,
// malformed structure, unexpected algorithm, or expiry. A single error kind
// keeps the guard from acting as an oracle.
var ErrTokenInvalid = errors.New("invalid or expired token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_INVALID")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrMismatchedHashAndPassword signals a bcrypt comparison failure
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("PASSWORD_MISMATCH")

// ErrNoEmptyString rejects empty required input before it reaches bcrypt
var ErrNoEmptyString = errors.New("value should not be an empty string", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode("EMPTY_VALUE")

// ErrSigningKeyTooShort is a fatal configuration error: HS256 wants a secret
// at least as long as its output.
var ErrSigningKeyTooShort = errors.New("signing key must be at least 32 bytes", errors.CategoryInternal).
	WithCode(errors.CodeInternal).
	WithTextCode("SIGNING_KEY_TOO_SHORT")

// IsDuplicateEmail reports whether err is a unique constraint violation on
// the users email column, as surfaced by the supported drivers.
func IsDuplicateEmail(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == ErrIdentityExists.TextCode {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// IsInvalidCredentialsError will check for failed credential verification
func IsInvalidCredentialsError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == ErrInvalidCredentials.TextCode ||
			richErr.TextCode == ErrMismatchedHashAndPassword.TextCode
	}

	return false
}

// IsTokenInvalidError will check for token verification failures
func IsTokenInvalidError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == ErrTokenInvalid.TextCode {
		return true
	}

	return strings.Contains(err.Error(), "token is expired") ||
		strings.Contains(err.Error(), "token is malformed")
}
