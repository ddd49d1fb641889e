package auth

import (
	"errors"

	"hrportal/onboarding-api/internal/codes"
	"hrportal/onboarding-api/pkg/validators"
)

// Every failure of a Manager operation matches exactly one of these with
// errors.Is. Anything else is an internal error.
var (
	ErrInvalidIdentifier = validators.ErrInvalidIdentifier
	ErrInvalidCode       = codes.ErrInvalidCode
	ErrCodeExpired       = codes.ErrCodeExpired

	ErrInvalidInput      = errors.New("invalid input")
	ErrWeakPassword      = errors.New("password too weak")
	ErrAlreadyExists     = errors.New("an account with this email or phone number already exists")
	ErrNotFound          = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrAlreadyVerified   = errors.New("account already verified")
	ErrUnverified        = errors.New("account not verified")
	ErrDormant           = errors.New("account is not active")
	ErrForbidden         = errors.New("not allowed to log in here")
	ErrSamePassword      = errors.New("new password must differ from the current one")
	ErrUnauthorized      = errors.New("unauthorized")
	// ErrDispatchFailed never undoes what the operation already committed, the
	// caller can ask for a new code
	ErrDispatchFailed = errors.New("failed to deliver the code")
)
