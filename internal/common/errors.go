// Package common defines shared constants and sentinel errors used across
// the server, its transports and the client. Callers should use errors.Is to
// match these values; services wrap them with fmt.Errorf("%w: ...") to add
// detail without losing the kind.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrorEmailTaken = errors.New("email already taken")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("please authenticate")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Credential errors. The login error never reveals whether the email exists.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountSuspended   = errors.New("account is suspended")

	// Token errors.
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrTokenNotFound         = errors.New("token not found")

	ErrRoleNotFound   = errors.New("role not found")
	ErrDeliveryFailed = errors.New("notification delivery failed")
)
