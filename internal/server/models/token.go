package models

import "time"

// TokenKind separates ledger rows by purpose. A token recorded under one kind
// is never admissible as another.
type TokenKind string

const (
	TokenAccess        TokenKind = "access"
	TokenRefresh       TokenKind = "refresh"
	TokenVerifyEmail   TokenKind = "verifyEmail"
	TokenResetPassword TokenKind = "resetPassword"
)

func (k TokenKind) Valid() bool {
	switch k {
	case TokenAccess, TokenRefresh, TokenVerifyEmail, TokenResetPassword:
		return true
	}
	return false
}

// Token is one ledger row. Presence of a non-blacklisted row is what makes a
// token admissible; the signature alone is not enough.
type Token struct {
	ID          string
	Token       string
	UserID      string
	Kind        TokenKind
	ExpiresAt   time.Time
	Blacklisted bool
	CreatedAt   time.Time
}
