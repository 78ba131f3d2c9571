// Package guard decides who is calling and what they may do. AuthGuard turns
// a bearer token into a Principal; PermissionGuard checks a Principal against
// the role table.
package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/auth"
	"github.com/sethnnections/authkeeper/internal/server/models"
	"github.com/sethnnections/authkeeper/internal/server/repositories/tokens"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   string
	Token  string
}

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" value.
// The scheme is matched case-insensitively.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(common.BearerPrefix):])
}

type AuthGuard struct {
	issuer *auth.Issuer
	tokens tokens.Repository
}

func NewAuthGuard(issuer *auth.Issuer, t tokens.Repository) *AuthGuard {
	return &AuthGuard{issuer: issuer, tokens: t}
}

// Authenticate admits a token only if it verifies against the access secret
// and still has a non-blacklisted access row in the ledger owned by its
// subject. A revoked token is rejected even while its signature is valid.
// Store failures are returned wrapped; every other rejection is
// common.ErrorUnauthorized.
func (g *AuthGuard) Authenticate(ctx context.Context, bearer string) (Principal, error) {
	if bearer == "" {
		return Principal{}, common.ErrorUnauthorized
	}

	payload, ok := g.issuer.Check(models.TokenAccess, bearer)
	if !ok {
		return Principal{}, common.ErrorUnauthorized
	}

	row, err := g.tokens.FindOne(ctx, bearer, models.TokenAccess)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Principal{}, common.ErrorUnauthorized
		}
		return Principal{}, fmt.Errorf("error searching access token: %w", err)
	}
	if row.UserID != payload.Subject {
		return Principal{}, common.ErrorUnauthorized
	}

	return Principal{UserID: payload.Subject, Role: payload.Role, Token: bearer}, nil
}
