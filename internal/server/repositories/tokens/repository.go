// Package tokens declares the token ledger: the record of every token still
// admissible, keyed by token string and kind.
package tokens

import (
	"context"

	"github.com/sethnnections/authkeeper/internal/server/models"
)

// Repository defines operations for recording, finding and revoking tokens.
// Lookups that match nothing return common.ErrorNotFound.
type Repository interface {
	// Create records a token row. Duplicate token strings are tolerated.
	Create(ctx context.Context, token *models.Token) error

	// FindOne returns a non-blacklisted row matching token and kind.
	FindOne(ctx context.Context, token string, kind models.TokenKind) (*models.Token, error)

	// DeleteMany removes every row of kind owned by userID and reports how
	// many were removed.
	DeleteMany(ctx context.Context, userID string, kind models.TokenKind) (int64, error)

	// FindOneAndDelete atomically removes one matching row and returns it.
	FindOneAndDelete(ctx context.Context, token string, kind models.TokenKind) (*models.Token, error)

	// Blacklist marks matching rows inadmissible without deleting them.
	Blacklist(ctx context.Context, token string, kind models.TokenKind) error
}
