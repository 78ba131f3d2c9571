package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/dbx"
	"github.com/sethnnections/authkeeper/internal/server/models"
)

// PostgresRepository implements the ledger over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanToken(row *sql.Row) (*models.Token, error) {
	t := &models.Token{}
	if err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.Kind, &t.ExpiresAt, &t.Blacklisted, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.Token) error {
	if !token.Kind.Valid() {
		return fmt.Errorf("%w: unknown token kind %q", common.ErrorValidation, token.Kind)
	}
	if token.ID == "" {
		token.ID = uuid.NewString()
	}

	query := `
		INSERT INTO tokens (id, token, user_id, kind, expires_at, blacklisted)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		token.ID, token.Token, token.UserID, string(token.Kind), token.ExpiresAt, token.Blacklisted).
		Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindOne(ctx context.Context, token string, kind models.TokenKind) (*models.Token, error) {
	query := `
		SELECT id, token, user_id, kind, expires_at, blacklisted, created_at
		FROM tokens
		WHERE token = $1 AND kind = $2 AND blacklisted = false
		LIMIT 1
	`
	return scanToken(r.db.QueryRowContext(ctx, query, token, string(kind)))
}

func (r *PostgresRepository) DeleteMany(ctx context.Context, userID string, kind models.TokenKind) (int64, error) {
	query := `
		DELETE FROM tokens
		WHERE user_id = $1 AND kind = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, string(kind))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// FindOneAndDelete removes a single row in one statement, so two concurrent
// callers with the same token cannot both get it back.
func (r *PostgresRepository) FindOneAndDelete(ctx context.Context, token string, kind models.TokenKind) (*models.Token, error) {
	query := `
		DELETE FROM tokens
		WHERE id = (
			SELECT id FROM tokens
			WHERE token = $1 AND kind = $2
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, token, user_id, kind, expires_at, blacklisted, created_at
	`
	return scanToken(r.db.QueryRowContext(ctx, query, token, string(kind)))
}

func (r *PostgresRepository) Blacklist(ctx context.Context, token string, kind models.TokenKind) error {
	query := `
		UPDATE tokens SET blacklisted = true
		WHERE token = $1 AND kind = $2
	`
	res, err := r.db.ExecContext(ctx, query, token, string(kind))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
