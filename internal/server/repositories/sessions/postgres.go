package sessions

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO sessions (id, user_id, access_token, refresh_token, is_valid, user_agent, ip)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.IsValid, s.UserAgent, s.IP).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindOneAndUpdate(ctx context.Context, m Matcher, p Patch) (*models.Session, error) {
	column, value := "", ""
	switch {
	case m.AccessToken != "":
		column, value = "access_token", m.AccessToken
	case m.RefreshToken != "":
		column, value = "refresh_token", m.RefreshToken
	default:
		return nil, common.ErrorNotFound
	}

	// column comes from the fixed set above
	query :=
		`UPDATE sessions
		 SET access_token = COALESCE($1, access_token),
		     is_valid = COALESCE($2, is_valid),
		     updated_at = now()
		 WHERE id = (
		   SELECT id FROM sessions WHERE ` + column + ` = $3
		   ORDER BY created_at DESC
		   LIMIT 1
		 )
		 RETURNING id, user_id, access_token, refresh_token, is_valid, user_agent, ip, created_at, updated_at
		 `

	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, p.AccessToken, p.IsValid, value).
		Scan(&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.IsValid, &s.UserAgent, &s.IP, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
