package tokens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/models"
)

// MemoryRepository keeps ledger rows in process memory. Every method holds
// the lock for its whole body, which makes FindOneAndDelete atomic.
type MemoryRepository struct {
	mu   sync.Mutex
	rows []models.Token
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, token *models.Token) error {
	if !token.Kind.Valid() {
		return fmt.Errorf("%w: unknown token kind %q", common.ErrorValidation, token.Kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	token.CreatedAt = time.Now()
	r.rows = append(r.rows, *token)
	return nil
}

func (r *MemoryRepository) FindOne(ctx context.Context, token string, kind models.TokenKind) (*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.Token == token && row.Kind == kind && !row.Blacklisted {
			found := row
			return &found, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) DeleteMany(ctx context.Context, userID string, kind models.TokenKind) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.rows[:0]
	var n int64
	for _, row := range r.rows {
		if row.UserID == userID && row.Kind == kind {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return n, nil
}

func (r *MemoryRepository) FindOneAndDelete(ctx context.Context, token string, kind models.TokenKind) (*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, row := range r.rows {
		if row.Token == token && row.Kind == kind {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return &row, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Blacklist(ctx context.Context, token string, kind models.TokenKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for i := range r.rows {
		if r.rows[i].Token == token && r.rows[i].Kind == kind {
			r.rows[i].Blacklisted = true
			found = true
		}
	}
	if !found {
		return common.ErrorNotFound
	}
	return nil
}
