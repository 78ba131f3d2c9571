package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/models"
)

type MemoryRepository struct {
	mu   sync.Mutex
	rows []models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.rows = append(r.rows, *s)
	return nil
}

// FindOneAndUpdate matches the newest session first.
func (r *MemoryRepository) FindOneAndUpdate(ctx context.Context, m Matcher, p Patch) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.rows) - 1; i >= 0; i-- {
		if m.matches(&r.rows[i]) {
			p.apply(&r.rows[i])
			r.rows[i].UpdatedAt = time.Now()
			s := r.rows[i]
			return &s, nil
		}
	}
	return nil, common.ErrorNotFound
}
