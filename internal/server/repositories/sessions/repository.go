// Package sessions declares the session registry: one audit row per login,
// tracking the current access token and whether the session was ended.
package sessions

import (
	"context"

	"github.com/sethnnections/authkeeper/internal/server/models"
)

// Matcher selects a session by exactly one of its tokens.
type Matcher struct {
	AccessToken  string
	RefreshToken string
}

func ByAccessToken(token string) Matcher  { return Matcher{AccessToken: token} }
func ByRefreshToken(token string) Matcher { return Matcher{RefreshToken: token} }

// Patch lists the fields to change. Nil fields are left as they are.
type Patch struct {
	AccessToken *string
	IsValid     *bool
}

type Repository interface {
	Create(ctx context.Context, session *models.Session) error

	// FindOneAndUpdate applies p to one session matched by m and returns the
	// updated row, or common.ErrorNotFound. Concurrent updates are
	// last-write-wins.
	FindOneAndUpdate(ctx context.Context, m Matcher, p Patch) (*models.Session, error)
}

func (p Patch) apply(s *models.Session) {
	if p.AccessToken != nil {
		s.AccessToken = *p.AccessToken
	}
	if p.IsValid != nil {
		s.IsValid = *p.IsValid
	}
}

func (m Matcher) matches(s *models.Session) bool {
	if m.AccessToken != "" {
		return s.AccessToken == m.AccessToken
	}
	if m.RefreshToken != "" {
		return s.RefreshToken == m.RefreshToken
	}
	return false
}
