package users

import (
	"context"

	"github.com/sethnnections/authkeeper/internal/server/models"
)

// Repository is the credential store. Lookups that match nothing return
// common.ErrorNotFound; inserting a duplicate email returns
// common.ErrorEmailTaken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	IsEmailTaken(ctx context.Context, email string, excludeID string) (bool, error)
	SetRole(ctx context.Context, id string, role string) error
}
