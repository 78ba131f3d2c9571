package client

import (
	"context"

	"github.com/sethnnections/authkeeper/internal/api"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	LoggedIn() bool

	Register(ctx context.Context, name, email, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.User, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	VerifyEmail(ctx context.Context, token string) error

	Me(ctx context.Context) (*api.User, error)
	GetUser(ctx context.Context, userID string) (*api.User, error)
	SetRole(ctx context.Context, userID, role string) (*api.User, error)
	SuspendUser(ctx context.Context, userID string) (*api.User, error)
	ActivateUser(ctx context.Context, userID string) (*api.User, error)
}
