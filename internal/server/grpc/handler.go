package grpc

import (
	"context"

	"github.com/sethnnections/authkeeper/internal/api"
	"github.com/sethnnections/authkeeper/internal/netx"
	"github.com/sethnnections/authkeeper/internal/server/guard"
	"github.com/sethnnections/authkeeper/internal/server/models"
	"github.com/sethnnections/authkeeper/internal/server/services"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// handler implements api.AuthServiceServer on top of the services. Protected
// methods rely on the interceptors having put a Principal in the context.
type handler struct {
	s *GRPCServer
}

func toAPIUser(u *models.User) api.User {
	return api.User(u.View())
}

func device(ctx context.Context) services.Device {
	var d services.Device
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("user-agent"); len(v) > 0 {
			d.UserAgent = v[0]
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		d.IP = netx.Host(p.Addr.String())
	}
	return d
}

func (h *handler) Register(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error) {
	u, err := h.s.auth.Register(ctx, services.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, h.s.toStatus(ctx, "Register", err)
	}
	return &api.UserResponse{User: toAPIUser(u)}, nil
}

func (h *handler) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	res, err := h.s.auth.Login(ctx, req.Email, req.Password, device(ctx))
	if err != nil {
		return nil, h.s.toStatus(ctx, "Login", err)
	}
	return &api.LoginResponse{
		User:   api.User(res.User),
		Tokens: api.Tokens{AccessToken: res.Tokens.AccessToken, RefreshToken: res.Tokens.RefreshToken},
	}, nil
}

func (h *handler) Logout(ctx context.Context, _ *api.Empty) (*api.Empty, error) {
	p, _ := guard.PrincipalFromContext(ctx)
	if err := h.s.auth.Logout(ctx, p.Token); err != nil {
		return nil, h.s.toStatus(ctx, "Logout", err)
	}
	return &api.Empty{}, nil
}

func (h *handler) RefreshTokens(ctx context.Context, req *api.RefreshTokensRequest) (*api.RefreshTokensResponse, error) {
	access, err := h.s.auth.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return nil, h.s.toStatus(ctx, "RefreshTokens", err)
	}
	return &api.RefreshTokensResponse{AccessToken: access}, nil
}

func (h *handler) ForgotPassword(ctx context.Context, req *api.ForgotPasswordRequest) (*api.Empty, error) {
	if err := h.s.auth.ForgotPassword(ctx, req.Email); err != nil {
		return nil, h.s.toStatus(ctx, "ForgotPassword", err)
	}
	return &api.Empty{}, nil
}

func (h *handler) ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.Empty, error) {
	if err := h.s.auth.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return nil, h.s.toStatus(ctx, "ResetPassword", err)
	}
	return &api.Empty{}, nil
}

func (h *handler) VerifyEmail(ctx context.Context, req *api.VerifyEmailRequest) (*api.Empty, error) {
	if err := h.s.auth.VerifyEmail(ctx, req.Token); err != nil {
		return nil, h.s.toStatus(ctx, "VerifyEmail", err)
	}
	return &api.Empty{}, nil
}

func (h *handler) Me(ctx context.Context, _ *api.Empty) (*api.UserResponse, error) {
	p, _ := guard.PrincipalFromContext(ctx)
	return h.user(ctx, "Me", p.UserID)
}

func (h *handler) GetUser(ctx context.Context, req *api.UserRequest) (*api.UserResponse, error) {
	return h.user(ctx, "GetUser", req.UserID)
}

func (h *handler) user(ctx context.Context, method, id string) (*api.UserResponse, error) {
	u, err := h.s.accounts.GetUser(ctx, id)
	if err != nil {
		return nil, h.s.toStatus(ctx, method, err)
	}
	return &api.UserResponse{User: toAPIUser(u)}, nil
}

func (h *handler) SetRole(ctx context.Context, req *api.SetRoleRequest) (*api.UserResponse, error) {
	u, err := h.s.accounts.SetRole(ctx, req.UserID, req.Role)
	if err != nil {
		return nil, h.s.toStatus(ctx, "SetRole", err)
	}
	return &api.UserResponse{User: toAPIUser(u)}, nil
}

func (h *handler) SuspendUser(ctx context.Context, req *api.UserRequest) (*api.UserResponse, error) {
	u, err := h.s.accounts.Suspend(ctx, req.UserID)
	if err != nil {
		return nil, h.s.toStatus(ctx, "SuspendUser", err)
	}
	return &api.UserResponse{User: toAPIUser(u)}, nil
}

func (h *handler) ActivateUser(ctx context.Context, req *api.UserRequest) (*api.UserResponse, error) {
	u, err := h.s.accounts.Activate(ctx, req.UserID)
	if err != nil {
		return nil, h.s.toStatus(ctx, "ActivateUser", err)
	}
	return &api.UserResponse{User: toAPIUser(u)}, nil
}
