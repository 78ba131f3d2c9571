package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/sethnnections/authkeeper/internal/api"
	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/guard"
	"github.com/sethnnections/authkeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// rule describes who may call a protected method. target extracts the user
// id the request acts on; a caller acting on itself skips the rights check.
type rule struct {
	rights []string
	target func(req any) string
}

func requestUserID(req any) string {
	if r, ok := req.(*api.UserRequest); ok {
		return r.UserID
	}
	return ""
}

var protected = map[string]rule{
	api.AuthService_Logout_FullMethodName:       {},
	api.AuthService_Me_FullMethodName:           {},
	api.AuthService_GetUser_FullMethodName:      {rights: []string{models.RightGetUsers}, target: requestUserID},
	api.AuthService_SetRole_FullMethodName:      {rights: []string{models.RightManageUsers}},
	api.AuthService_SuspendUser_FullMethodName:  {rights: []string{models.RightManageUsers}},
	api.AuthService_ActivateUser_FullMethodName: {rights: []string{models.RightManageUsers}},
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "grpc request",
		"method", info.FullMethod,
		"duration", time.Since(start),
		"code", status.Code(err).String(),
	)
	return resp, err
}

// bearerFromMetadata reads "authorization: Bearer <t>" and falls back to the
// raw "access_token" key.
func bearerFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(common.AuthorizationHeaderName); len(v) > 0 {
		if token := guard.BearerToken(v[0]); token != "" {
			return token
		}
	}
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := protected[info.FullMethod]; !ok {
		return handler(ctx, req)
	}

	token := bearerFromMetadata(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	p, err := s.authGuard.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
		}
		s.logger.Error(ctx, "authentication failed", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return handler(guard.WithPrincipal(ctx, p), req)
}

func (s *GRPCServer) permissionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	r, ok := protected[info.FullMethod]
	if !ok {
		return handler(ctx, req)
	}

	p, ok := guard.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}

	var target string
	if r.target != nil {
		target = r.target(req)
	}
	if err := s.permissions.Check(p, r.rights, target); err != nil {
		return nil, status.Error(codes.PermissionDenied, err.Error())
	}

	return handler(ctx, req)
}
