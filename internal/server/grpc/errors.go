package grpc

import (
	"context"
	"errors"

	"github.com/sethnnections/authkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrorValidation, codes.InvalidArgument},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrAccountSuspended, codes.PermissionDenied},
	{common.ErrorEmailTaken, codes.AlreadyExists},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrInvalidOrExpiredToken, codes.InvalidArgument},
	{common.ErrTokenNotFound, codes.NotFound},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrRoleNotFound, codes.NotFound},
	{common.ErrorForbidden, codes.PermissionDenied},
	{common.ErrDeliveryFailed, codes.Unavailable},
}

// toStatus maps a service error to a gRPC status. Known kinds keep their
// sentinel message; anything else is logged and reported as internal.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			if e.err == common.ErrorValidation {
				return status.Error(e.code, err.Error())
			}
			return status.Error(e.code, e.err.Error())
		}
	}
	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
