package grpc

import (
	"context"
	"net"

	"github.com/sethnnections/authkeeper/internal/api"
	"github.com/sethnnections/authkeeper/internal/logging"
	"github.com/sethnnections/authkeeper/internal/server/guard"
	"github.com/sethnnections/authkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	address     string
	auth        *services.AuthService
	accounts    *services.AccountService
	authGuard   *guard.AuthGuard
	permissions *guard.PermissionGuard
	logger      logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as *services.AuthService, acc *services.AccountService, ag *guard.AuthGuard, pg *guard.PermissionGuard) *GRPCServer {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		auth:        as,
		accounts:    acc,
		authGuard:   ag,
		permissions: pg,
	}
}

// newServer builds the gRPC server with the interceptor chain, the auth
// service and the standard health service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.loggingInterceptor,
		s.authInterceptor,
		s.permissionInterceptor,
	))

	api.RegisterAuthServiceServer(srv, &handler{s})

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
