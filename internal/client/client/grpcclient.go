package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/sethnnections/authkeeper/internal/api"
	"github.com/sethnnections/authkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// methods that never carry a token and are never retried after a refresh
var public = map[string]bool{
	api.AuthService_Register_FullMethodName:       true,
	api.AuthService_Login_FullMethodName:          true,
	api.AuthService_RefreshTokens_FullMethodName:  true,
	api.AuthService_ForgotPassword_FullMethodName: true,
	api.AuthService_ResetPassword_FullMethodName:  true,
	api.AuthService_VerifyEmail_FullMethodName:    true,
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.AuthServiceClient
	health      healthpb.HealthClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if public[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, refresh := s.tokens()
	if access != "" {
		ctx = withAccessToken(ctx, access)
	}
	err := invoker(ctx, method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	if status.Code(err) != codes.Unauthenticated || refresh == "" {
		return err
	}

	resp, rerr := s.client.RefreshTokens(ctx, &api.RefreshTokensRequest{RefreshToken: refresh})
	if rerr != nil {
		return err
	}
	s.setTokens(resp.AccessToken, refresh)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewAuthKeeperClient connects to endpointURL without TLS. Extra options are
// appended after the defaults.
func NewAuthKeeperClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewAuthServiceClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) LoggedIn() bool {
	access, _ := s.tokens()
	return access != ""
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: api.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, name, email, password string) (*api.User, error) {
	resp, err := s.client.Register(ctx, &api.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.User, nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*api.User, error) {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setTokens(resp.Tokens.AccessToken, resp.Tokens.RefreshToken)

	return &resp.User, nil
}

// Logout revokes the session on the server and forgets the local tokens even
// when the server call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	_, err := s.client.Logout(ctx, &api.Empty{})
	s.setTokens("", "")
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Refresh(ctx context.Context) error {
	_, refresh := s.tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}
	resp, err := s.client.RefreshTokens(ctx, &api.RefreshTokensRequest{RefreshToken: refresh})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, refresh)
	return nil
}

func (s *GRPCClient) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.client.ForgotPassword(ctx, &api.ForgotPasswordRequest{Email: email})
	return s.mapError(err)
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token, password string) error {
	_, err := s.client.ResetPassword(ctx, &api.ResetPasswordRequest{Token: token, Password: password})
	return s.mapError(err)
}

func (s *GRPCClient) VerifyEmail(ctx context.Context, token string) error {
	_, err := s.client.VerifyEmail(ctx, &api.VerifyEmailRequest{Token: token})
	return s.mapError(err)
}

func (s *GRPCClient) user(resp *api.UserResponse, err error) (*api.User, error) {
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.User, nil
}

func (s *GRPCClient) Me(ctx context.Context) (*api.User, error) {
	return s.user(s.client.Me(ctx, &api.Empty{}))
}

func (s *GRPCClient) GetUser(ctx context.Context, userID string) (*api.User, error) {
	return s.user(s.client.GetUser(ctx, &api.UserRequest{UserID: userID}))
}

func (s *GRPCClient) SetRole(ctx context.Context, userID, role string) (*api.User, error) {
	return s.user(s.client.SetRole(ctx, &api.SetRoleRequest{UserID: userID, Role: role}))
}

func (s *GRPCClient) SuspendUser(ctx context.Context, userID string) (*api.User, error) {
	return s.user(s.client.SuspendUser(ctx, &api.UserRequest{UserID: userID}))
}

func (s *GRPCClient) ActivateUser(ctx context.Context, userID string) (*api.User, error) {
	return s.user(s.client.ActivateUser(ctx, &api.UserRequest{UserID: userID}))
}

// mapError keeps the server's message next to the sentinel so the CLI can
// show why a request failed.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		if st.Message() == common.ErrDeliveryFailed.Error() {
			return fmt.Errorf("%w: %s", ErrRejected, st.Message())
		}
		return ErrUnavailable
	case codes.InvalidArgument, codes.AlreadyExists, codes.NotFound:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
