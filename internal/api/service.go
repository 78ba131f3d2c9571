package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "authkeeper.v1.AuthService"

const (
	AuthService_Register_FullMethodName       = "/" + ServiceName + "/Register"
	AuthService_Login_FullMethodName          = "/" + ServiceName + "/Login"
	AuthService_Logout_FullMethodName         = "/" + ServiceName + "/Logout"
	AuthService_RefreshTokens_FullMethodName  = "/" + ServiceName + "/RefreshTokens"
	AuthService_ForgotPassword_FullMethodName = "/" + ServiceName + "/ForgotPassword"
	AuthService_ResetPassword_FullMethodName  = "/" + ServiceName + "/ResetPassword"
	AuthService_VerifyEmail_FullMethodName    = "/" + ServiceName + "/VerifyEmail"
	AuthService_Me_FullMethodName             = "/" + ServiceName + "/Me"
	AuthService_GetUser_FullMethodName        = "/" + ServiceName + "/GetUser"
	AuthService_SetRole_FullMethodName        = "/" + ServiceName + "/SetRole"
	AuthService_SuspendUser_FullMethodName    = "/" + ServiceName + "/SuspendUser"
	AuthService_ActivateUser_FullMethodName   = "/" + ServiceName + "/ActivateUser"
)

// AuthServiceServer is implemented by the server transport.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*UserResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	RefreshTokens(context.Context, *RefreshTokensRequest) (*RefreshTokensResponse, error)
	ForgotPassword(context.Context, *ForgotPasswordRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*Empty, error)
	Me(context.Context, *Empty) (*UserResponse, error)
	GetUser(context.Context, *UserRequest) (*UserResponse, error)
	SetRole(context.Context, *SetRoleRequest) (*UserResponse, error)
	SuspendUser(context.Context, *UserRequest) (*UserResponse, error)
	ActivateUser(context.Context, *UserRequest) (*UserResponse, error)
}

func unary[Req, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AuthService_ServiceDesc is the grpc.ServiceDesc for AuthService.
// Messages are plain structs encoded with the JSON codec, so callers must
// select it with grpc.CallContentSubtype(CodecName); NewAuthServiceClient does.
// A client using the default protobuf codec cannot decode the payloads.
var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(AuthService_Register_FullMethodName, AuthServiceServer.Register)},
		{MethodName: "Login", Handler: unary(AuthService_Login_FullMethodName, AuthServiceServer.Login)},
		{MethodName: "Logout", Handler: unary(AuthService_Logout_FullMethodName, AuthServiceServer.Logout)},
		{MethodName: "RefreshTokens", Handler: unary(AuthService_RefreshTokens_FullMethodName, AuthServiceServer.RefreshTokens)},
		{MethodName: "ForgotPassword", Handler: unary(AuthService_ForgotPassword_FullMethodName, AuthServiceServer.ForgotPassword)},
		{MethodName: "ResetPassword", Handler: unary(AuthService_ResetPassword_FullMethodName, AuthServiceServer.ResetPassword)},
		{MethodName: "VerifyEmail", Handler: unary(AuthService_VerifyEmail_FullMethodName, AuthServiceServer.VerifyEmail)},
		{MethodName: "Me", Handler: unary(AuthService_Me_FullMethodName, AuthServiceServer.Me)},
		{MethodName: "GetUser", Handler: unary(AuthService_GetUser_FullMethodName, AuthServiceServer.GetUser)},
		{MethodName: "SetRole", Handler: unary(AuthService_SetRole_FullMethodName, AuthServiceServer.SetRole)},
		{MethodName: "SuspendUser", Handler: unary(AuthService_SuspendUser_FullMethodName, AuthServiceServer.SuspendUser)},
		{MethodName: "ActivateUser", Handler: unary(AuthService_ActivateUser_FullMethodName, AuthServiceServer.ActivateUser)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "authkeeper/v1/auth.json",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

// AuthServiceClient mirrors AuthServiceServer for callers.
type AuthServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*UserResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	RefreshTokens(ctx context.Context, in *RefreshTokensRequest, opts ...grpc.CallOption) (*RefreshTokensResponse, error)
	ForgotPassword(ctx context.Context, in *ForgotPasswordRequest, opts ...grpc.CallOption) (*Empty, error)
	ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error)
	VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*Empty, error)
	Me(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error)
	GetUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	SetRole(ctx context.Context, in *SetRoleRequest, opts ...grpc.CallOption) (*UserResponse, error)
	SuspendUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	ActivateUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAuthServiceClient returns a client whose calls always use the JSON codec.
func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AuthService_Register_FullMethodName, in, opts)
}

func (c *authServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, AuthService_Login_FullMethodName, in, opts)
}

func (c *authServiceClient) Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, AuthService_Logout_FullMethodName, in, opts)
}

func (c *authServiceClient) RefreshTokens(ctx context.Context, in *RefreshTokensRequest, opts ...grpc.CallOption) (*RefreshTokensResponse, error) {
	return invoke[RefreshTokensResponse](ctx, c.cc, AuthService_RefreshTokens_FullMethodName, in, opts)
}

func (c *authServiceClient) ForgotPassword(ctx context.Context, in *ForgotPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, AuthService_ForgotPassword_FullMethodName, in, opts)
}

func (c *authServiceClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, AuthService_ResetPassword_FullMethodName, in, opts)
}

func (c *authServiceClient) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, AuthService_VerifyEmail_FullMethodName, in, opts)
}

func (c *authServiceClient) Me(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AuthService_Me_FullMethodName, in, opts)
}

func (c *authServiceClient) GetUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AuthService_GetUser_FullMethodName, in, opts)
}

func (c *authServiceClient) SetRole(ctx context.Context, in *SetRoleRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AuthService_SetRole_FullMethodName, in, opts)
}

func (c *authServiceClient) SuspendUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AuthService_SuspendUser_FullMethodName, in, opts)
}

func (c *authServiceClient) ActivateUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AuthService_ActivateUser_FullMethodName, in, opts)
}
