package common

// AccessTokenHeaderName is the gRPC metadata key the client uses to carry
// the access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName carries "Bearer <token>" on HTTP requests and is
// accepted as gRPC metadata too.
const AuthorizationHeaderName = "authorization"

// BearerPrefix is the scheme prefix expected in the authorization header.
const BearerPrefix = "Bearer "
