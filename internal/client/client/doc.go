// Package client talks to the authkeeper gRPC endpoint on behalf of the CLI.
//
// GRPCClient keeps the current token pair in memory, attaches the access
// token to outgoing calls and, when the server answers Unauthenticated,
// exchanges the refresh token for a new access token once and retries the
// call. Status codes are mapped to the sentinel errors in errors.go so
// callers can match them with errors.Is.
package client
