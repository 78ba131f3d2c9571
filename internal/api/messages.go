// Package api defines the authkeeper.v1.AuthService gRPC contract: plain Go
// messages carried by a JSON codec, the service descriptor and a client stub.
package api

import "time"

type Empty struct{}

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	IsActive        bool      `json:"isActive"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

type RefreshTokensRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokensResponse struct {
	AccessToken string `json:"accessToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type UserRequest struct {
	UserID string `json:"userId"`
}

type SetRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type UserResponse struct {
	User User `json:"user"`
}
