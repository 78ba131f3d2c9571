// Package services contains server-side business logic. AuthService owns the
// token lifecycle: registration, login, logout, access refresh, and the
// password-reset and email-verification flows.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/cryptox"
	"github.com/sethnnections/authkeeper/internal/logging"
	"github.com/sethnnections/authkeeper/internal/server/auth"
	"github.com/sethnnections/authkeeper/internal/server/models"
	"github.com/sethnnections/authkeeper/internal/server/notify"
	"github.com/sethnnections/authkeeper/internal/server/repositories/repomanager"
	"github.com/sethnnections/authkeeper/internal/server/repositories/sessions"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResult struct {
	User   models.UserView `json:"user"`
	Tokens TokenPair       `json:"tokens"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Device is recorded on the session created by a login.
type Device struct {
	UserAgent string
	IP        string
}

// AuthService depends only on the three store contracts, the issuer, the
// hasher and the dispatcher. Apart from the lazily computed dummy hash it holds
// no mutable state, so any number of requests may run through it concurrently.
type AuthService struct {
	stores   repomanager.Stores
	issuer   *auth.Issuer
	hasher   cryptox.Hasher
	notifier notify.Dispatcher
	logger   logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(st repomanager.Stores, issuer *auth.Issuer, hasher cryptox.Hasher, n notify.Dispatcher, l logging.Logger) *AuthService {
	return &AuthService{
		stores:   st,
		issuer:   issuer,
		hasher:   hasher,
		notifier: n,
		logger:   l.With("module", "auth_service"),
	}
}

// dummyCompare spends the same hashing work as a real password check so an
// unknown email cannot be told apart from a wrong password by latency.
func (s *AuthService) dummyCompare(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("authkeeper-unknown-user")
		if err != nil {
			s.logger.Error(ctx, "error computing dummy hash", "error", err)
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Compare(s.dummyHash, password)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active, unverified user with role "user" and sends the
// verification email. When only delivery fails the created user is returned
// together with an error wrapping common.ErrDeliveryFailed.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	taken, err := s.stores.Users.IsEmailTaken(ctx, email, "")
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return nil, common.ErrorEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.stores.Users.Create(ctx, &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.issueStored(ctx, models.TokenVerifyEmail, user.ID, "")
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendVerificationEmail(ctx, user.Email, token); err != nil {
		s.logger.Error(ctx, "verification email failed", "user_id", user.ID, "error", err)
		return user, fmt.Errorf("%w: %v", common.ErrDeliveryFailed, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and opens a session. An unknown email and a wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string, d Device) (*LoginResult, error) {
	user, err := s.stores.Users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.dummyCompare(ctx, password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error comparing password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, common.ErrAccountSuspended
	}

	access, err := s.issueStored(ctx, models.TokenAccess, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issueStored(ctx, models.TokenRefresh, user.ID, "")
	if err != nil {
		return nil, err
	}

	if err := s.stores.Sessions.Create(ctx, &models.Session{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		IsValid:      true,
		UserAgent:    d.UserAgent,
		IP:           d.IP,
	}); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	s.logger.Info(ctx, "login succeeded", "user_id", user.ID)
	return &LoginResult{
		User:   user.View(),
		Tokens: TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// Logout revokes the access token and marks its session invalid. The
// session's refresh token is blacklisted so it cannot mint new access tokens.
// A second logout with the same token fails with common.ErrTokenNotFound.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	row, err := s.stores.Tokens.FindOneAndDelete(ctx, accessToken, models.TokenAccess)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrTokenNotFound
		}
		return fmt.Errorf("error revoking token: %w", err)
	}

	invalid := false
	sess, err := s.stores.Sessions.FindOneAndUpdate(ctx, sessions.ByAccessToken(accessToken), sessions.Patch{IsValid: &invalid})
	switch {
	case errors.Is(err, common.ErrorNotFound):
	case err != nil:
		return fmt.Errorf("error closing session: %w", err)
	default:
		if err := s.stores.Tokens.Blacklist(ctx, sess.RefreshToken, models.TokenRefresh); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error blacklisting refresh token: %w", err)
		}
	}

	s.logger.Info(ctx, "logged out", "user_id", row.UserID)
	return nil
}

// RefreshTokens mints a new access token for an admissible refresh token.
// The refresh token itself is not rotated.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (string, error) {
	row, err := s.stores.Tokens.FindOne(ctx, refreshToken, models.TokenRefresh)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("error searching refresh token: %w", err)
	}

	payload, ok := s.issuer.Check(models.TokenRefresh, refreshToken)
	if !ok || payload.Subject != row.UserID {
		return "", common.ErrInvalidToken
	}

	user, err := s.stores.Users.FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}

	access, err := s.issueStored(ctx, models.TokenAccess, user.ID, user.Role)
	if err != nil {
		return "", err
	}

	if _, err := s.stores.Sessions.FindOneAndUpdate(ctx, sessions.ByRefreshToken(refreshToken), sessions.Patch{AccessToken: &access}); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("error updating session: %w", err)
	}

	return access, nil
}

// ForgotPassword issues a reset token and emails it. An unknown email is
// reported as common.ErrorNotFound.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.stores.Users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	token, err := s.issueStored(ctx, models.TokenResetPassword, user.ID, "")
	if err != nil {
		return err
	}

	if err := s.notifier.SendResetPasswordEmail(ctx, user.Email, token); err != nil {
		s.logger.Error(ctx, "reset email failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %v", common.ErrDeliveryFailed, err)
	}
	return nil
}

// ResetPassword sets a new password and revokes every outstanding reset
// token of the user, including the one presented.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	user, err := s.consumable(ctx, models.TokenResetPassword, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.stores.Users.Save(ctx, user); err != nil {
		return fmt.Errorf("error saving user: %w", err)
	}

	if _, err := s.stores.Tokens.DeleteMany(ctx, user.ID, models.TokenResetPassword); err != nil {
		return fmt.Errorf("error revoking reset tokens: %w", err)
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// VerifyEmail marks the user's email verified. Replaying the token fails.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", common.ErrorValidation)
	}

	user, err := s.consumable(ctx, models.TokenVerifyEmail, token)
	if err != nil {
		return err
	}

	user.IsEmailVerified = true
	if err := s.stores.Users.Save(ctx, user); err != nil {
		return fmt.Errorf("error saving user: %w", err)
	}

	if _, err := s.stores.Tokens.DeleteMany(ctx, user.ID, models.TokenVerifyEmail); err != nil {
		return fmt.Errorf("error revoking verification tokens: %w", err)
	}

	s.logger.Info(ctx, "email verified", "user_id", user.ID)
	return nil
}

// consumable resolves a single-use token to its owner. A missing ledger row,
// a bad signature and an expired token all read as
// common.ErrInvalidOrExpiredToken.
func (s *AuthService) consumable(ctx context.Context, kind models.TokenKind, token string) (*models.User, error) {
	row, err := s.stores.Tokens.FindOne(ctx, token, kind)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("error searching %s token: %w", kind, err)
	}

	payload, ok := s.issuer.Check(kind, token)
	if !ok || payload.Subject != row.UserID {
		return nil, common.ErrInvalidOrExpiredToken
	}

	user, err := s.stores.Users.FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// issueStored mints a token and records it in the ledger.
func (s *AuthService) issueStored(ctx context.Context, kind models.TokenKind, userID, role string) (string, error) {
	token, expiresAt, err := s.issuer.Mint(kind, auth.Payload{Subject: userID, Role: role})
	if err != nil {
		return "", fmt.Errorf("error minting token: %w", err)
	}

	if err := s.stores.Tokens.Create(ctx, &models.Token{
		Token:     token,
		UserID:    userID,
		Kind:      kind,
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", fmt.Errorf("error recording %s token: %w", kind, err)
	}
	return token, nil
}
