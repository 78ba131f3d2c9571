// Package httpapi exposes the auth and user-management operations over
// HTTP/JSON with echo. Responses use the envelope {"message", "data"};
// failures carry only "message".
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sethnnections/authkeeper/internal/logging"
	"github.com/sethnnections/authkeeper/internal/server/guard"
	"github.com/sethnnections/authkeeper/internal/server/models"
	"github.com/sethnnections/authkeeper/internal/server/services"
)

type Server struct {
	address     string
	auth        *services.AuthService
	accounts    *services.AccountService
	authGuard   *guard.AuthGuard
	permissions *guard.PermissionGuard
	logger      logging.Logger
	echo        *echo.Echo
}

func NewServer(a string, l logging.Logger, as *services.AuthService, acc *services.AccountService, ag *guard.AuthGuard, pg *guard.PermissionGuard) *Server {
	s := &Server{
		address:     a,
		logger:      l.With("module", "http_server"),
		auth:        as,
		accounts:    acc,
		authGuard:   ag,
		permissions: pg,
	}
	s.echo = s.routes()
	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			s.logger.Info(c.Request().Context(), "http request",
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"duration", v.Latency,
			)
			return nil
		},
	}))

	a := e.Group("/v1/auth")
	a.POST("/register", s.register)
	a.POST("/login", s.login)
	a.POST("/logout", s.logout, s.authenticate)
	a.POST("/refresh-tokens", s.refreshTokens)
	a.POST("/forgot-password", s.forgotPassword)
	a.POST("/reset-password", s.resetPassword)
	a.GET("/verify-email", s.verifyEmail)

	u := e.Group("/v1/users", s.authenticate)
	u.GET("/me", s.me)
	u.GET("/:userId", s.getUser, s.require(true, models.RightGetUsers))
	u.POST("/:userId/role", s.setRole, s.require(false, models.RightManageUsers))
	u.POST("/:userId/suspend", s.suspend, s.require(false, models.RightManageUsers))
	u.POST("/:userId/activate", s.activate, s.require(false, models.RightManageUsers))

	return e
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down with a five second
// grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- s.echo.Start(s.address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
