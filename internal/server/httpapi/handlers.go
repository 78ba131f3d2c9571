package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/guard"
	"github.com/sethnnections/authkeeper/internal/server/models"
	"github.com/sethnnections/authkeeper/internal/server/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func required(name, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", common.ErrorValidation, name)
	}
	return nil
}

func respond(c echo.Context, code int, msg string, data any) error {
	return c.JSON(code, envelope{Message: msg, Data: data})
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", common.ErrorValidation)
	}
	if err := required("email", req.Email); err != nil {
		return err
	}
	if err := required("password", req.Password); err != nil {
		return err
	}

	u, err := s.auth.Register(c.Request().Context(), services.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "registered, check your email to verify the address", u.View())
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", common.ErrorValidation)
	}
	if err := required("email", req.Email); err != nil {
		return err
	}
	if err := required("password", req.Password); err != nil {
		return err
	}

	res, err := s.auth.Login(c.Request().Context(), req.Email, req.Password, services.Device{
		UserAgent: c.Request().UserAgent(),
		IP:        c.RealIP(),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "logged in", res)
}

func (s *Server) logout(c echo.Context) error {
	p, _ := guard.PrincipalFromContext(c.Request().Context())
	if err := s.auth.Logout(c.Request().Context(), p.Token); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "logged out", nil)
}

func (s *Server) refreshTokens(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", common.ErrorValidation)
	}
	if err := required("refreshToken", req.RefreshToken); err != nil {
		return err
	}

	access, err := s.auth.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "token refreshed", map[string]string{"accessToken": access})
}

func (s *Server) forgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", common.ErrorValidation)
	}
	if err := required("email", req.Email); err != nil {
		return err
	}

	if err := s.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "reset password email sent", nil)
}

func (s *Server) resetPassword(c echo.Context) error {
	token := c.QueryParam("token")
	if err := required("token", token); err != nil {
		return err
	}
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", common.ErrorValidation)
	}
	if err := required("password", req.Password); err != nil {
		return err
	}

	if err := s.auth.ResetPassword(c.Request().Context(), token, req.Password); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "password reset", nil)
}

func (s *Server) verifyEmail(c echo.Context) error {
	if err := s.auth.VerifyEmail(c.Request().Context(), c.QueryParam("token")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "email verified", nil)
}

func (s *Server) me(c echo.Context) error {
	p, _ := guard.PrincipalFromContext(c.Request().Context())
	return s.userResponse(c, p.UserID)
}

func (s *Server) getUser(c echo.Context) error {
	return s.userResponse(c, c.Param("userId"))
}

func (s *Server) userResponse(c echo.Context, id string) error {
	u, err := s.accounts.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", u.View())
}

func (s *Server) setRole(c echo.Context) error {
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", common.ErrorValidation)
	}
	if err := required("role", req.Role); err != nil {
		return err
	}

	u, err := s.accounts.SetRole(c.Request().Context(), c.Param("userId"), req.Role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "role updated", u.View())
}

func (s *Server) suspend(c echo.Context) error {
	return s.setActive(c, s.accounts.Suspend, "user suspended")
}

func (s *Server) activate(c echo.Context) error {
	return s.setActive(c, s.accounts.Activate, "user activated")
}

func (s *Server) setActive(c echo.Context, fn func(ctx context.Context, id string) (*models.User, error), msg string) error {
	u, err := fn(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, msg, u.View())
}
