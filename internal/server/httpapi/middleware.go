package httpapi

import (
	"github.com/labstack/echo/v4"
	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/guard"
)

// authenticate resolves the bearer token into a Principal stored on the
// request context.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := guard.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			return common.ErrorUnauthorized
		}

		ctx := c.Request().Context()
		p, err := s.authGuard.Authenticate(ctx, token)
		if err != nil {
			return err
		}

		c.SetRequest(c.Request().WithContext(guard.WithPrincipal(ctx, p)))
		return next(c)
	}
}

// require checks rights after authenticate. With self set, a caller acting
// on its own :userId passes without the rights.
func (s *Server) require(self bool, rights ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := guard.PrincipalFromContext(c.Request().Context())
			if !ok {
				return common.ErrorUnauthorized
			}

			var target string
			if self {
				target = c.Param("userId")
			}
			if err := s.permissions.Check(p, rights, target); err != nil {
				return err
			}
			return next(c)
		}
	}
}
