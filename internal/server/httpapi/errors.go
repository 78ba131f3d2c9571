package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sethnnections/authkeeper/internal/common"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{common.ErrorValidation, http.StatusBadRequest},
	{common.ErrInvalidCredentials, http.StatusUnauthorized},
	{common.ErrAccountSuspended, http.StatusForbidden},
	{common.ErrorEmailTaken, http.StatusBadRequest},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrorUnauthorized, http.StatusUnauthorized},
	{common.ErrInvalidOrExpiredToken, http.StatusBadRequest},
	{common.ErrTokenNotFound, http.StatusNotFound},
	{common.ErrorNotFound, http.StatusNotFound},
	{common.ErrRoleNotFound, http.StatusNotFound},
	{common.ErrorForbidden, http.StatusForbidden},
	{common.ErrDeliveryFailed, http.StatusBadGateway},
}

type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// errorHandler writes {"message"} with the status of the error kind.
// Unknown errors are logged and reported as 500.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := http.StatusInternalServerError, common.ErrorInternal.Error()

	var he *echo.HTTPError
	matched := false
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			code, msg, matched = e.status, e.err.Error(), true
			// validation errors name the offending field
			if e.err == common.ErrorValidation {
				msg = err.Error()
			}
			break
		}
	}
	if !matched {
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(he.Code)
			}
		} else {
			s.logger.Error(c.Request().Context(), "request failed",
				"method", c.Request().Method, "path", c.Path(), "error", err)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, envelope{Message: msg})
	}
	if werr != nil {
		s.logger.Error(c.Request().Context(), "error response failed", "error", werr)
	}
}
