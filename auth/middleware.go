package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Middleware rejects requests a does not authenticate with 401 and a
// {"error": ...} body. Authenticated identities are stored on the request
// context. Authenticator errors surface as 500 through echo's error handler.
func Middleware(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res, err := a.Authenticate(req.Context(), NewRequest(req.Header))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}
			if !res.Authenticated {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": message(res.Err)})
			}
			c.SetRequest(req.WithContext(WithIdentity(req.Context(), res.Identity)))
			return next(c)
		}
	}
}

func message(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "Missing credentials"
	case errors.Is(err, ErrTokenExpired):
		return "Credentials expired"
	default:
		return "Invalid credentials"
	}
}
