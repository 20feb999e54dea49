package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/joinit/events-api/internal/dto"
	"github.com/joinit/events-api/internal/identity"
	"github.com/labstack/echo/v4"
)

const userContextKey = "identity.user"

// Authenticator is satisfied by *identity.Provider.
type Authenticator interface {
	Authenticate(token string) (identity.User, error)
}

// Auth resolves the bearer token into an identity.User. Requests without an
// Authorization header continue anonymously; a malformed or rejected token is a 401.
func Auth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return unauthorized("Invalid Authorization header.")
			}

			user, err := a.Authenticate(strings.TrimSpace(token))
			if err != nil {
				if errors.Is(err, identity.ErrTokenExpired) {
					return unauthorized("Token has expired.")
				}
				return unauthorized("Invalid token.")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated caller, or the zero User for anonymous requests.
func CurrentUser(c echo.Context) identity.User {
	u, _ := c.Get(userContextKey).(identity.User)
	return u
}

// SetUser attaches u to the request context.
func SetUser(c echo.Context, u identity.User) {
	c.Set(userContextKey, u)
}

func unauthorized(detail string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, dto.ErrorResponse{Detail: detail, Code: "authentication_failed"})
}
