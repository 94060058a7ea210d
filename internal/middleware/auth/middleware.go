// Package auth carries the bearer-token gate. Possession of a valid
// token is the sole proof of authentication; there is no server-side
// revocation list, so invalidation happens by expiry or secret
// rotation.
package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jmsantos/tindahan/internal/apperr"
	"github.com/jmsantos/tindahan/internal/logging"
	"github.com/jmsantos/tindahan/internal/models"
	"github.com/jmsantos/tindahan/internal/service"
	"github.com/jmsantos/tindahan/internal/tokens"
)

const identityKey = "identity"

type Middleware struct {
	Guard *service.Guard
}

func New(guard *service.Guard) *Middleware {
	return &Middleware{Guard: guard}
}

func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "auth.require_login")

		raw := bearerToken(c)
		if raw == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided, access denied"})
		}

		identity, err := m.Guard.VerifyToken(ctx, raw)
		if err != nil {
			status := apperr.Status(err)
			if status >= 500 {
				l.Error("verify_token_error", "status", status, "error", err)
				return c.JSON(status, echo.Map{"message": "internal server error"})
			}
			l.Warn("verify_token_rejected", "status", status, "error", err)
			return c.JSON(status, echo.Map{"message": err.Error()})
		}

		c.Set(identityKey, identity)
		return next(c)
	}
}

// RequireAdmin must run after RequireLogin. Moderators pass too.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := Identity(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided, access denied"})
		}
		if err := m.Guard.RequireRole(identity, models.RoleAdmin, models.RoleModerator); err != nil {
			return c.JSON(apperr.Status(err), echo.Map{"message": "Access denied. Admin privileges required."})
		}
		return next(c)
	}
}

func Identity(c echo.Context) (tokens.Identity, bool) {
	identity, ok := c.Get(identityKey).(tokens.Identity)
	return identity, ok
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// SetIdentity exists for handler tests that bypass the middleware.
func SetIdentity(c echo.Context, identity tokens.Identity) {
	c.Set(identityKey, identity)
}
