package handlers

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/jmsantos/tindahan/internal/apperr"
)

// fail maps a service error to its HTTP status. Persistence and other
// unexpected failures become a generic 500 so internals never leak.
func fail(c echo.Context, l *slog.Logger, op string, err error) error {
	status := apperr.Status(err)
	if status >= 500 {
		l.Error(op+"_error", "status", status, "error", err)
		return c.JSON(status, echo.Map{"message": "internal server error"})
	}
	l.Warn(op+"_error", "status", status, "error", err)
	return c.JSON(status, echo.Map{"message": err.Error()})
}
