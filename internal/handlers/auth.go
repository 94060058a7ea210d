package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jmsantos/tindahan/internal/apperr"
	"github.com/jmsantos/tindahan/internal/events"
	"github.com/jmsantos/tindahan/internal/logging"
	"github.com/jmsantos/tindahan/internal/models"
	"github.com/jmsantos/tindahan/internal/service"
)

// AuthHandler is the single authoritative registration/login surface.
// It is mounted under both /api/auth and /api/users so older clients
// keep working, but there is one code path.
type AuthHandler struct {
	Guard    *service.Guard
	Producer *events.Producer
	Validate *validator.Validate
}

func NewAuthHandler(guard *service.Guard, producer *events.Producer) *AuthHandler {
	return &AuthHandler{
		Guard:    guard,
		Producer: producer,
		Validate: validator.New(),
	}
}

type registerRequest struct {
	Name     string         `json:"name"     validate:"required,min=2,max=50"`
	Email    string         `json:"email"    validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Phone    string         `json:"phone"`
	Address  models.Address `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, l, "register", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}
	if err := h.Validate.Struct(req); err != nil {
		return fail(c, l, "register", validationError(err))
	}

	token, user, err := h.Guard.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return fail(c, l, "register", err)
	}

	h.publish(c, events.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"token":   token,
		"user":    publicUser(user),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, l, "login", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}
	if err := h.Validate.Struct(req); err != nil {
		return fail(c, l, "login", validationError(err))
	}

	token, user, err := h.Guard.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, l, "login", err)
	}

	h.publish(c, events.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   token,
		"user":    publicUser(user),
	})
}

func (h *AuthHandler) publish(c echo.Context, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", topic, "error", err)
	}
}

// publicUser is the redacted account view returned from auth endpoints.
// The full model already hides credential and security fields from
// JSON; this narrows the rest.
func publicUser(u *models.User) echo.Map {
	view := echo.Map{
		"id":     u.ID,
		"name":   u.Name,
		"email":  u.Email,
		"role":   u.Role,
		"status": u.Status,
	}
	if u.LastLogin != nil {
		view["last_login"] = u.LastLogin
	}
	return view
}

func validationError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fe.Field()
		}
		return fmt.Errorf("invalid value for %s: %w", strings.Join(fields, ", "), apperr.ErrValidation)
	}
	return fmt.Errorf("invalid request: %w", apperr.ErrValidation)
}
