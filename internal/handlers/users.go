package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jmsantos/tindahan/internal/apperr"
	"github.com/jmsantos/tindahan/internal/logging"
	authmw "github.com/jmsantos/tindahan/internal/middleware/auth"
	"github.com/jmsantos/tindahan/internal/models"
	"github.com/jmsantos/tindahan/internal/service"
)

type UserHandler struct {
	Users *service.UserService
	Guard *service.Guard
}

func NewUserHandler(users *service.UserService, guard *service.Guard) *UserHandler {
	return &UserHandler{Users: users, Guard: guard}
}

func (h *UserHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.profile")

	identity, ok := authmw.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided, access denied"})
	}

	user, err := h.Users.Profile(ctx, identity.UserID)
	if err != nil {
		return fail(c, l, "profile", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update_profile")

	identity, ok := authmw.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided, access denied"})
	}

	var req service.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return fail(c, l, "update_profile", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}

	user, err := h.Users.UpdateProfile(ctx, identity.UserID, req)
	if err != nil {
		return fail(c, l, "update_profile", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.change_password")

	identity, ok := authmw.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided, access denied"})
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, l, "change_password", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}

	if err := h.Guard.ChangePassword(ctx, identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, l, "change_password", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

func (h *UserHandler) AddToWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.add_to_wishlist")

	identity, ok := authmw.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided, access denied"})
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return fail(c, l, "add_to_wishlist", fmt.Errorf("invalid product id: %w", apperr.ErrValidation))
	}

	user, err := h.Users.AddToWishlist(ctx, identity.UserID, productID)
	if err != nil {
		return fail(c, l, "add_to_wishlist", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Product added to wishlist",
		"wishlist": user.Wishlist,
	})
}

func (h *UserHandler) RemoveFromWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.remove_from_wishlist")

	identity, ok := authmw.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided, access denied"})
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return fail(c, l, "remove_from_wishlist", fmt.Errorf("invalid product id: %w", apperr.ErrValidation))
	}

	user, err := h.Users.RemoveFromWishlist(ctx, identity.UserID, productID)
	if err != nil {
		return fail(c, l, "remove_from_wishlist", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Product removed from wishlist",
		"wishlist": user.Wishlist,
	})
}

type createUserRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Phone    string         `json:"phone"`
	Role     string         `json:"role"`
	Status   string         `json:"status"`
	Address  models.Address `json:"address"`
}

// Create provisions an account on a user's behalf. Role and status come
// from the caller; a missing password falls back to a well-known
// default.
func (h *UserHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.create")

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, l, "create_user", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}

	token, user, err := h.Guard.AdminCreate(ctx, service.AdminCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
		Status:   req.Status,
		Address:  req.Address,
	})
	if err != nil {
		return fail(c, l, "create_user", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"token":   token,
		"user":    publicUser(user),
	})
}

func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.list")

	users, err := h.Users.List(ctx)
	if err != nil {
		return fail(c, l, "list_users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, l, "get_user", fmt.Errorf("invalid user id: %w", apperr.ErrValidation))
	}

	user, err := h.Users.Get(ctx, id)
	if err != nil {
		return fail(c, l, "get_user", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, l, "update_user", fmt.Errorf("invalid user id: %w", apperr.ErrValidation))
	}

	var req service.AdminUpdate
	if err := c.Bind(&req); err != nil {
		return fail(c, l, "update_user", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}

	user, err := h.Users.Update(ctx, id, req)
	if err != nil {
		return fail(c, l, "update_user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, l, "delete_user", fmt.Errorf("invalid user id: %w", apperr.ErrValidation))
	}

	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(c, l, "delete_user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

func (h *UserHandler) DashboardStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.dashboard_stats")

	stats, err := h.Users.DashboardStats(ctx)
	if err != nil {
		return fail(c, l, "dashboard_stats", err)
	}
	return c.JSON(http.StatusOK, stats)
}
