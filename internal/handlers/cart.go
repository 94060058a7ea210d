package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jmsantos/tindahan/internal/apperr"
	"github.com/jmsantos/tindahan/internal/cart"
	"github.com/jmsantos/tindahan/internal/events"
	"github.com/jmsantos/tindahan/internal/logging"
	authmw "github.com/jmsantos/tindahan/internal/middleware/auth"
	"github.com/jmsantos/tindahan/internal/repo"
	"github.com/jmsantos/tindahan/internal/service"
)

// CartHandler operates the per-user session cart. Each request loads
// the stored snapshot into a cart.Store, applies one mutation and
// writes the snapshot back; the store itself never leaves the request.
type CartHandler struct {
	Repo     *repo.GormRepo
	Catalog  *service.CatalogService
	Producer *events.Producer
}

func NewCartHandler(r *repo.GormRepo, catalog *service.CatalogService, producer *events.Producer) *CartHandler {
	return &CartHandler{Repo: r, Catalog: catalog, Producer: producer}
}

func (h *CartHandler) storage(userID uuid.UUID) cart.Storage {
	return &repo.CartStorage{Repo: h.Repo, UserID: userID}
}

func cartView(s *cart.Store) echo.Map {
	return echo.Map{
		"items":      s.Lines(),
		"subtotal":   s.Subtotal(),
		"discount":   s.Subtotal() - s.Total(),
		"total":      s.Total(),
		"item_count": s.ItemCount(),
	}
}

func (h *CartHandler) load(c echo.Context) (uuid.UUID, *cart.Store, cart.Storage, error) {
	identity, ok := authmw.Identity(c)
	if !ok {
		return uuid.Nil, nil, nil, fmt.Errorf("unauthorized: %w", apperr.ErrAuth)
	}
	storage := h.storage(identity.UserID)
	lines, err := storage.Load(c.Request().Context())
	if err != nil {
		return uuid.Nil, nil, nil, err
	}
	return identity.UserID, cart.NewFromLines(lines), storage, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	_, store, _, err := h.load(c)
	if err != nil {
		return fail(c, l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, cartView(store))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req struct {
		ProductID uuid.UUID `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, l, "add_to_cart", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}
	if req.ProductID == uuid.Nil {
		return fail(c, l, "add_to_cart", fmt.Errorf("product_id required: %w", apperr.ErrValidation))
	}

	product, err := h.Catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return fail(c, l, "add_to_cart", err)
	}
	// The store does not check availability; that is this caller's job.
	if product.Stock == 0 {
		return fail(c, l, "add_to_cart", fmt.Errorf("product is out of stock: %w", apperr.ErrValidation))
	}

	userID, store, storage, err := h.load(c)
	if err != nil {
		return fail(c, l, "add_to_cart", err)
	}

	store.AddItem(*product)
	if err := storage.Save(ctx, store.Lines()); err != nil {
		return fail(c, l, "add_to_cart", err)
	}

	h.publish(c, userID.String(), map[string]any{
		"type":       "cart_item_added",
		"user_id":    userID,
		"product_id": product.ID,
	})

	return c.JSON(http.StatusCreated, cartView(store))
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity")

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return fail(c, l, "update_quantity", fmt.Errorf("invalid product id: %w", apperr.ErrValidation))
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, l, "update_quantity", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}

	_, store, storage, err := h.load(c)
	if err != nil {
		return fail(c, l, "update_quantity", err)
	}

	store.UpdateQuantity(productID, req.Quantity)
	if err := storage.Save(ctx, store.Lines()); err != nil {
		return fail(c, l, "update_quantity", err)
	}
	return c.JSON(http.StatusOK, cartView(store))
}

// RemoveItem deletes the whole line. The UI gates this behind an
// explicit confirmation dialog; by the time the request arrives the
// removal is final.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return fail(c, l, "remove_from_cart", fmt.Errorf("invalid product id: %w", apperr.ErrValidation))
	}

	userID, store, storage, err := h.load(c)
	if err != nil {
		return fail(c, l, "remove_from_cart", err)
	}

	store.RemoveItem(productID)
	if err := storage.Save(ctx, store.Lines()); err != nil {
		return fail(c, l, "remove_from_cart", err)
	}

	h.publish(c, userID.String(), map[string]any{
		"type":       "cart_item_removed",
		"user_id":    userID,
		"product_id": productID,
	})

	return c.JSON(http.StatusOK, cartView(store))
}

func (h *CartHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicCartEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", events.TopicCartEvents, "error", err)
	}
}
