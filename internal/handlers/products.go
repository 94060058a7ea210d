package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jmsantos/tindahan/internal/apperr"
	"github.com/jmsantos/tindahan/internal/events"
	"github.com/jmsantos/tindahan/internal/logging"
	"github.com/jmsantos/tindahan/internal/models"
	"github.com/jmsantos/tindahan/internal/repo"
	"github.com/jmsantos/tindahan/internal/service"
	"github.com/jmsantos/tindahan/internal/util"
)

type ProductHandler struct {
	Catalog  *service.CatalogService
	Producer *events.Producer
}

func NewProductHandler(catalog *service.CatalogService, producer *events.Producer) *ProductHandler {
	return &ProductHandler{Catalog: catalog, Producer: producer}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, l, "get_product", fmt.Errorf("invalid product id: %w", apperr.ErrValidation))
	}

	product, err := h.Catalog.GetProduct(ctx, id)
	if err != nil {
		return fail(c, l, "get_product", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.list")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Catalog.ListProducts(ctx, offset, limit)
	if err != nil {
		return fail(c, l, "list_products", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

type createProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Stock       uint    `json:"stock"`
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.create")

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, l, "create_product", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}

	product := models.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Brand:       req.Brand,
		Category:    req.Category,
		Stock:       req.Stock,
	}
	if err := h.Catalog.CreateProduct(ctx, &product); err != nil {
		return fail(c, l, "create_product", err)
	}

	h.publish(c, product.ID.String(), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"title":      product.Title,
	})

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, l, "update_product", fmt.Errorf("invalid product id: %w", apperr.ErrValidation))
	}

	var patch repo.ProductPatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, l, "update_product", fmt.Errorf("invalid body: %w", apperr.ErrValidation))
	}

	product, err := h.Catalog.UpdateProduct(ctx, id, patch)
	if err != nil {
		return fail(c, l, "update_product", err)
	}

	h.publish(c, product.ID.String(), map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"title":      product.Title,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, l, "delete_product", fmt.Errorf("invalid product id: %w", apperr.ErrValidation))
	}

	if err := h.Catalog.DeleteProduct(ctx, id); err != nil {
		return fail(c, l, "delete_product", err)
	}

	h.publish(c, id.String(), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicProductEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", events.TopicProductEvents, "error", err)
	}
}
