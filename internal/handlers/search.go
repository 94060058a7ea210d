package handlers

import (
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/jmsantos/tindahan/internal/apperr"
	"github.com/jmsantos/tindahan/internal/logging"
	"github.com/jmsantos/tindahan/internal/service/search"
	"github.com/jmsantos/tindahan/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func NewSearchHandler(es *elasticsearch.Client, index string) *SearchHandler {
	return &SearchHandler{ES: es, Index: index}
}

func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.search")

	q := c.QueryParam("q")
	if q == "" {
		return fail(c, l, "search", fmt.Errorf("query parameter q is required: %w", apperr.ErrValidation))
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, products, err := search.Search(ctx, h.ES, h.Index, q, from, size)
	if err != nil {
		return fail(c, l, "search", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
