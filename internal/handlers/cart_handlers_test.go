package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsantos/tindahan/internal/repo"
)

func TestCartEndpoints_RequireLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartEndpoint_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "juan@example.com", "secret1")

	rec := env.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Empty(t, body["items"])
	assert.Equal(t, float64(0), body["subtotal"])
	assert.Equal(t, float64(0), body["total"])
	assert.Equal(t, float64(0), body["item_count"])
}

func TestCartEndpoint_AddItem(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "juan@example.com", "secret1")

	shirt := env.seedProduct(t, "Graphic Tee", 100, 10)
	shoes := env.seedProduct(t, "Running Shoes", 2500, 5)

	rec := env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": shirt.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Same product again merges into the existing line.
	rec = env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": shirt.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": shoes.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, float64(2), body["item_count"], "badge counts lines, not quantities")
	assert.Equal(t, float64(2700), body["subtotal"])
	assert.Equal(t, float64(0), body["discount"])
	assert.Equal(t, float64(2700), body["total"])

	first := items[0].(map[string]any)
	assert.Equal(t, "Graphic Tee", first["title"])
	assert.Equal(t, float64(2), first["quantity"])
}

func TestCartEndpoint_AddItemValidation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "juan@example.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/cart", token, echo.Map{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	gone := env.seedProduct(t, "Sold Out Cap", 300, 0)
	rec = env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": gone.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "out of stock")
}

func TestCartEndpoint_PriceSnapshotSurvivesRepricing(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "juan@example.com", "secret1")

	shirt := env.seedProduct(t, "Graphic Tee", 100, 10)

	rec := env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": shirt.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	newPrice := 175.0
	_, err := env.repo.PatchProduct(context.Background(), shirt.ID, repo.ProductPatch{Price: &newPrice})
	require.NoError(t, err)

	rec = env.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(100), items[0].(map[string]any)["price"])
	assert.Equal(t, float64(100), body["subtotal"])
}

func TestCartEndpoint_UpdateQuantity(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "juan@example.com", "secret1")

	shirt := env.seedProduct(t, "Graphic Tee", 100, 10)

	env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": shirt.ID})
	env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": shirt.ID})

	rec := env.do(t, http.MethodPatch, "/api/cart/"+shirt.ID.String(), token, echo.Map{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, float64(300), body["subtotal"])

	// Quantities below 1 leave the line as it was.
	rec = env.do(t, http.MethodPatch, "/api/cart/"+shirt.ID.String(), token, echo.Map{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(300), body["subtotal"])
	assert.Equal(t, float64(1), body["item_count"])
}

func TestCartEndpoint_RemoveItem(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "juan@example.com", "secret1")

	shirt := env.seedProduct(t, "Graphic Tee", 100, 10)
	shoes := env.seedProduct(t, "Running Shoes", 2500, 5)

	env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": shirt.ID})
	env.do(t, http.MethodPost, "/api/cart", token, echo.Map{"product_id": shoes.ID})

	rec := env.do(t, http.MethodDelete, "/api/cart/"+shirt.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Running Shoes", items[0].(map[string]any)["title"])
	assert.Equal(t, float64(2500), body["subtotal"])
}

func TestCartEndpoint_CartsAreIsolatedPerUser(t *testing.T) {
	env := newTestEnv(t)
	tokenA, _ := env.registerUser(t, "a@example.com", "secret1")
	tokenB, _ := env.registerUser(t, "b@example.com", "secret1")

	shirt := env.seedProduct(t, "Graphic Tee", 100, 10)
	env.do(t, http.MethodPost, "/api/cart", tokenA, echo.Map{"product_id": shirt.ID})

	rec := env.do(t, http.MethodGet, "/api/cart", tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["items"])
}
