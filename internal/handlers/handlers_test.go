package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jmsantos/tindahan/internal/handlers"
	"github.com/jmsantos/tindahan/internal/hash"
	authmw "github.com/jmsantos/tindahan/internal/middleware/auth"
	"github.com/jmsantos/tindahan/internal/models"
	"github.com/jmsantos/tindahan/internal/repo"
	"github.com/jmsantos/tindahan/internal/service"
	"github.com/jmsantos/tindahan/internal/tokens"
	httpserver "github.com/jmsantos/tindahan/internal/transport/http"
)

// testEnv wires the full router against an in-memory database, so the
// tests exercise the same middleware chain production requests hit.
type testEnv struct {
	e     *echo.Echo
	repo  *repo.GormRepo
	guard *service.Guard
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	store := repo.New(db)
	guard := service.NewGuard(store, &hash.Bcrypt{Cost: bcrypt.MinCost}, tokens.NewSigner([]byte("test-jwt-secret")))
	users := service.NewUserService(store)
	catalog := service.NewCatalogService(store)

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Auth:     handlers.NewAuthHandler(guard, nil),
		Users:    handlers.NewUserHandler(users, guard),
		Products: handlers.NewProductHandler(catalog, nil),
		Cart:     handlers.NewCartHandler(store, catalog, nil),
		MW:       authmw.New(guard),
	})

	return &testEnv{e: e, repo: store, guard: guard}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// registerUser signs up through the HTTP surface and returns the token
// and the new account's id.
func (env *testEnv) registerUser(t *testing.T, email, password string) (string, string) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", echo.Map{
		"name":     "Test User",
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	id, _ := user["id"].(string)
	require.NotEmpty(t, id)
	return token, id
}

// registerAdmin registers a user and flips the stored role to admin.
// The token stays valid: role is read back from the database on every
// verification.
func (env *testEnv) registerAdmin(t *testing.T, email, password string) string {
	t.Helper()

	token, id := env.registerUser(t, email, password)
	user, err := env.repo.FindUserByEmail(context.Background(), email, false)
	require.NoError(t, err)
	require.Equal(t, id, user.ID.String())
	require.NoError(t, env.repo.UpdateUserFields(context.Background(), user.ID, map[string]any{"role": models.RoleAdmin}))
	return token
}

func (env *testEnv) seedProduct(t *testing.T, title string, price float64, stock uint) *models.Product {
	t.Helper()
	p := &models.Product{Title: title, Price: price, Stock: stock}
	require.NoError(t, env.repo.CreateProduct(context.Background(), p))
	return p
}
