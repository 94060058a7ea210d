package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmsantos/tindahan/internal/handlers"
	authmw "github.com/jmsantos/tindahan/internal/middleware/auth"
)

type Deps struct {
	Auth     *handlers.AuthHandler
	Users    *handlers.UserHandler
	Products *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Search   *handlers.SearchHandler
	MW       *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	// One auth code path, mounted under both prefixes the clients use.
	authGroup := api.Group("/auth")
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/login", d.Auth.Login)

	users := api.Group("/users")
	users.POST("/register", d.Auth.Register)
	users.POST("/login", d.Auth.Login)

	private := users.Group("", d.MW.RequireLogin)
	private.GET("/profile", d.Users.Profile)
	private.PUT("/profile", d.Users.UpdateProfile)
	private.PUT("/change-password", d.Users.ChangePassword)
	private.POST("/wishlist/:productId", d.Users.AddToWishlist)
	private.DELETE("/wishlist/:productId", d.Users.RemoveFromWishlist)

	admin := users.Group("", d.MW.RequireLogin, d.MW.RequireAdmin)
	admin.GET("", d.Users.List)
	admin.POST("", d.Users.Create)
	admin.GET("/stats/dashboard", d.Users.DashboardStats)
	admin.GET("/:id", d.Users.Get)
	admin.PUT("/:id", d.Users.Update)
	admin.DELETE("/:id", d.Users.Delete)

	products := api.Group("/products")
	products.GET("", d.Products.List)
	if d.Search != nil {
		products.GET("/search", d.Search.Search)
	}
	products.GET("/:id", d.Products.Get)

	productsAdmin := products.Group("", d.MW.RequireLogin, d.MW.RequireAdmin)
	productsAdmin.POST("", d.Products.Create)
	productsAdmin.PUT("/:id", d.Products.Update)
	productsAdmin.DELETE("/:id", d.Products.Delete)

	cart := api.Group("/cart", d.MW.RequireLogin)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddItem)
	cart.PATCH("/:productId", d.Cart.UpdateQuantity)
	cart.DELETE("/:productId", d.Cart.RemoveItem)
}
