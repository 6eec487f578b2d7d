package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/metrics"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler  *CatalogHTTP
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	AccountHandler  *AccountHTTP
	JWTSecret       []byte
	// Ready reports whether backing stores answer. Nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", metrics.Handler())

	auth := middleware.NewCookieAuth(d.JWTSecret)

	e.GET("/", d.CatalogHandler.Index)
	e.GET("/search", d.CatalogHandler.Search)

	store := e.Group("/store")
	store.GET("/products/:slug", d.CatalogHandler.GetProduct)
	store.POST("/products/:slug/add-to-cart", d.CartHandler.AddToCart, auth.RequireAuth)
	store.GET("/cart", d.CartHandler.GetCart, auth.RequireAuth)
	store.POST("/cart/update", d.CartHandler.UpdateCart, auth.RequireAuth)
	store.POST("/cart/delete", d.CartHandler.DeleteCart, auth.RequireAuth)
	store.POST("/checkout", d.CheckoutHandler.Checkout, auth.RequireAuth)
	store.GET("/checkout/success", d.CheckoutHandler.Success)
	store.POST("/stripe-webhook", d.CheckoutHandler.StripeWebhook)

	account := e.Group("/account")
	account.POST("/signup", d.AccountHandler.Signup)
	account.POST("/login", d.AccountHandler.Login)
	account.POST("/logout", d.AccountHandler.Logout)
	account.GET("/profile", d.AccountHandler.GetProfile, auth.RequireAuth)
	account.POST("/profile", d.AccountHandler.UpdateProfile, auth.RequireAuth)
	account.POST("/profile/set-default-shipping/:id", d.AccountHandler.SetDefaultShipping, auth.RequireAuth)
	account.POST("/delete-address/:id", d.AccountHandler.DeleteAddress, auth.RequireAuth)
	account.GET("/orders", d.AccountHandler.GetOrders, auth.RequireAuth)

	admin := e.Group("/admin", auth.RequireAdmin)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
}
