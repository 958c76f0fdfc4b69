package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ANJAN672/Ecom/internal/handlers"
	carthandler "github.com/ANJAN672/Ecom/internal/handlers/cart"
	orderhandler "github.com/ANJAN672/Ecom/internal/handlers/order"
	"github.com/ANJAN672/Ecom/internal/service/token"
)

// Deps carries everything the route table needs.
type Deps struct {
	Tokens *token.Service

	Auth       *handlers.AuthHandler
	Products   *handlers.ProductHandler
	Categories *handlers.CategoryHandler
	Addresses  *handlers.AddressHandler
	Search     *handlers.SearchHandler
	Cart       *carthandler.CartHandler
	Orders     *orderhandler.OrderHandler
}

func Register(e *echo.Echo, d Deps) {
	e.GET("/health/live", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/health/ready", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api/v1")

	api.POST("/register", d.Auth.Register)
	api.POST("/login", d.Auth.Login)
	api.POST("/logout", d.Auth.Logout)

	api.GET("/search", d.Search.Search)

	api.GET("/products", d.Products.GetProducts)
	api.GET("/products/:id", d.Products.GetProduct)
	api.GET("/categories", d.Categories.GetCategories)
	api.GET("/categories/:id", d.Categories.GetCategory)
	api.GET("/categories/:id/products", d.Categories.CategoryProducts)

	auth := api.Group("", d.Tokens.RequireLogin)

	auth.GET("/cart", d.Cart.GetCart)
	auth.POST("/cart", d.Cart.AddToCart)
	auth.GET("/cart/validate", d.Cart.ValidateForCheckout)
	auth.PATCH("/cart/:id", d.Cart.UpdateQuantity)
	auth.DELETE("/cart/:id", d.Cart.RemoveFromCart)
	auth.DELETE("/cart", d.Cart.ClearCart)

	auth.POST("/orders", d.Orders.CreateOrder)
	auth.GET("/orders", d.Orders.GetOrders)
	auth.GET("/orders/by-number/:orderNumber", d.Orders.GetOrderByNumber)
	auth.GET("/orders/:id", d.Orders.GetOrder)
	auth.PATCH("/orders/:id/cancel", d.Orders.CancelOrder)

	auth.GET("/addresses", d.Addresses.List)
	auth.GET("/addresses/default", d.Addresses.Default)
	auth.GET("/addresses/:id", d.Addresses.Get)
	auth.POST("/addresses", d.Addresses.Create)
	auth.PATCH("/addresses/:id", d.Addresses.Update)
	auth.PATCH("/addresses/:id/default", d.Addresses.SetDefault)
	auth.DELETE("/addresses/:id", d.Addresses.Delete)

	seller := api.Group("", d.Tokens.SellerOnly)

	seller.GET("/products/my", d.Products.MyProducts)
	seller.POST("/products", d.Products.CreateProduct)
	seller.PATCH("/products/:id", d.Products.PatchProduct)
	seller.PATCH("/products/:id/stock", d.Products.UpdateStock)
	seller.DELETE("/products/:id", d.Products.DeleteProduct)

	seller.POST("/categories", d.Categories.CreateCategory)
	seller.PATCH("/categories/:id", d.Categories.PatchCategory)
	seller.DELETE("/categories/:id", d.Categories.DeleteCategory)

	seller.PATCH("/orders/:id/status", d.Orders.UpdateStatus)
}
