package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/apparel-studio/internal/middleware"
)

// RegisterCustomer registers the routes of any signed-in account: design
// drafts and library, cart, favorites, orders and payment claims.
// Ownership is enforced below the handlers.
func RegisterCustomer(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/api", middleware.JWTAuth(jwtSecret))

	// ---- Designs ----
	g.PUT("/design/current", h.Designs.SaveCurrent)
	g.GET("/design/current/:productId", h.Designs.GetCurrent)
	g.DELETE("/design/current/:productId", h.Designs.DeleteCurrent)
	g.GET("/design/last-used", h.Designs.LastUsed)

	g.POST("/saved-designs", h.Designs.CreateSaved)
	g.GET("/saved-designs", h.Designs.ListSaved)
	g.GET("/saved-designs/:id", h.Designs.GetSaved)
	g.PATCH("/saved-designs/:id", h.Designs.RenameSaved)
	g.PATCH("/saved-designs/:id/favorite", h.Designs.ToggleFavorite)
	g.DELETE("/saved-designs/:id", h.Designs.DeleteSaved)

	// ---- Cart and favorites ----
	g.GET("/cart", h.Cart.List)
	g.POST("/cart", h.Cart.Add)
	g.PATCH("/cart/:id", h.Cart.SetQuantity)
	g.DELETE("/cart/:id", h.Cart.Remove)
	g.DELETE("/cart", h.Cart.Clear)

	g.POST("/favorites/toggle", h.Cart.ToggleFavorite)
	g.GET("/favorites", h.Cart.ListFavorites)
	g.DELETE("/favorites/:productType/:productId", h.Cart.RemoveFavorite)

	// ---- Orders ----
	g.POST("/orders", h.Orders.Place)
	g.GET("/orders", h.Orders.ListMine)
	g.GET("/orders/:id", h.Orders.Get)
	g.POST("/orders/:id/cancel", h.Orders.Cancel)

	// ---- Payments ----
	g.POST("/payments", h.Orders.SubmitPayment)
	g.GET("/payments/order/:orderId", h.Orders.ListOrderPayments)
	// the service re-reads the caller's role from the users table
	g.PATCH("/payments/:id/approve", h.Orders.ApprovePayment)
	g.PATCH("/payments/:id/reject", h.Orders.RejectPayment)

	// ---- Uploads ----
	g.POST("/cloudinary/upload", h.Media.Upload)
}
