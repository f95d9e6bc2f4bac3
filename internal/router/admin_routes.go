package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterAdmin registers back-office endpoints.  All routes require a
// valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	admin := adminOnly(jwtSecret)

	// ---- Orders and payments ----
	e.GET("/api/admin/orders", h.Orders.ListAll, admin...)
	e.PATCH("/api/admin/orders/:id/status", h.Orders.SetStatus, admin...)
	e.GET("/api/payments", h.Orders.ListPayments, admin...)
	e.POST("/api/admin/legacy-users/provision", h.Admin.ProvisionLegacy, admin...)

	// ---- Ledger ----
	l := e.Group("/api/ledger", admin...)
	l.GET("", h.Admin.ListLedger)
	l.POST("", h.Admin.CreateExpense)
	l.GET("/summary", h.Admin.LedgerSummary)

	// ---- Inventory ----
	inv := e.Group("/api/inventory", admin...)
	inv.GET("", h.Admin.ListInventory)
	inv.GET("/low-stock", h.Admin.LowStock)
	inv.GET("/:id", h.Admin.GetInventory)
	inv.POST("", h.Admin.CreateInventory)
	inv.PUT("/:id", h.Admin.UpdateInventory)
	inv.PATCH("/:id/adjust", h.Admin.AdjustInventory)
	inv.DELETE("/:id", h.Admin.DeleteInventory)

	// ---- Image host ----
	e.DELETE("/api/cloudinary/image", h.Media.DestroyImage, admin...)
	e.DELETE("/api/cloudinary/folder", h.Media.DeleteFolder, admin...)
}
