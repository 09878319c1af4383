package routes

import (
	"github.com/gin-gonic/gin"

	"jinstore-backend/controllers/admin"
	"jinstore-backend/middleware"
)

func setupAdminRoutes(api *gin.RouterGroup, h *admin.Handler) {
	ag := api.Group("/admin", middleware.RequireAdmin)
	{
		ag.GET("/stats", h.Stats)

		ag.GET("/orders", h.ListOrders)
		ag.GET("/orders/export", h.ExportOrders)
		ag.GET("/orders/ws", h.OrderFeed)
		ag.GET("/orders/:id", h.GetOrder)
		ag.PUT("/orders/:id/status", h.UpdateOrderStatus)
		ag.DELETE("/orders/:id", h.DeleteOrder)

		ag.POST("/products", h.CreateProduct)
		ag.GET("/products/export", h.ExportProducts)
		ag.PUT("/products/:id", h.UpdateProduct)
		ag.DELETE("/products/:id", h.DeleteProduct)
		ag.PUT("/products/:id/stock", h.SetStock)

		ag.GET("/users", h.ListUsers)
		ag.PUT("/users/:id/role", h.SetRole)
	}
}
