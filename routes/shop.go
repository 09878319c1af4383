package routes

import (
	"github.com/gin-gonic/gin"

	"jinstore-backend/controllers/cart"
	"jinstore-backend/controllers/favorites"
	"jinstore-backend/controllers/products"
	"jinstore-backend/middleware"
)

func setupCatalogRoutes(api *gin.RouterGroup, h *products.Handler) {
	api.GET("/products", h.List)
	api.GET("/products/:id", h.Get)
	api.GET("/categories", h.Categories)
	api.POST("/products/:id/reviews", middleware.RequireUser, h.AddReview)
}

// Cart and favorites work for guests too.
func setupShopperRoutes(api *gin.RouterGroup, c *cart.Handler, f *favorites.Handler) {
	cg := api.Group("/cart", middleware.RequireOwner)
	{
		cg.GET("", c.Get)
		cg.POST("", c.Add)
		cg.DELETE("", c.Clear)
		cg.PUT("/:productId", c.SetQuantity)
		cg.DELETE("/:productId", c.Remove)
	}

	fg := api.Group("/favorites", middleware.RequireOwner)
	{
		fg.GET("", f.Get)
		fg.POST("", f.Add)
		fg.DELETE("", f.Clear)
		fg.POST("/:productId/toggle", f.Toggle)
		fg.DELETE("/:productId", f.Remove)
	}
}
