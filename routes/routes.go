package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"jinstore-backend/controllers/admin"
	"jinstore-backend/controllers/cart"
	"jinstore-backend/controllers/favorites"
	"jinstore-backend/controllers/orders"
	"jinstore-backend/controllers/products"
	"jinstore-backend/controllers/users"
	"jinstore-backend/middleware"
)

type Handlers struct {
	Products  *products.Handler
	Cart      *cart.Handler
	Favorites *favorites.Handler
	Orders    *orders.Handler
	Users     *users.Handler
	Admin     *admin.Handler
}

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Setup wires every route group onto r.
func Setup(r *gin.Engine, h Handlers, tokens middleware.TokenParser, db Pinger) {
	r.GET("/healthz", health(db))

	api := r.Group("/api", middleware.Authenticate(tokens))

	setupAuthRoutes(api, h.Users)
	setupCatalogRoutes(api, h.Products)
	setupShopperRoutes(api, h.Cart, h.Favorites)
	setupUserRoutes(api, h.Users, h.Orders)
	setupAdminRoutes(api, h.Admin)
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
