package routes

import (
	"github.com/gin-gonic/gin"

	"jinstore-backend/controllers/users"
)

func setupAuthRoutes(api *gin.RouterGroup, h *users.Handler) {
	a := api.Group("/auth")
	{
		a.POST("/register", h.Register)
		a.POST("/login", h.Login)
		a.POST("/firebase", h.FirebaseLogin)
		a.POST("/guest", h.Guest)
	}
}
