package routes

import (
	"github.com/gin-gonic/gin"

	"jinstore-backend/controllers/orders"
	"jinstore-backend/controllers/users"
	"jinstore-backend/middleware"
)

func setupUserRoutes(api *gin.RouterGroup, u *users.Handler, o *orders.Handler) {
	ug := api.Group("/user", middleware.RequireUser)
	{
		ug.GET("/profile", u.Profile)
		ug.PUT("/profile", u.UpdateProfile)
		ug.POST("/addresses", u.AddAddress)
		ug.PUT("/addresses/:index", u.UpdateAddress)
		ug.DELETE("/addresses/:index", u.RemoveAddress)
		ug.PUT("/addresses/:index/primary", u.SetPrimaryAddress)
	}

	og := api.Group("/orders", middleware.RequireUser)
	{
		og.POST("", o.Place)
		og.GET("", o.List)
		og.GET("/:id", o.Get)
		og.POST("/:id/cancel", o.Cancel)
	}
}
