package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jinstore-backend/controllers"
	"jinstore-backend/models"
	"jinstore-backend/services/users"
)

func (h *Handler) respond(c *gin.Context, u models.User, err error) {
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /api/user/profile
func (h *Handler) Profile(c *gin.Context) {
	u, err := h.Accounts.Get(c.Request.Context(), controllers.Principal(c).UserID)
	h.respond(c, u, err)
}

// PUT /api/user/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req users.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	u, err := h.Accounts.UpdateProfile(c.Request.Context(), controllers.Principal(c).UserID, req)
	h.respond(c, u, err)
}

// POST /api/user/addresses
func (h *Handler) AddAddress(c *gin.Context) {
	var a models.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	u, err := h.Accounts.AddAddress(c.Request.Context(), controllers.Principal(c).UserID, a)
	h.respond(c, u, err)
}

// PUT /api/user/addresses/:index
func (h *Handler) UpdateAddress(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var a models.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	u, err := h.Accounts.UpdateAddress(c.Request.Context(), controllers.Principal(c).UserID, index, a)
	h.respond(c, u, err)
}

// DELETE /api/user/addresses/:index
func (h *Handler) RemoveAddress(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	u, err := h.Accounts.RemoveAddress(c.Request.Context(), controllers.Principal(c).UserID, index)
	h.respond(c, u, err)
}

// PUT /api/user/addresses/:index/primary
func (h *Handler) SetPrimaryAddress(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	u, err := h.Accounts.SetPrimaryAddress(c.Request.Context(), controllers.Principal(c).UserID, index)
	h.respond(c, u, err)
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		controllers.Fail(c, models.InvalidInput("address index must be a number"))
		return 0, false
	}
	return index, true
}
