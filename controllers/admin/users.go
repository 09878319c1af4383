package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jinstore-backend/controllers"
	"jinstore-backend/models"
)

// GET /api/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	page, err := h.accounts.List(c.Request.Context(), controllers.PageQuery(c))
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// PUT /api/admin/users/:id/role
func (h *Handler) SetRole(c *gin.Context) {
	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	if c.Param("id") == controllers.Principal(c).UserID.Hex() && req.Role != models.RoleAdmin {
		controllers.Fail(c, models.InvalidInput("admins cannot demote themselves"))
		return
	}
	u, err := h.accounts.SetRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
