package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/controllers"
	"jinstore-backend/models"
)

func orderFilter(c *gin.Context) (models.OrderFilter, error) {
	f := models.OrderFilter{Page: controllers.PageQuery(c)}
	if s := c.Query("status"); s != "" {
		status, err := models.ParseStatus(s)
		if err != nil {
			return f, models.InvalidInput("unknown status %q", s)
		}
		f.Status = status
	}
	if id := c.Query("customerId"); id != "" {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return f, models.InvalidInput("malformed customer id")
		}
		f.CustomerID = oid
	}
	return f, nil
}

// GET /api/admin/orders
func (h *Handler) ListOrders(c *gin.Context) {
	f, err := orderFilter(c)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	page, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/admin/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o, "next": o.Status.Next()})
}

// PUT /api/admin/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	actor := "admin:" + controllers.Principal(c).UserID.Hex()
	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, actor)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// DELETE /api/admin/orders/:id
func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		controllers.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/admin/stats
func (h *Handler) Stats(c *gin.Context) {
	st, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /api/admin/orders/ws
func (h *Handler) OrderFeed(c *gin.Context) {
	h.feed.ServeWS(c.Writer, c.Request)
}
