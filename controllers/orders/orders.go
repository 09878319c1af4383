package orders

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/controllers"
	"jinstore-backend/models"
	"jinstore-backend/services/orders"
)

type Orders interface {
	Checkout(ctx context.Context, customerID primitive.ObjectID, req orders.CheckoutRequest) (models.Order, error)
	GetForCustomer(ctx context.Context, id string, customerID primitive.ObjectID) (models.Order, error)
	List(ctx context.Context, f models.OrderFilter) (orders.Page, error)
	Cancel(ctx context.Context, id string, customerID primitive.ObjectID) (models.Order, error)
}

// Handler serves a signed-in customer's own orders.
type Handler struct {
	orders Orders
}

func NewHandler(o Orders) *Handler {
	return &Handler{orders: o}
}

// POST /api/orders
func (h *Handler) Place(c *gin.Context) {
	var req orders.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			controllers.BadRequest(c, err)
			return
		}
	}
	o, err := h.orders.Checkout(c.Request.Context(), controllers.Principal(c).UserID, req)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// GET /api/orders
func (h *Handler) List(c *gin.Context) {
	f := models.OrderFilter{CustomerID: controllers.Principal(c).UserID, Page: controllers.PageQuery(c)}
	if s := c.Query("status"); s != "" {
		status, err := models.ParseStatus(s)
		if err != nil {
			controllers.Fail(c, models.InvalidInput("unknown status %q", s))
			return
		}
		f.Status = status
	}
	page, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/orders/:id
func (h *Handler) Get(c *gin.Context) {
	o, err := h.orders.GetForCustomer(c.Request.Context(), c.Param("id"), controllers.Principal(c).UserID)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// POST /api/orders/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	o, err := h.orders.Cancel(c.Request.Context(), c.Param("id"), controllers.Principal(c).UserID)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
