package cart

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/controllers"
	"jinstore-backend/models"
)

type Carts interface {
	Get(ctx context.Context, owner models.Owner) (models.Cart, error)
	Add(ctx context.Context, owner models.Owner, productID primitive.ObjectID, quantity int) (models.Cart, error)
	SetQuantity(ctx context.Context, owner models.Owner, productID primitive.ObjectID, quantity int) (models.Cart, error)
	Remove(ctx context.Context, owner models.Owner, productID primitive.ObjectID) (models.Cart, error)
	Clear(ctx context.Context, owner models.Owner) (models.Cart, error)
}

// Handler serves the cart of whoever holds the token, user or guest.
type Handler struct {
	carts Carts
}

func NewHandler(carts Carts) *Handler {
	return &Handler{carts: carts}
}

type cartView struct {
	models.Cart
	Total int64 `json:"total"`
}

func (h *Handler) respond(c *gin.Context, cart models.Cart, err error) {
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView{Cart: cart, Total: cart.Total()})
}

// GET /api/cart
func (h *Handler) Get(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), controllers.Principal(c).Owner())
	h.respond(c, cart, err)
}

type addRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1,max=1000"`
}

// POST /api/cart
func (h *Handler) Add(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	pid, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		controllers.Fail(c, models.InvalidInput("malformed product id"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	cart, err := h.carts.Add(c.Request.Context(), controllers.Principal(c).Owner(), pid, req.Quantity)
	h.respond(c, cart, err)
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=1000"`
}

// PUT /api/cart/:productId
func (h *Handler) SetQuantity(c *gin.Context) {
	pid, ok := productParam(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	cart, err := h.carts.SetQuantity(c.Request.Context(), controllers.Principal(c).Owner(), pid, *req.Quantity)
	h.respond(c, cart, err)
}

// DELETE /api/cart/:productId
func (h *Handler) Remove(c *gin.Context) {
	pid, ok := productParam(c)
	if !ok {
		return
	}
	cart, err := h.carts.Remove(c.Request.Context(), controllers.Principal(c).Owner(), pid)
	h.respond(c, cart, err)
}

// DELETE /api/cart
func (h *Handler) Clear(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), controllers.Principal(c).Owner())
	h.respond(c, cart, err)
}

func productParam(c *gin.Context) (primitive.ObjectID, bool) {
	pid, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		controllers.Fail(c, models.InvalidInput("malformed product id"))
		return primitive.NilObjectID, false
	}
	return pid, true
}
