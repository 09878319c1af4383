package favorites

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/controllers"
	"jinstore-backend/models"
)

type Favorites interface {
	Get(ctx context.Context, owner models.Owner) (models.Favorites, error)
	Add(ctx context.Context, owner models.Owner, productID primitive.ObjectID) (models.Favorites, error)
	Remove(ctx context.Context, owner models.Owner, productID primitive.ObjectID) (models.Favorites, error)
	Toggle(ctx context.Context, owner models.Owner, productID primitive.ObjectID) (models.Favorites, bool, error)
	Clear(ctx context.Context, owner models.Owner) (models.Favorites, error)
}

type Handler struct {
	favorites Favorites
}

func NewHandler(f Favorites) *Handler {
	return &Handler{favorites: f}
}

func (h *Handler) respond(c *gin.Context, f models.Favorites, err error) {
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// GET /api/favorites
func (h *Handler) Get(c *gin.Context) {
	f, err := h.favorites.Get(c.Request.Context(), controllers.Principal(c).Owner())
	h.respond(c, f, err)
}

// POST /api/favorites
func (h *Handler) Add(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	pid, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		controllers.Fail(c, models.InvalidInput("malformed product id"))
		return
	}
	f, err := h.favorites.Add(c.Request.Context(), controllers.Principal(c).Owner(), pid)
	h.respond(c, f, err)
}

// POST /api/favorites/:productId/toggle
func (h *Handler) Toggle(c *gin.Context) {
	pid, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		controllers.Fail(c, models.InvalidInput("malformed product id"))
		return
	}
	f, added, err := h.favorites.Toggle(c.Request.Context(), controllers.Principal(c).Owner(), pid)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": f, "added": added})
}

// DELETE /api/favorites/:productId
func (h *Handler) Remove(c *gin.Context) {
	pid, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		controllers.Fail(c, models.InvalidInput("malformed product id"))
		return
	}
	f, err := h.favorites.Remove(c.Request.Context(), controllers.Principal(c).Owner(), pid)
	h.respond(c, f, err)
}

// DELETE /api/favorites
func (h *Handler) Clear(c *gin.Context) {
	f, err := h.favorites.Clear(c.Request.Context(), controllers.Principal(c).Owner())
	h.respond(c, f, err)
}
