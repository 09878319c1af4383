package products

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/controllers"
	"jinstore-backend/models"
	"jinstore-backend/services/catalog"
)

type Catalog interface {
	List(ctx context.Context, f models.ProductFilter) (catalog.Result, error)
	Get(ctx context.Context, id string) (models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	AddReview(ctx context.Context, productID string, user models.User, rating int, comment string) (models.Product, error)
}

type UserLookup interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

type Handler struct {
	catalog Catalog
	users   UserLookup
}

func NewHandler(c Catalog, users UserLookup) *Handler {
	return &Handler{catalog: c, users: users}
}

// GET /api/products
func (h *Handler) List(c *gin.Context) {
	f, err := FilterFromQuery(c)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	res, err := h.catalog.List(c.Request.Context(), f)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/products/:id
func (h *Handler) Get(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/categories
func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// POST /api/products/:id/reviews
func (h *Handler) AddReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	user, err := h.users.Get(ctx, controllers.Principal(c).UserID)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	p, err := h.catalog.AddReview(ctx, c.Param("id"), user, req.Rating, req.Comment)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// FilterFromQuery parses the catalog query string. Prices are in cents.
func FilterFromQuery(c *gin.Context) (models.ProductFilter, error) {
	f := models.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     models.ProductSort(c.Query("sort")),
		Page:     controllers.PageQuery(c),
	}
	if f.Search == "" {
		f.Search = c.Query("q")
	}

	if v := c.Query("trending"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, models.InvalidInput("trending must be true or false")
		}
		f.Trending = &b
	}
	if v := c.Query("inStock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, models.InvalidInput("inStock must be true or false")
		}
		f.InStock = b
	}
	for _, p := range []struct {
		key string
		dst **int64
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		v := c.Query(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, models.InvalidInput("%s must be an integer amount in cents", p.key)
		}
		*p.dst = &n
	}
	return f, nil
}
