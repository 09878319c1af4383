package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jinstore-backend/controllers"
	"jinstore-backend/services/catalog"
)

// POST /api/admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var in catalog.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	p, err := h.catalog.Create(c.Request.Context(), in)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// PUT /api/admin/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	var patch catalog.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	p, err := h.catalog.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DELETE /api/admin/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		controllers.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/admin/products/:id/stock
func (h *Handler) SetStock(c *gin.Context) {
	var req struct {
		Stock *int `json:"stock" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	if err := h.catalog.SetStock(c.Request.Context(), c.Param("id"), *req.Stock); err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "stock": *req.Stock})
}
