// Package controllers holds what every HTTP area shares: error mapping,
// paging and principal lookup. Each area lives in its own subpackage.
package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jinstore-backend/middleware"
	"jinstore-backend/models"
)

// Fail writes err as {"error": ...} with the status its sentinel maps to.
// Unknown errors are logged and hidden behind a generic 500.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var stock *models.StockError
	if errors.As(err, &stock) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": stock.Error(), "shortages": stock.Shortages})
		return
	}

	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("path", c.Request.URL.Path), slog.Any("err", err))
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrStale),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest reports a binding failure.
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
}

// PageQuery reads ?page= and ?limit=; junk values fall back to defaults.
func PageQuery(c *gin.Context) models.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return models.Page{Page: page, Limit: limit}.Normalize()
}

// Principal is only valid behind middleware.RequireOwner or stricter.
func Principal(c *gin.Context) middleware.Principal {
	p, _ := middleware.CurrentPrincipal(c)
	return p
}
