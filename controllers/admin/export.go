package admin

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jinstore-backend/controllers"
	"jinstore-backend/export"
	"jinstore-backend/models"
)

// exportLimit caps how many rows one download walks through.
const exportLimit = 10000

// GET /api/admin/orders/export
func (h *Handler) ExportOrders(c *gin.Context) {
	f, err := orderFilter(c)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	all, err := collect(c.Request.Context(), func(ctx context.Context, p models.Page) ([]models.Order, int64, error) {
		f.Page = p
		res, err := h.orders.List(ctx, f)
		return res.Items, res.Total, err
	})
	if err != nil {
		controllers.Fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteOrders(&buf, all); err != nil {
		controllers.Fail(c, err)
		return
	}
	h.log.Info("orders exported", slog.Int("rows", len(all)))
	download(c, export.Filename("orders", time.Now()), buf.Bytes())
}

// GET /api/admin/products/export
func (h *Handler) ExportProducts(c *gin.Context) {
	all, err := collect(c.Request.Context(), func(ctx context.Context, p models.Page) ([]models.Product, int64, error) {
		res, err := h.catalog.List(ctx, models.ProductFilter{Sort: models.SortName, Page: p})
		return res.Items, res.Total, err
	})
	if err != nil {
		controllers.Fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteProducts(&buf, all); err != nil {
		controllers.Fail(c, err)
		return
	}
	h.log.Info("products exported", slog.Int("rows", len(all)))
	download(c, export.Filename("products", time.Now()), buf.Bytes())
}

// collect pages through a listing until it runs dry or hits exportLimit.
func collect[T any](ctx context.Context, list func(context.Context, models.Page) ([]T, int64, error)) ([]T, error) {
	var all []T
	for page := 1; len(all) < exportLimit; page++ {
		items, total, err := list(ctx, models.Page{Page: page, Limit: models.MaxPageLimit})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < models.MaxPageLimit || int64(len(all)) >= total {
			break
		}
	}
	return all, nil
}

func download(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Expires", "0")
	c.Data(http.StatusOK, export.ContentType, data)
}
