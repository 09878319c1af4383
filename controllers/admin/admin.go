package admin

import (
	"context"
	"log/slog"
	"net/http"

	"jinstore-backend/models"
	"jinstore-backend/services/catalog"
	"jinstore-backend/services/orders"
	"jinstore-backend/services/users"
)

type Orders interface {
	List(ctx context.Context, f models.OrderFilter) (orders.Page, error)
	Get(ctx context.Context, id string) (models.Order, error)
	UpdateStatus(ctx context.Context, id, status, actor string) (models.Order, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (orders.Stats, error)
}

type Catalog interface {
	List(ctx context.Context, f models.ProductFilter) (catalog.Result, error)
	Create(ctx context.Context, in catalog.ProductInput) (models.Product, error)
	Update(ctx context.Context, id string, patch catalog.ProductPatch) (models.Product, error)
	Delete(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int) error
}

type Accounts interface {
	List(ctx context.Context, page models.Page) (users.UserPage, error)
	SetRole(ctx context.Context, id string, role models.Role) (models.User, error)
}

// Feed serves the live order websocket.
type Feed interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	orders   Orders
	catalog  Catalog
	accounts Accounts
	feed     Feed
	log      *slog.Logger
}

func NewHandler(o Orders, c Catalog, a Accounts, feed Feed, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{orders: o, catalog: c, accounts: a, feed: feed, log: log}
}
