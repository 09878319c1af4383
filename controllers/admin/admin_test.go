package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/auth"
	"jinstore-backend/middleware"
	"jinstore-backend/models"
	"jinstore-backend/services/catalog"
	"jinstore-backend/services/orders"
	"jinstore-backend/services/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeOrders struct {
	orders    map[string]models.Order
	lastActor string
}

func (f *fakeOrders) List(ctx context.Context, filter models.OrderFilter) (orders.Page, error) {
	var items []models.Order
	for _, o := range f.orders {
		if filter.Status == "" || o.Status == filter.Status {
			items = append(items, o)
		}
	}
	return orders.Page{Items: items, Total: int64(len(items)), Page: filter.Page.Page, Limit: filter.Page.Limit}, nil
}

func (f *fakeOrders) Get(ctx context.Context, id string) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id, status, actor string) (models.Order, error) {
	o, err := f.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	to, err := models.ParseStatus(status)
	if err != nil {
		return models.Order{}, models.InvalidInput("unknown status %q", status)
	}
	if _, err := models.ApplyTransition(&o, to, actor, time.Now()); err != nil {
		return models.Order{}, err
	}
	f.orders[id] = o
	f.lastActor = actor
	return o, nil
}

func (f *fakeOrders) Delete(ctx context.Context, id string) error {
	delete(f.orders, id)
	return nil
}

func (f *fakeOrders) Stats(ctx context.Context) (orders.Stats, error) {
	return orders.Stats{ByStatus: map[models.OrderStatus]int64{models.StatusPending: 1}, Total: 1}, nil
}

type fakeCatalog struct{}

func (fakeCatalog) List(ctx context.Context, f models.ProductFilter) (catalog.Result, error) {
	return catalog.Result{Items: []models.Product{{ID: primitive.NewObjectID(), Name: "Milk"}}, Total: 1}, nil
}

func (fakeCatalog) Create(ctx context.Context, in catalog.ProductInput) (models.Product, error) {
	if in.NewPrice <= 0 {
		return models.Product{}, models.InvalidInput("newPrice must be positive")
	}
	return models.Product{ID: primitive.NewObjectID(), Name: in.Name, NewPrice: in.NewPrice}, nil
}

func (fakeCatalog) Update(ctx context.Context, id string, patch catalog.ProductPatch) (models.Product, error) {
	return models.Product{}, models.ErrNotFound
}

func (fakeCatalog) Delete(ctx context.Context, id string) error { return nil }

func (fakeCatalog) SetStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return models.InvalidInput("stock cannot be negative")
	}
	return nil
}

type fakeAccounts struct{}

func (fakeAccounts) List(ctx context.Context, page models.Page) (users.UserPage, error) {
	return users.UserPage{Items: []models.User{}, Page: page.Page, Limit: page.Limit}, nil
}

func (fakeAccounts) SetRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	return models.User{Role: role}, nil
}

type fixture struct {
	router  *gin.Engine
	orders  *fakeOrders
	adminID primitive.ObjectID
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens := auth.NewTokens("secret", time.Hour)
	f := &fixture{
		orders:  &fakeOrders{orders: map[string]models.Order{}},
		adminID: primitive.NewObjectID(),
	}
	f.token, _, _ = tokens.Issue(f.adminID.Hex(), string(models.RoleAdmin), auth.KindUser)

	h := NewHandler(f.orders, fakeCatalog{}, fakeAccounts{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := gin.New()
	g := r.Group("/api/admin", middleware.Authenticate(tokens), middleware.RequireAdmin)
	g.GET("/orders", h.ListOrders)
	g.GET("/orders/export", h.ExportOrders)
	g.GET("/orders/:id", h.GetOrder)
	g.PUT("/orders/:id/status", h.UpdateOrderStatus)
	g.GET("/stats", h.Stats)
	g.POST("/products", h.CreateProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.PUT("/products/:id/stock", h.SetStock)
	g.GET("/products/export", h.ExportProducts)
	g.PUT("/users/:id/role", h.SetRole)
	f.router = r
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestOrderStatusWorkflow(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.orders.orders[id.Hex()] = models.Order{ID: id, Status: models.StatusPending}
	path := "/api/admin/orders/" + id.Hex() + "/status"

	steps := []struct {
		status string
		want   int
	}{
		{"Shipping", http.StatusConflict},
		{"in_process", http.StatusOK},
		{"shipped", http.StatusBadRequest},
		{"Shipping", http.StatusOK},
		{"Completed", http.StatusOK},
		{"Cancelled", http.StatusConflict},
		{"Refunded", http.StatusOK},
	}
	for _, s := range steps {
		w := f.do(http.MethodPut, path, fmt.Sprintf(`{"status":%q}`, s.status))
		if w.Code != s.want {
			t.Fatalf("%s: %d, want %d (%s)", s.status, w.Code, s.want, w.Body.String())
		}
	}
	if got := f.orders.orders[id.Hex()].Status; got != models.StatusRefunded {
		t.Fatalf("final status %s", got)
	}
	if f.orders.lastActor != "admin:"+f.adminID.Hex() {
		t.Fatalf("actor = %q", f.orders.lastActor)
	}

	w := f.do(http.MethodGet, "/api/admin/orders/"+id.Hex(), "")
	var body struct {
		Next []models.OrderStatus `json:"next"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusOK || len(body.Next) != 0 {
		t.Fatalf("refunded order has no next step: %s", w.Body.String())
	}
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/admin/orders?status=bogus", "", http.StatusBadRequest},
		{http.MethodGet, "/api/admin/orders?status=pending", "", http.StatusOK},
		{http.MethodGet, "/api/admin/stats", "", http.StatusOK},
		{http.MethodPost, "/api/admin/products", `{"name":"Milk","newPrice":250}`, http.StatusCreated},
		{http.MethodPost, "/api/admin/products", `{"name":"Milk"}`, http.StatusBadRequest},
		{http.MethodPut, "/api/admin/products/x", `{"name":"Milk"}`, http.StatusNotFound},
		{http.MethodPut, "/api/admin/products/x/stock", `{"stock":-1}`, http.StatusBadRequest},
		{http.MethodPut, "/api/admin/products/x/stock", `{"stock":0}`, http.StatusOK},
		{http.MethodPut, "/api/admin/users/" + f.adminID.Hex() + "/role", `{"role":"customer"}`, http.StatusBadRequest},
		{http.MethodPut, "/api/admin/users/" + primitive.NewObjectID().Hex() + "/role", `{"role":"admin"}`, http.StatusOK},
	}
	for _, tc := range cases {
		if w := f.do(tc.method, tc.path, tc.body); w.Code != tc.want {
			t.Errorf("%s %s: %d, want %d (%s)", tc.method, tc.path, w.Code, tc.want, w.Body.String())
		}
	}
}

func TestExports(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.orders.orders[id.Hex()] = models.Order{ID: id, OrderRef: "20260101-AAAAAAAA", Status: models.StatusCompleted}

	for _, path := range []string{"/api/admin/orders/export", "/api/admin/products/export"} {
		w := f.do(http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", path, w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/vnd.openxmlformats") {
			t.Fatalf("%s: content type %q", path, ct)
		}
		if !strings.Contains(w.Header().Get("Content-Disposition"), ".xlsx") || w.Body.Len() == 0 {
			t.Fatalf("%s: bad download headers or empty body", path)
		}
	}
}

func TestNonAdminRejected(t *testing.T) {
	f := newFixture(t)
	tokens := auth.NewTokens("secret", time.Hour)
	f.token, _, _ = tokens.Issue(primitive.NewObjectID().Hex(), string(models.RoleCustomer), auth.KindUser)
	if w := f.do(http.MethodGet, "/api/admin/stats", ""); w.Code != http.StatusForbidden {
		t.Fatalf("customer got %d", w.Code)
	}
}
