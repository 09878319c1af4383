package cart

import (
	"context"
	"encoding/json"
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
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memCarts keeps carts per owner and enforces nothing beyond that.
type memCarts struct {
	carts map[models.Owner]models.Cart
}

func (m *memCarts) Get(ctx context.Context, owner models.Owner) (models.Cart, error) {
	c, ok := m.carts[owner]
	if !ok {
		return models.Cart{Owner: owner, Items: []models.CartItem{}}, nil
	}
	return c, nil
}

func (m *memCarts) Add(ctx context.Context, owner models.Owner, pid primitive.ObjectID, qty int) (models.Cart, error) {
	c, _ := m.Get(ctx, owner)
	if i := c.Find(pid); i >= 0 {
		c.Items[i].Quantity += qty
	} else {
		c.Items = append(c.Items, models.CartItem{ProductID: pid, Price: 100, Quantity: qty})
	}
	m.carts[owner] = c
	return c, nil
}

func (m *memCarts) SetQuantity(ctx context.Context, owner models.Owner, pid primitive.ObjectID, qty int) (models.Cart, error) {
	c, _ := m.Get(ctx, owner)
	i := c.Find(pid)
	if i < 0 {
		return models.Cart{}, models.ErrNotFound
	}
	c.Items[i].Quantity = qty
	m.carts[owner] = c
	return c, nil
}

func (m *memCarts) Remove(ctx context.Context, owner models.Owner, pid primitive.ObjectID) (models.Cart, error) {
	return m.Get(ctx, owner)
}

func (m *memCarts) Clear(ctx context.Context, owner models.Owner) (models.Cart, error) {
	delete(m.carts, owner)
	return m.Get(ctx, owner)
}

func TestCartRoutesUseTokenOwner(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	guestToken, _, _ := tokens.Issue("g-1", "guest", auth.KindGuest)

	store := &memCarts{carts: map[models.Owner]models.Cart{}}
	h := NewHandler(store)
	r := gin.New()
	g := r.Group("/api", middleware.Authenticate(tokens), middleware.RequireOwner)
	g.GET("/cart", h.Get)
	g.POST("/cart", h.Add)
	g.PUT("/cart/:productId", h.SetQuantity)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+guestToken)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	pid := primitive.NewObjectID().Hex()
	if w := do(http.MethodPost, "/api/cart", `{"productId":"`+pid+`"}`); w.Code != http.StatusOK {
		t.Fatalf("add: %d %s", w.Code, w.Body.String())
	}
	w := do(http.MethodPost, "/api/cart", `{"productId":"`+pid+`","quantity":2}`)

	var view struct {
		Owner models.Owner      `json:"owner"`
		Items []models.CartItem `json:"items"`
		Total int64             `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Owner != models.GuestOwner("g-1") || view.Items[0].Quantity != 3 || view.Total != 300 {
		t.Fatalf("unexpected cart %+v", view)
	}

	if w := do(http.MethodPost, "/api/cart", `{"productId":"nope"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}
	if w := do(http.MethodPut, "/api/cart/"+primitive.NewObjectID().Hex(), `{"quantity":1}`); w.Code != http.StatusNotFound {
		t.Fatalf("missing line: %d", w.Code)
	}
	if w := do(http.MethodPut, "/api/cart/"+pid, `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing quantity: %d", w.Code)
	}
}
