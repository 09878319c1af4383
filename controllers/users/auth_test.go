package users

import (
	"context"
	"encoding/json"
	"errors"
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
	"jinstore-backend/models"
	"jinstore-backend/services/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts struct {
	user models.User
}

func (f *fakeAccounts) Register(ctx context.Context, in users.RegisterInput) (models.User, error) {
	if in.Email == f.user.Email {
		return models.User{}, models.ErrConflict
	}
	return models.User{ID: primitive.NewObjectID(), Email: in.Email, Role: models.RoleCustomer}, nil
}

func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	if email != f.user.Email || password != "secret-123" {
		return models.User{}, models.ErrUnauthorized
	}
	return f.user, nil
}

func (f *fakeAccounts) LoginWithFirebase(ctx context.Context, id auth.Identity) (models.User, error) {
	return f.user, nil
}

func (f *fakeAccounts) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	if id != f.user.ID {
		return models.User{}, models.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, id primitive.ObjectID, in users.ProfileInput) (models.User, error) {
	return f.user, nil
}

func (f *fakeAccounts) AddAddress(ctx context.Context, id primitive.ObjectID, a models.Address) (models.User, error) {
	f.user.Addresses = append(f.user.Addresses, a)
	return f.user, nil
}

func (f *fakeAccounts) UpdateAddress(ctx context.Context, id primitive.ObjectID, index int, a models.Address) (models.User, error) {
	return f.user, nil
}

func (f *fakeAccounts) RemoveAddress(ctx context.Context, id primitive.ObjectID, index int) (models.User, error) {
	if index >= len(f.user.Addresses) {
		return models.User{}, models.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeAccounts) SetPrimaryAddress(ctx context.Context, id primitive.ObjectID, index int) (models.User, error) {
	return f.user, nil
}

type fakeMerger struct {
	guest, user models.Owner
	err         error
}

func (m *fakeMerger) Merge(ctx context.Context, guest, user models.Owner) (bool, error) {
	m.guest, m.user = guest, user
	return m.err == nil, m.err
}

type fixture struct {
	router    *gin.Engine
	tokens    *auth.Tokens
	accounts  *fakeAccounts
	cart      *fakeMerger
	favorites *fakeMerger
}

func newFixture() *fixture {
	f := &fixture{
		tokens:    auth.NewTokens("secret", time.Hour),
		accounts:  &fakeAccounts{user: models.User{ID: primitive.NewObjectID(), Email: "ana@example.com", Role: models.RoleCustomer}},
		cart:      &fakeMerger{},
		favorites: &fakeMerger{err: errors.New("mongo down")},
	}
	var noFirebase *auth.FirebaseVerifier
	h := NewHandler(Deps{
		Accounts:    f.accounts,
		UserTokens:  f.tokens,
		GuestTokens: f.tokens,
		Parser:      f.tokens,
		Firebase:    noFirebase,
		Cart:        f.cart,
		Favorites:   f.favorites,
		Log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/firebase", h.FirebaseLogin)
	r.POST("/api/auth/guest", h.Guest)
	f.router = r
	return f
}

func (f *fixture) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGuestThenLoginMerges(t *testing.T) {
	f := newFixture()

	w := f.post("/api/auth/guest", `{}`)
	var guest struct {
		GuestID string `json:"guestId"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &guest); err != nil || guest.Token == "" {
		t.Fatalf("guest: %d %s", w.Code, w.Body.String())
	}
	claims, err := f.tokens.Parse(guest.Token)
	if err != nil || claims.Kind != auth.KindGuest || claims.Subject != guest.GuestID {
		t.Fatalf("guest token: %v %+v", err, claims)
	}

	w = f.post("/api/auth/login", `{"email":"ana@example.com","password":"secret-123","guestToken":"`+guest.Token+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" || resp.MergeStatus == nil {
		t.Fatalf("unexpected response %s", w.Body.String())
	}
	if resp.MergeStatus.Cart != mergeDone || resp.MergeStatus.Favorites != mergeFailed {
		t.Fatalf("merge status = %+v", resp.MergeStatus)
	}
	if f.cart.guest != models.GuestOwner(guest.GuestID) || f.cart.user != models.UserOwner(f.accounts.user.ID) {
		t.Fatalf("merged %q into %q", f.cart.guest, f.cart.user)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture()
	cases := []struct {
		path, body string
		want       int
	}{
		{"/api/auth/login", `{"email":"ana@example.com","password":"wrong-pass"}`, http.StatusUnauthorized},
		{"/api/auth/login", `{"email":"ana@example.com"}`, http.StatusBadRequest},
		{"/api/auth/register", `{"username":"a","email":"ana@example.com","password":"secret-123"}`, http.StatusConflict},
		{"/api/auth/firebase", `{"idToken":"abc"}`, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if w := f.post(tc.path, tc.body); w.Code != tc.want {
			t.Errorf("%s %s: %d, want %d", tc.path, tc.body, w.Code, tc.want)
		}
	}
}

func TestRegisterStartsSession(t *testing.T) {
	f := newFixture()
	w := f.post("/api/auth/register", `{"username":"kim","email":"kim@example.com","password":"secret-123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	var resp sessionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.MergeStatus != nil || resp.User.Email != "kim@example.com" {
		t.Fatalf("unexpected %s", w.Body.String())
	}
	if _, err := f.tokens.Parse(resp.Token); err != nil {
		t.Fatalf("token: %v", err)
	}
}
