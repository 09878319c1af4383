package users

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/auth"
	"jinstore-backend/models"
	"jinstore-backend/services/users"
)

type Accounts interface {
	Register(ctx context.Context, in users.RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	LoginWithFirebase(ctx context.Context, id auth.Identity) (models.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in users.ProfileInput) (models.User, error)
	AddAddress(ctx context.Context, id primitive.ObjectID, a models.Address) (models.User, error)
	UpdateAddress(ctx context.Context, id primitive.ObjectID, index int, a models.Address) (models.User, error)
	RemoveAddress(ctx context.Context, id primitive.ObjectID, index int) (models.User, error)
	SetPrimaryAddress(ctx context.Context, id primitive.ObjectID, index int) (models.User, error)
}

type TokenIssuer interface {
	Issue(subject, role, kind string) (string, time.Time, error)
}

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (auth.Identity, error)
}

// Merger folds a guest's document into the user's. The bool reports
// whether there was anything to merge.
type Merger interface {
	Merge(ctx context.Context, guest, user models.Owner) (bool, error)
}

type Deps struct {
	Accounts    Accounts
	UserTokens  TokenIssuer
	GuestTokens TokenIssuer
	Parser      TokenParser
	Firebase    IdentityVerifier
	Cart        Merger
	Favorites   Merger
	Log         *slog.Logger
}

type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Handler{Deps: d}
}
