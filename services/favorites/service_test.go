package favorites

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

type memFavorites map[models.Owner]models.Favorites

func (m memFavorites) Get(ctx context.Context, owner models.Owner) (models.Favorites, error) {
	f, ok := m[owner]
	if !ok {
		return models.Favorites{Owner: owner}, nil
	}
	f.Items = append([]models.FavoriteItem(nil), f.Items...)
	return f, nil
}

func (m memFavorites) Save(ctx context.Context, f models.Favorites) (models.Favorites, error) {
	m[f.Owner] = f
	return f, nil
}

func (m memFavorites) Delete(ctx context.Context, owner models.Owner) error {
	delete(m, owner)
	return nil
}

type memProducts map[primitive.ObjectID]models.Product

func (m memProducts) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	p, ok := m[id]
	if !ok {
		return models.Product{}, models.ErrNotFound
	}
	return p, nil
}

func TestAddIsIdempotentAndToggle(t *testing.T) {
	ctx := context.Background()
	tea := models.Product{ID: primitive.NewObjectID(), Name: "tea", NewPrice: 450}
	svc := NewService(memFavorites{}, memProducts{tea.ID: tea})
	owner := models.GuestOwner("g")

	svc.Add(ctx, owner, tea.ID)
	f, err := svc.Add(ctx, owner, tea.ID)
	if err != nil || len(f.Items) != 1 || f.Items[0].Price != 450 {
		t.Fatalf("add twice: %v %+v", err, f)
	}

	f, on, err := svc.Toggle(ctx, owner, tea.ID)
	if err != nil || on || len(f.Items) != 0 {
		t.Fatalf("toggle off: on=%v err=%v %+v", on, err, f)
	}
	f, on, err = svc.Toggle(ctx, owner, tea.ID)
	if err != nil || !on || len(f.Items) != 1 {
		t.Fatalf("toggle on: on=%v err=%v %+v", on, err, f)
	}

	if _, err := svc.Remove(ctx, owner, primitive.NewObjectID()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := svc.Toggle(ctx, owner, primitive.NewObjectID()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("toggling an unknown product should fail, got %v", err)
	}
}

func TestMergeUnion(t *testing.T) {
	ctx := context.Background()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	favs := memFavorites{}
	svc := NewService(favs, memProducts{})
	guest, user := models.GuestOwner("g"), models.UserOwner(primitive.NewObjectID())

	favs[guest] = models.Favorites{Owner: guest, Items: []models.FavoriteItem{{ProductID: a}, {ProductID: b}}}
	favs[user] = models.Favorites{Owner: user, Items: []models.FavoriteItem{{ProductID: a}}}

	merged, err := svc.Merge(ctx, guest, user)
	if err != nil || !merged {
		t.Fatalf("merged=%v err=%v", merged, err)
	}
	if got := len(favs[user].Items); got != 2 {
		t.Fatalf("expected 2 favorites, got %d", got)
	}
	if _, ok := favs[guest]; ok {
		t.Fatal("guest favorites should be deleted")
	}
}
