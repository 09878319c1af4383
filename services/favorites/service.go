package favorites

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

type Service struct {
	repo     FavoritesRepo
	products ProductReader
	now      func() time.Time
}

func NewService(repo FavoritesRepo, products ProductReader) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

func (s *Service) Get(ctx context.Context, owner models.Owner) (models.Favorites, error) {
	f, err := s.repo.Get(ctx, owner)
	if err != nil {
		return models.Favorites{}, err
	}
	if f.Items == nil {
		f.Items = []models.FavoriteItem{}
	}
	return f, nil
}

// Add is idempotent: a product already in favorites is left as is.
func (s *Service) Add(ctx context.Context, owner models.Owner, productID primitive.ObjectID) (models.Favorites, error) {
	f, err := s.Get(ctx, owner)
	if err != nil {
		return models.Favorites{}, err
	}
	if f.Find(productID) >= 0 {
		return f, nil
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return models.Favorites{}, err
	}
	f.Items = append(f.Items, models.FavoriteItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.NewPrice,
		Image:     p.Image(),
		AddedAt:   s.now().UTC(),
	})
	return s.save(ctx, f)
}

func (s *Service) Remove(ctx context.Context, owner models.Owner, productID primitive.ObjectID) (models.Favorites, error) {
	f, err := s.Get(ctx, owner)
	if err != nil {
		return models.Favorites{}, err
	}
	idx := f.Find(productID)
	if idx < 0 {
		return models.Favorites{}, fmt.Errorf("favorite: %w", models.ErrNotFound)
	}
	f.Items = append(f.Items[:idx], f.Items[idx+1:]...)
	return s.save(ctx, f)
}

// Toggle adds the product when absent and removes it when present. The
// boolean reports whether the product is a favorite afterwards.
func (s *Service) Toggle(ctx context.Context, owner models.Owner, productID primitive.ObjectID) (models.Favorites, bool, error) {
	f, err := s.Get(ctx, owner)
	if err != nil {
		return models.Favorites{}, false, err
	}
	if f.Find(productID) >= 0 {
		f, err = s.Remove(ctx, owner, productID)
		return f, false, err
	}
	f, err = s.Add(ctx, owner, productID)
	return f, err == nil, err
}

func (s *Service) Clear(ctx context.Context, owner models.Owner) (models.Favorites, error) {
	f, err := s.Get(ctx, owner)
	if err != nil {
		return models.Favorites{}, err
	}
	f.Items = []models.FavoriteItem{}
	return s.save(ctx, f)
}

// Merge unions the guest favorites into the user's and deletes the guest list.
func (s *Service) Merge(ctx context.Context, guest, user models.Owner) (bool, error) {
	gf, err := s.repo.Get(ctx, guest)
	if err != nil {
		return false, err
	}
	if len(gf.Items) == 0 {
		return false, nil
	}

	uf, err := s.Get(ctx, user)
	if err != nil {
		return false, err
	}
	merged := false
	for _, it := range gf.Items {
		if uf.Find(it.ProductID) >= 0 {
			continue
		}
		uf.Items = append(uf.Items, it)
		merged = true
	}
	if merged {
		if _, err := s.save(ctx, uf); err != nil {
			return false, err
		}
	}
	if err := s.repo.Delete(ctx, guest); err != nil {
		return merged, err
	}
	return merged, nil
}

func (s *Service) save(ctx context.Context, f models.Favorites) (models.Favorites, error) {
	f.UpdatedAt = s.now().UTC()
	return s.repo.Save(ctx, f)
}
