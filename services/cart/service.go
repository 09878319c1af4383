package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

type Service struct {
	repo     CartRepo
	products ProductReader
	now      func() time.Time
}

func NewService(repo CartRepo, products ProductReader) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

func (s *Service) Get(ctx context.Context, owner models.Owner) (models.Cart, error) {
	c, err := s.repo.Get(ctx, owner)
	if err != nil {
		return models.Cart{}, err
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return c, nil
}

// Add puts quantity more of the product in the cart, snapshotting its
// current name, price and image.
func (s *Service) Add(ctx context.Context, owner models.Owner, productID primitive.ObjectID, quantity int) (models.Cart, error) {
	if quantity < 1 || quantity > models.MaxLineQuantity {
		return models.Cart{}, models.InvalidInput("quantity must be between 1 and %d", models.MaxLineQuantity)
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return models.Cart{}, err
	}

	c, err := s.Get(ctx, owner)
	if err != nil {
		return models.Cart{}, err
	}

	have := 0
	idx := c.Find(productID)
	if idx >= 0 {
		have = c.Items[idx].Quantity
	}
	if quantity > models.MaxLineQuantity-have {
		return models.Cart{}, models.InvalidInput("a cart line holds at most %d", models.MaxLineQuantity)
	}
	if err := checkStock(p, have, quantity); err != nil {
		return models.Cart{}, err
	}

	line := snapshot(p, have+quantity)
	if idx >= 0 {
		c.Items[idx] = line
	} else {
		c.Items = append(c.Items, line)
	}
	return s.save(ctx, c)
}

// SetQuantity overwrites the line quantity; zero removes the line.
func (s *Service) SetQuantity(ctx context.Context, owner models.Owner, productID primitive.ObjectID, quantity int) (models.Cart, error) {
	if quantity < 0 || quantity > models.MaxLineQuantity {
		return models.Cart{}, models.InvalidInput("quantity must be between 0 and %d", models.MaxLineQuantity)
	}
	if quantity == 0 {
		return s.Remove(ctx, owner, productID)
	}

	c, err := s.Get(ctx, owner)
	if err != nil {
		return models.Cart{}, err
	}
	idx := c.Find(productID)
	if idx < 0 {
		return models.Cart{}, fmt.Errorf("cart item: %w", models.ErrNotFound)
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return models.Cart{}, err
	}
	if err := checkStock(p, 0, quantity); err != nil {
		return models.Cart{}, err
	}
	c.Items[idx] = snapshot(p, quantity)
	return s.save(ctx, c)
}

func (s *Service) Remove(ctx context.Context, owner models.Owner, productID primitive.ObjectID) (models.Cart, error) {
	c, err := s.Get(ctx, owner)
	if err != nil {
		return models.Cart{}, err
	}
	idx := c.Find(productID)
	if idx < 0 {
		return models.Cart{}, fmt.Errorf("cart item: %w", models.ErrNotFound)
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return s.save(ctx, c)
}

func (s *Service) Clear(ctx context.Context, owner models.Owner) (models.Cart, error) {
	c, err := s.Get(ctx, owner)
	if err != nil {
		return models.Cart{}, err
	}
	c.Items = []models.CartItem{}
	return s.save(ctx, c)
}

// Merge folds the guest cart into the user cart and deletes the guest cart.
// Quantities add up and are capped at current stock; lines whose product is
// gone or sold out are dropped. It reports whether anything was merged.
func (s *Service) Merge(ctx context.Context, guest, user models.Owner) (bool, error) {
	gc, err := s.repo.Get(ctx, guest)
	if err != nil {
		return false, err
	}
	if len(gc.Items) == 0 {
		return false, nil
	}

	uc, err := s.Get(ctx, user)
	if err != nil {
		return false, err
	}

	merged := false
	for _, gi := range gc.Items {
		p, err := s.products.Get(ctx, gi.ProductID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}

		have := 0
		idx := uc.Find(gi.ProductID)
		if idx >= 0 {
			have = uc.Items[idx].Quantity
		}
		add := gi.Quantity
		if room := min(p.Stock, models.MaxLineQuantity) - have; add > room {
			add = room
		}
		if add < 1 {
			continue
		}

		line := snapshot(p, have+add)
		if idx >= 0 {
			uc.Items[idx] = line
		} else {
			uc.Items = append(uc.Items, line)
		}
		merged = true
	}

	if merged {
		if _, err := s.save(ctx, uc); err != nil {
			return false, err
		}
	}
	if err := s.repo.Delete(ctx, guest); err != nil {
		return merged, err
	}
	return merged, nil
}

func (s *Service) save(ctx context.Context, c models.Cart) (models.Cart, error) {
	c.UpdatedAt = s.now().UTC()
	return s.repo.Save(ctx, c)
}

func snapshot(p models.Product, quantity int) models.CartItem {
	return models.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.NewPrice,
		Image:     p.Image(),
		Quantity:  quantity,
	}
}

// checkStock fails when have plus more exceeds stock. It compares more with
// the room left so the sum is never formed unchecked.
func checkStock(p models.Product, have, more int) error {
	if more <= p.Stock-have {
		return nil
	}
	return &models.StockError{Shortages: []models.Shortage{{
		ProductID: p.ID.Hex(),
		Name:      p.Name,
		Requested: have + more,
		Available: p.Stock,
	}}}
}
