package catalog

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

type Service struct {
	repo ProductRepo
	now  func() time.Time
}

func NewService(repo ProductRepo) *Service {
	return &Service{repo: repo, now: time.Now}
}

type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	OldPrice    int64    `json:"oldPrice"`
	NewPrice    int64    `json:"newPrice"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Trending    bool     `json:"trending"`
	Images      []string `json:"images"`
}

// ProductPatch carries the fields to change; nil means untouched.
type ProductPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	OldPrice    *int64    `json:"oldPrice"`
	NewPrice    *int64    `json:"newPrice"`
	Stock       *int      `json:"stock"`
	Category    *string   `json:"category"`
	Trending    *bool     `json:"trending"`
	Images      *[]string `json:"images"`
}

type Result struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, models.InvalidInput("malformed product id %q", id)
	}
	return oid, nil
}

func (s *Service) List(ctx context.Context, f models.ProductFilter) (Result, error) {
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	if f.Sort == "" {
		f.Sort = models.SortNewest
	}
	if !f.Sort.Valid() {
		return Result{}, models.InvalidInput("unknown sort %q", f.Sort)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return Result{}, models.InvalidInput("minPrice is above maxPrice")
	}
	f.Page = f.Page.Normalize()

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Result{}, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return Result{Items: items, Total: total, Page: f.Page.Page, Limit: f.Page.Limit}, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return models.Product{}, err
	}
	return s.repo.Get(ctx, oid)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	now := s.now().UTC()
	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		OldPrice:    in.OldPrice,
		NewPrice:    in.NewPrice,
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		Trending:    in.Trending,
		Images:      in.Images,
		Reviews:     []models.Review{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if err := validate(p); err != nil {
		return models.Product{}, err
	}
	return s.repo.Create(ctx, p)
}

// Update changes the patched catalog fields. A stock value in the patch is
// an explicit override and goes through SetStock.
func (s *Service) Update(ctx context.Context, id string, patch ProductPatch) (models.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return models.Product{}, err
	}

	ch := models.ProductChanges{
		Description: patch.Description,
		OldPrice:    patch.OldPrice,
		NewPrice:    patch.NewPrice,
		Trending:    patch.Trending,
		Images:      patch.Images,
		UpdatedAt:   s.now().UTC(),
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		ch.Name = &name
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		ch.Category = &category
	}
	if ch.Images != nil && *ch.Images == nil {
		ch.Images = &[]string{}
	}
	if err := validateChanges(ch, patch.Stock); err != nil {
		return models.Product{}, err
	}

	p, err := s.repo.Update(ctx, oid, ch)
	if err != nil {
		return models.Product{}, err
	}
	if patch.Stock != nil {
		if err := s.repo.SetStock(ctx, oid, *patch.Stock); err != nil {
			return models.Product{}, err
		}
		p.Stock = *patch.Stock
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, oid)
}

func (s *Service) SetStock(ctx context.Context, id string, stock int) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	if stock < 0 {
		return models.InvalidInput("stock cannot be negative")
	}
	return s.repo.SetStock(ctx, oid, stock)
}

// AddReview stores the user's review, replacing an earlier one by the same user.
func (s *Service) AddReview(ctx context.Context, productID string, user models.User, rating int, comment string) (models.Product, error) {
	if rating < 1 || rating > 5 {
		return models.Product{}, models.InvalidInput("rating must be between 1 and 5")
	}
	oid, err := ParseID(productID)
	if err != nil {
		return models.Product{}, err
	}

	now := s.now().UTC()
	return s.repo.PutReview(ctx, oid, models.Review{
		UserID:    user.ID,
		Username:  user.Username,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: now,
	}, now)
}

func validate(p models.Product) error {
	switch {
	case p.Name == "":
		return models.InvalidInput("name is required")
	case p.NewPrice <= 0:
		return models.InvalidInput("newPrice must be positive")
	case p.OldPrice < 0:
		return models.InvalidInput("oldPrice cannot be negative")
	case p.Stock < 0:
		return models.InvalidInput("stock cannot be negative")
	}
	return nil
}

func validateChanges(ch models.ProductChanges, stock *int) error {
	switch {
	case ch.Name != nil && *ch.Name == "":
		return models.InvalidInput("name is required")
	case ch.NewPrice != nil && *ch.NewPrice <= 0:
		return models.InvalidInput("newPrice must be positive")
	case ch.OldPrice != nil && *ch.OldPrice < 0:
		return models.InvalidInput("oldPrice cannot be negative")
	case stock != nil && *stock < 0:
		return models.InvalidInput("stock cannot be negative")
	}
	return nil
}
