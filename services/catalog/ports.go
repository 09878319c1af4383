package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

type ProductRepo interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error)
	// Update sets only the fields named in ch and returns the stored product.
	Update(ctx context.Context, id primitive.ObjectID, ch models.ProductChanges) (models.Product, error)
	// PutReview replaces the user's review or appends it, recomputing the
	// rating in the same write.
	PutReview(ctx context.Context, id primitive.ObjectID, r models.Review, now time.Time) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetStock(ctx context.Context, id primitive.ObjectID, stock int) error
	Categories(ctx context.Context) ([]string, error)
}
