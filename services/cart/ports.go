package cart

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

// CartRepo returns an empty cart for an owner that has none.
type CartRepo interface {
	Get(ctx context.Context, owner models.Owner) (models.Cart, error)
	Save(ctx context.Context, cart models.Cart) (models.Cart, error)
	Delete(ctx context.Context, owner models.Owner) error
}

type ProductReader interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}
