package favorites

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

type FavoritesRepo interface {
	Get(ctx context.Context, owner models.Owner) (models.Favorites, error)
	Save(ctx context.Context, f models.Favorites) (models.Favorites, error)
	Delete(ctx context.Context, owner models.Owner) error
}

type ProductReader interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}
