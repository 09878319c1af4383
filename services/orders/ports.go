package orders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

type OrderRepo interface {
	Create(ctx context.Context, o models.Order) (models.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error)
	// Transition changes the status and adjusts product stock in one
	// transaction. A non-empty expect must match the status read inside it.
	Transition(ctx context.Context, id primitive.ObjectID, expect, to models.OrderStatus, by string, now time.Time) (models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	Revenue(ctx context.Context) (int64, error)
}

type ProductReader interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}

type CartSource interface {
	Get(ctx context.Context, owner models.Owner) (models.Cart, error)
	Clear(ctx context.Context, owner models.Owner) (models.Cart, error)
}

type UserReader interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Publisher receives order events for live dashboards.
type Publisher interface {
	Publish(event string, o models.Order)
}

// StockInvalidator drops cached product documents after stock moved.
type StockInvalidator interface {
	Invalidate(ctx context.Context, ids ...primitive.ObjectID)
}
