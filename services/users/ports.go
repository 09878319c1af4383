package users

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

// UserRepo.Create fails with models.ErrConflict when the email is taken.
type UserRepo interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
	List(ctx context.Context, page models.Page) ([]models.User, int64, error)
}
