package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"jinstore-backend/models"
)

type Users struct {
	col *mongo.Collection
}

func (r *Users) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return models.User{}, mapErr("insert user", err)
	}
	return u, nil
}

func (r *Users) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *Users) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *Users) GetByFirebaseUID(ctx context.Context, uid string) (models.User, error) {
	return r.findOne(ctx, bson.M{"firebaseUid": uid})
}

// Update writes the mutable profile fields when the stored version still
// matches u.Version, and fails with models.ErrStale otherwise. The password
// hash and creation time are never rewritten.
func (r *Users) Update(ctx context.Context, u models.User) (models.User, error) {
	set := bson.M{
		"username":            u.Username,
		"email":               u.Email,
		"role":                u.Role,
		"addresses":           u.Addresses,
		"primaryAddressIndex": u.PrimaryAddressIndex,
		"updatedAt":           u.UpdatedAt,
		"version":             u.Version + 1,
	}
	if u.FirebaseUID != "" {
		set["firebaseUid"] = u.FirebaseUID
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": u.ID, "version": u.Version}, bson.M{"$set": set})
	if err != nil {
		return models.User{}, mapErr("update user", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": u.ID})
		if err != nil {
			return models.User{}, mapErr("update user", err)
		}
		if n == 0 {
			return models.User{}, mapErr("update user", mongo.ErrNoDocuments)
		}
		return models.User{}, fmt.Errorf("update user %s: %w", u.ID.Hex(), models.ErrStale)
	}
	u.Version++
	return u, nil
}

func (r *Users) List(ctx context.Context, page models.Page) ([]models.User, int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, mapErr("count users", err)
	}
	cur, err := r.col.Find(ctx, bson.M{}, findOptions(page, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, mapErr("list users", err)
	}
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mapErr("decode users", err)
	}
	return out, total, nil
}

func (r *Users) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return models.User{}, mapErr("find user", err)
	}
	return u, nil
}
