package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"jinstore-backend/models"
)

// Carts stores one document per owner; a missing one reads as empty.
type Carts struct {
	col *mongo.Collection
}

func (r *Carts) Get(ctx context.Context, owner models.Owner) (models.Cart, error) {
	var c models.Cart
	err := r.col.FindOne(ctx, bson.M{"owner": owner}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{Owner: owner, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, mapErr("find cart", err)
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return c, nil
}

func (r *Carts) Save(ctx context.Context, c models.Cart) (models.Cart, error) {
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"items": c.Items, "updatedAt": c.UpdatedAt}}

	var saved models.Cart
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"owner": c.Owner}, update, opts).Decode(&saved); err != nil {
		return models.Cart{}, mapErr("save cart", err)
	}
	return saved, nil
}

func (r *Carts) Delete(ctx context.Context, owner models.Owner) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"owner": owner}); err != nil {
		return mapErr("delete cart", err)
	}
	return nil
}

type Favorites struct {
	col *mongo.Collection
}

func (r *Favorites) Get(ctx context.Context, owner models.Owner) (models.Favorites, error) {
	var f models.Favorites
	err := r.col.FindOne(ctx, bson.M{"owner": owner}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Favorites{Owner: owner, Items: []models.FavoriteItem{}}, nil
	}
	if err != nil {
		return models.Favorites{}, mapErr("find favorites", err)
	}
	if f.Items == nil {
		f.Items = []models.FavoriteItem{}
	}
	return f, nil
}

func (r *Favorites) Save(ctx context.Context, f models.Favorites) (models.Favorites, error) {
	if f.Items == nil {
		f.Items = []models.FavoriteItem{}
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"items": f.Items, "updatedAt": f.UpdatedAt}}

	var saved models.Favorites
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"owner": f.Owner}, update, opts).Decode(&saved); err != nil {
		return models.Favorites{}, mapErr("save favorites", err)
	}
	return saved, nil
}

func (r *Favorites) Delete(ctx context.Context, owner models.Owner) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"owner": owner}); err != nil {
		return mapErr("delete favorites", err)
	}
	return nil
}
