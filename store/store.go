// Package store keeps the shop's documents in MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"jinstore-backend/models"
)

const (
	colUsers     = "users"
	colProducts  = "products"
	colCarts     = "carts"
	colFavorites = "favorites"
	colOrders    = "orders"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &DB{client: client, db: client.Database(database)}, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

func (d *DB) Users() *Users         { return &Users{col: d.db.Collection(colUsers)} }
func (d *DB) Products() *Products   { return &Products{col: d.db.Collection(colProducts)} }
func (d *DB) Carts() *Carts         { return &Carts{col: d.db.Collection(colCarts)} }
func (d *DB) Favorites() *Favorites { return &Favorites{col: d.db.Collection(colFavorites)} }

func (d *DB) Orders() *Orders {
	return &Orders{
		client:   d.client,
		col:      d.db.Collection(colOrders),
		products: d.db.Collection(colProducts),
	}
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to
// run on every start.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "firebaseUid", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		colProducts: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		colCarts: {
			{Keys: bson.D{{Key: "owner", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colFavorites: {
			{Keys: bson.D{{Key: "owner", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colOrders: {
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "orderRef", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for col, idx := range specs {
		if _, err := d.db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("indexes on %s: %w", col, err)
		}
	}
	return nil
}

// mapErr turns driver errors into the shared sentinels.
func mapErr(what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", what, models.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func findOptions(page models.Page, sort bson.D) *options.FindOptions {
	return options.Find().
		SetSort(sort).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
}
