package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"jinstore-backend/models"
)

// Orders needs a replica set (or sharded cluster): status changes run in
// multi-document transactions together with the product stock writes.
type Orders struct {
	client   *mongo.Client
	col      *mongo.Collection
	products *mongo.Collection
}

func (r *Orders) Create(ctx context.Context, o models.Order) (models.Order, error) {
	o.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		return models.Order{}, mapErr("insert order", err)
	}
	return o, nil
}

func (r *Orders) Get(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return models.Order{}, mapErr("find order", err)
	}
	return o, nil
}

// List returns newest orders first.
func (r *Orders) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.CustomerID.IsZero() {
		filter["customerId"] = f.CustomerID
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapErr("count orders", err)
	}
	cur, err := r.col.Find(ctx, filter, findOptions(f.Page, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, 0, mapErr("list orders", err)
	}
	var out []models.Order
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mapErr("decode orders", err)
	}
	return out, total, nil
}

// Transition applies a status change and the stock movement it implies in
// one transaction. A short line aborts the whole thing, and so does an order
// that is not in status expect (when given).
func (r *Orders) Transition(ctx context.Context, id primitive.ObjectID, expect, to models.OrderStatus, by string, now time.Time) (models.Order, error) {
	sess, err := r.client.StartSession()
	if err != nil {
		return models.Order{}, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	res, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var o models.Order
		if err := r.col.FindOne(sc, bson.M{"_id": id}).Decode(&o); err != nil {
			return nil, mapErr("find order", err)
		}
		from := o.Status
		if err := models.ExpectStatus(o, expect); err != nil {
			return nil, err
		}

		effect, err := models.ApplyTransition(&o, to, by, now)
		if err != nil {
			return nil, err
		}
		switch effect {
		case models.StockDeduct:
			if err := r.deduct(sc, o.Items); err != nil {
				return nil, err
			}
		case models.StockRestore:
			if err := r.restore(sc, o.Items); err != nil {
				return nil, err
			}
		}

		upd, err := r.col.ReplaceOne(sc, bson.M{"_id": id, "status": from}, o)
		if err != nil {
			return nil, mapErr("update order", err)
		}
		if upd.MatchedCount == 0 {
			return nil, fmt.Errorf("order %s changed concurrently: %w", id.Hex(), models.ErrConflict)
		}
		return o, nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return res.(models.Order), nil
}

// deduct takes every line's quantity off its product, never below zero, and
// reports all short lines at once.
func (r *Orders) deduct(ctx context.Context, items []models.OrderItem) error {
	var short []models.Shortage
	for _, it := range items {
		res, err := r.products.UpdateOne(ctx,
			bson.M{"_id": it.ProductID, "stock": bson.M{"$gte": it.Quantity}},
			bson.M{"$inc": bson.M{"stock": -it.Quantity}},
		)
		if err != nil {
			return mapErr("deduct stock", err)
		}
		if res.MatchedCount == 1 {
			continue
		}

		available, err := r.stockOf(ctx, it.ProductID)
		if err != nil {
			return err
		}
		short = append(short, models.Shortage{
			ProductID: it.ProductID.Hex(),
			Name:      it.Name,
			Requested: it.Quantity,
			Available: available,
		})
	}
	if len(short) > 0 {
		return &models.StockError{Shortages: short}
	}
	return nil
}

// restore puts quantities back. Products deleted since are skipped.
func (r *Orders) restore(ctx context.Context, items []models.OrderItem) error {
	for _, it := range items {
		if _, err := r.products.UpdateOne(ctx,
			bson.M{"_id": it.ProductID},
			bson.M{"$inc": bson.M{"stock": it.Quantity}},
		); err != nil {
			return mapErr("restore stock", err)
		}
	}
	return nil
}

func (r *Orders) stockOf(ctx context.Context, id primitive.ObjectID) (int, error) {
	var doc struct {
		Stock int `bson:"stock"`
	}
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, mapErr("read stock", err)
	}
	return doc.Stock, nil
}

func (r *Orders) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr("delete order", err)
	}
	if res.DeletedCount == 0 {
		return mapErr("delete order", mongo.ErrNoDocuments)
	}
	return nil
}

func (r *Orders) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr("count by status", err)
	}
	var rows []struct {
		Status models.OrderStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, mapErr("decode status counts", err)
	}

	out := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// Revenue sums the totals of completed orders.
func (r *Orders) Revenue(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: models.StatusCompleted}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, mapErr("revenue", err)
	}
	var rows []struct {
		Revenue int64 `bson:"revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, mapErr("decode revenue", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Revenue, nil
}
