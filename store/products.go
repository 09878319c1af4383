package store

import (
	"context"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"jinstore-backend/models"
)

type Products struct {
	col *mongo.Collection
}

func (r *Products) Create(ctx context.Context, p models.Product) (models.Product, error) {
	p.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return models.Product{}, mapErr("insert product", err)
	}
	return p, nil
}

func (r *Products) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Product{}, mapErr("find product", err)
	}
	return p, nil
}

func (r *Products) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	filter := productFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapErr("count products", err)
	}
	cur, err := r.col.Find(ctx, filter, findOptions(f.Page, productSort(f.Sort)))
	if err != nil {
		return nil, 0, mapErr("list products", err)
	}
	var out []models.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mapErr("decode products", err)
	}
	return out, total, nil
}

// Update sets the changed catalog fields only, so it never overwrites stock
// moved by an order in the meantime.
func (r *Products) Update(ctx context.Context, id primitive.ObjectID, ch models.ProductChanges) (models.Product, error) {
	var p models.Product
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": changeSet(ch)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return models.Product{}, mapErr("update product", err)
	}
	return p, nil
}

// PutReview swaps in the user's review and recomputes rating and count in
// one pipeline update.
func (r *Products) PutReview(ctx context.Context, id primitive.ObjectID, rv models.Review, now time.Time) (models.Product, error) {
	var p models.Product
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, reviewPipeline(rv, now),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return models.Product{}, mapErr("put review", err)
	}
	return p, nil
}

func (r *Products) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr("delete product", err)
	}
	if res.DeletedCount == 0 {
		return mapErr("delete product", mongo.ErrNoDocuments)
	}
	return nil
}

func (r *Products) SetStock(ctx context.Context, id primitive.ObjectID, stock int) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"stock": stock}})
	if err != nil {
		return mapErr("set stock", err)
	}
	if res.MatchedCount == 0 {
		return mapErr("set stock", mongo.ErrNoDocuments)
	}
	return nil
}

func (r *Products) Categories(ctx context.Context) ([]string, error) {
	raw, err := r.col.Distinct(ctx, "category", bson.M{"category": bson.M{"$ne": ""}})
	if err != nil {
		return nil, mapErr("distinct categories", err)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func changeSet(ch models.ProductChanges) bson.M {
	set := bson.M{"updatedAt": ch.UpdatedAt}
	if ch.Name != nil {
		set["name"] = *ch.Name
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}
	if ch.OldPrice != nil {
		set["oldPrice"] = *ch.OldPrice
	}
	if ch.NewPrice != nil {
		set["newPrice"] = *ch.NewPrice
	}
	if ch.Category != nil {
		set["category"] = *ch.Category
	}
	if ch.Trending != nil {
		set["trending"] = *ch.Trending
	}
	if ch.Images != nil {
		set["images"] = *ch.Images
	}
	return set
}

func reviewPipeline(rv models.Review, now time.Time) mongo.Pipeline {
	others := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}}},
		{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this.userId", rv.UserID}}}},
	}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "reviews", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				others,
				bson.A{bson.D{{Key: "$literal", Value: rv}}},
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "reviewCount", Value: bson.D{{Key: "$size", Value: "$reviews"}}},
			{Key: "rating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
			{Key: "updatedAt", Value: now},
		}}},
	}
}

func productFilter(f models.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Trending != nil {
		filter["trending"] = *f.Trending
	}
	if f.InStock {
		filter["stock"] = bson.M{"$gt": 0}
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["newPrice"] = price
	}

	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
		}
	}
	return filter
}

// productSort always ends on _id so pages are stable.
func productSort(s models.ProductSort) bson.D {
	var d bson.D
	switch s {
	case models.SortPriceAsc:
		d = bson.D{{Key: "newPrice", Value: 1}}
	case models.SortPriceDesc:
		d = bson.D{{Key: "newPrice", Value: -1}}
	case models.SortRating:
		d = bson.D{{Key: "rating", Value: -1}, {Key: "reviewCount", Value: -1}}
	case models.SortName:
		d = bson.D{{Key: "name", Value: 1}}
	default:
		d = bson.D{{Key: "createdAt", Value: -1}}
	}
	return append(d, bson.E{Key: "_id", Value: -1})
}
