package store

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jinstore-backend/models"
)

func TestProductFilter(t *testing.T) {
	yes := true
	lo, hi := int64(500), int64(2000)

	t.Run("empty", func(t *testing.T) {
		if got := productFilter(models.ProductFilter{}); len(got) != 0 {
			t.Fatalf("expected empty filter, got %v", got)
		}
	})

	t.Run("all fields", func(t *testing.T) {
		got := productFilter(models.ProductFilter{
			Search:   "a.b",
			Category: "dairy",
			Trending: &yes,
			MinPrice: &lo,
			MaxPrice: &hi,
			InStock:  true,
		})
		if got["category"] != "dairy" || got["trending"] != true {
			t.Fatalf("unexpected filter %v", got)
		}
		price, ok := got["newPrice"].(bson.M)
		if !ok || price["$gte"] != lo || price["$lte"] != hi {
			t.Fatalf("unexpected price range %v", got["newPrice"])
		}
		if stock := got["stock"].(bson.M); stock["$gt"] != 0 {
			t.Fatalf("unexpected stock filter %v", stock)
		}
		or := got["$or"].(bson.A)
		rx := or[0].(bson.M)["name"].(primitive.Regex)
		if rx.Pattern != `a\.b` || rx.Options != "i" {
			t.Fatalf("search must be escaped and case-insensitive, got %+v", rx)
		}
	})
}

func TestProductSort(t *testing.T) {
	cases := []struct {
		sort  models.ProductSort
		first string
		dir   int
	}{
		{"", "createdAt", -1},
		{models.SortNewest, "createdAt", -1},
		{models.SortPriceAsc, "newPrice", 1},
		{models.SortPriceDesc, "newPrice", -1},
		{models.SortRating, "rating", -1},
		{models.SortName, "name", 1},
	}
	for _, tc := range cases {
		t.Run(string(tc.sort), func(t *testing.T) {
			d := productSort(tc.sort)
			if d[0].Key != tc.first || d[0].Value != tc.dir {
				t.Fatalf("got %v", d)
			}
			if last := d[len(d)-1]; last.Key != "_id" {
				t.Fatalf("sort must end on _id, got %v", d)
			}
		})
	}
}

func TestChangeSetLeavesStockAlone(t *testing.T) {
	name, price := "Oat milk", int64(320)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got := changeSet(models.ProductChanges{Name: &name, NewPrice: &price, UpdatedAt: now})

	want := bson.M{"name": "Oat milk", "newPrice": int64(320), "updatedAt": now}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s = %v, want %v", k, got[k], v)
		}
	}
	for _, k := range []string{"stock", "reviews", "rating", "reviewCount"} {
		if _, ok := got[k]; ok {
			t.Fatalf("%s must not be written by an edit", k)
		}
	}
}
