package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Owner keys a cart or favorites document: "user:<hex id>" or "guest:<guest id>".
type Owner string

func UserOwner(id primitive.ObjectID) Owner { return Owner("user:" + id.Hex()) }

func GuestOwner(guestID string) Owner { return Owner("guest:" + guestID) }

// MaxLineQuantity bounds a single cart or order line.
const MaxLineQuantity = 1000

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     int64              `bson:"price" json:"price"`
	Image     string             `bson:"image" json:"image"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner     Owner              `bson:"owner" json:"owner"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c Cart) Total() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

func (c Cart) Find(productID primitive.ObjectID) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

type FavoriteItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     int64              `bson:"price" json:"price"`
	Image     string             `bson:"image" json:"image"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}

type Favorites struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner     Owner              `bson:"owner" json:"owner"`
	Items     []FavoriteItem     `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (f Favorites) Find(productID primitive.ObjectID) int {
	for i, it := range f.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
