package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortRating    ProductSort = "rating"
	SortName      ProductSort = "name"
)

func (s ProductSort) Valid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortName:
		return true
	}
	return false
}

type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps Skip far from overflowing; pages past the data are empty anyway.
	MaxPage = 100000
)

// Normalize clamps the page to 1..MaxPage and the limit to 1..MaxPageLimit.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

type ProductFilter struct {
	Search   string
	Category string
	Trending *bool
	MinPrice *int64
	MaxPrice *int64
	InStock  bool
	Sort     ProductSort
	Page     Page
}

type OrderFilter struct {
	Status     OrderStatus
	CustomerID primitive.ObjectID
	Page       Page
}
