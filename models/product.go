package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Username  string             `bson:"username" json:"username"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Product prices are in cents.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	OldPrice    int64              `bson:"oldPrice" json:"oldPrice"`
	NewPrice    int64              `bson:"newPrice" json:"newPrice"`
	Stock       int                `bson:"stock" json:"stock"`
	Category    string             `bson:"category" json:"category"`
	Trending    bool               `bson:"trending" json:"trending"`
	Images      []string           `bson:"images" json:"images"`
	Reviews     []Review           `bson:"reviews" json:"reviews"`
	Rating      float64            `bson:"rating" json:"rating"`
	ReviewCount int                `bson:"reviewCount" json:"reviewCount"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductChanges lists catalog fields to overwrite; nil leaves a field as
// stored. Stock and reviews are not here: they only move through their own
// single-field writes so edits cannot undo them.
type ProductChanges struct {
	Name        *string
	Description *string
	OldPrice    *int64
	NewPrice    *int64
	Category    *string
	Trending    *bool
	Images      *[]string
	UpdatedAt   time.Time
}

// Apply copies the set fields onto p.
func (c ProductChanges) Apply(p *Product) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.OldPrice != nil {
		p.OldPrice = *c.OldPrice
	}
	if c.NewPrice != nil {
		p.NewPrice = *c.NewPrice
	}
	if c.Category != nil {
		p.Category = *c.Category
	}
	if c.Trending != nil {
		p.Trending = *c.Trending
	}
	if c.Images != nil {
		p.Images = *c.Images
	}
	p.UpdatedAt = c.UpdatedAt
}

func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// UpsertReview replaces the review left by the same user or appends a new
// one, then recomputes Rating and ReviewCount. The store does the same in a
// single pipeline update; this is the in-memory form of that rule.
func (p *Product) UpsertReview(r Review) {
	replaced := false
	for i := range p.Reviews {
		if p.Reviews[i].UserID == r.UserID {
			p.Reviews[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		p.Reviews = append(p.Reviews, r)
	}

	p.ReviewCount = len(p.Reviews)
	if p.ReviewCount == 0 {
		p.Rating = 0
		return
	}
	sum := 0
	for _, rv := range p.Reviews {
		sum += rv.Rating
	}
	p.Rating = float64(sum) / float64(p.ReviewCount)
}
