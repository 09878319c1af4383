package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type Address struct {
	Label      string `bson:"label" json:"label"`
	FullName   string `bson:"fullName" json:"fullName" binding:"required"`
	Phone      string `bson:"phone" json:"phone" binding:"required"`
	Street     string `bson:"street" json:"street" binding:"required"`
	City       string `bson:"city" json:"city" binding:"required"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country" binding:"required"`
}

type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username            string             `bson:"username" json:"username"`
	Email               string             `bson:"email" json:"email"`
	PasswordHash        string             `bson:"passwordHash,omitempty" json:"-"`
	FirebaseUID         string             `bson:"firebaseUid,omitempty" json:"-"`
	Role                Role               `bson:"role" json:"role"`
	Addresses           []Address          `bson:"addresses" json:"addresses"`
	PrimaryAddressIndex int                `bson:"primaryAddressIndex" json:"primaryAddressIndex"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
	// Version guards updates against writers that read an older copy.
	Version int64 `bson:"version" json:"-"`
}

// PrimaryAddress returns the address at PrimaryAddressIndex, if any.
func (u User) PrimaryAddress() (Address, bool) {
	if u.PrimaryAddressIndex < 0 || u.PrimaryAddressIndex >= len(u.Addresses) {
		return Address{}, false
	}
	return u.Addresses[u.PrimaryAddressIndex], true
}
