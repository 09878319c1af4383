package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentCard
}

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

func (m ShippingMethod) Valid() bool {
	return m == ShippingStandard || m == ShippingExpress
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice int64              `bson:"unitPrice" json:"unitPrice"`
	Subtotal  int64              `bson:"subtotal" json:"subtotal"`
}

type StatusChange struct {
	From OrderStatus `bson:"from" json:"from"`
	To   OrderStatus `bson:"to" json:"to"`
	By   string      `bson:"by" json:"by"`
	At   time.Time   `bson:"at" json:"at"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderRef        string             `bson:"orderRef" json:"orderRef"`
	CustomerID      primitive.ObjectID `bson:"customerId" json:"customerId"`
	CustomerEmail   string             `bson:"customerEmail" json:"customerEmail"`
	Items           []OrderItem        `bson:"items" json:"items"`
	DeliveryAddress Address            `bson:"deliveryAddress" json:"deliveryAddress"`
	PaymentMethod   PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	ShippingMethod  ShippingMethod     `bson:"shippingMethod" json:"shippingMethod"`
	ShippingCost    int64              `bson:"shippingCost" json:"shippingCost"`
	ItemsTotal      int64              `bson:"itemsTotal" json:"itemsTotal"`
	TotalAmount     int64              `bson:"totalAmount" json:"totalAmount"`
	Status          OrderStatus        `bson:"status" json:"status"`
	StockDeducted   bool               `bson:"stockDeducted" json:"stockDeducted"`
	StatusHistory   []StatusChange     `bson:"statusHistory" json:"statusHistory"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
