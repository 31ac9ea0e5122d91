package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasofino/tienda-backend/pkg/enums"
)

// Order is the immutable snapshot produced when a cart is promoted.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;uniqueIndex;not null"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Tax           decimal.Decimal     `gorm:"column:tax;type:numeric(10,2);not null"`
	Shipping      decimal.Decimal     `gorm:"column:shipping;type:numeric(10,2);not null"`
	Discount      decimal.Decimal     `gorm:"column:discount;type:numeric(10,2);not null"`
	PaymentMethod *string             `gorm:"column:payment_method"`
	ShippingAddr  string              `gorm:"column:shipping_address"`
	Phone         string              `gorm:"column:phone"`
	IntentID      *string             `gorm:"column:intent_id"`
	ClientSecret  *string             `gorm:"column:client_secret"`
	Customer      *Customer           `gorm:"foreignKey:CustomerID"`
	Items         []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// Total derives the amount the buyer owes.
func (o Order) Total() decimal.Decimal {
	return o.Subtotal.Add(o.Tax).Add(o.Shipping).Sub(o.Discount)
}

// TotalCents converts the total to integer cents for the payment gateway.
func (o Order) TotalCents() int64 {
	return o.Total().Shift(2).Round(0).IntPart()
}

// HasIntent reports whether a payment intent was already requested.
func (o Order) HasIntent() bool {
	return o.IntentID != nil && *o.IntentID != ""
}
