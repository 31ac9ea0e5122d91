package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasofino/tienda-backend/pkg/enums"
)

// Product is a shoe model in the catalog. Stock on the product itself only
// matters for models sold without sizes; sized models carry stock per variant.
type Product struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	Slug            string           `gorm:"column:slug;uniqueIndex;not null"`
	Description     string           `gorm:"column:description"`
	Price           decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	DiscountPercent *decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2)"`
	Gender          enums.Gender     `gorm:"column:gender;not null;default:'unisex'"`
	Color           string           `gorm:"column:color"`
	Material        string           `gorm:"column:material"`
	Stock           int              `gorm:"column:stock;not null;default:0"`
	Available       bool             `gorm:"column:available;not null;default:true"`
	Featured        bool             `gorm:"column:featured;not null;default:false"`
	CategoryID      *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	BrandID         *uuid.UUID       `gorm:"column:brand_id;type:uuid"`
	Category        *Category        `gorm:"foreignKey:CategoryID"`
	Brand           *Brand           `gorm:"foreignKey:BrandID"`
	Variants        []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images          []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// FinalPrice applies the percentage discount, rounded to 2 decimals. It never
// exceeds the list price.
func (p Product) FinalPrice() decimal.Decimal {
	if p.DiscountPercent == nil || p.DiscountPercent.IsZero() {
		return p.Price
	}
	rebate := p.Price.Mul(*p.DiscountPercent).Div(decimal.NewFromInt(100))
	return p.Price.Sub(rebate).Round(2)
}

// HasVariants reports whether the model is sold in specific sizes.
func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// PrimaryImage returns the URL flagged as primary, falling back to the first
// image, or "" when the model has none.
func (p Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}
