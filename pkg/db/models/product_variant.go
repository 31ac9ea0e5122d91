package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is one size of a shoe model with its own stock counter.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_variant_product_size"`
	Size      string    `gorm:"column:size;not null;uniqueIndex:idx_variant_product_size"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
