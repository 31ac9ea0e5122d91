package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the working set of intended purchases for one identity. Exactly one
// of CustomerID / SessionKey is set, and the partial unique indexes hold each
// identity to a single cart at the storage layer.
type Cart struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid;uniqueIndex:idx_carts_customer,where:customer_id IS NOT NULL"`
	SessionKey *string    `gorm:"column:session_key;uniqueIndex:idx_carts_session,where:session_key IS NOT NULL"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
