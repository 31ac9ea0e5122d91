package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a buyer profile. Guest checkouts synthesize one with a
// generated username and an empty password hash, which can never log in.
type Customer struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null;default:''"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Phone        string    `gorm:"column:phone"`
	Address      string    `gorm:"column:address"`
	City         string    `gorm:"column:city"`
	PostalCode   string    `gorm:"column:postal_code"`
	Guest        bool      `gorm:"column:guest;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CanLogin reports whether the profile holds a usable credential.
func (c Customer) CanLogin() bool {
	return !c.Guest && c.PasswordHash != ""
}
