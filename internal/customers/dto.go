package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/pasofino/tienda-backend/pkg/db/models"
)

// ProfileDTO is the customer profile returned by the API.
type ProfileDTO struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Guest      bool      `json:"guest"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewProfileDTO maps a customer row onto the API shape.
func NewProfileDTO(customer *models.Customer) *ProfileDTO {
	if customer == nil {
		return nil
	}
	return &ProfileDTO{
		ID:         customer.ID,
		Username:   customer.Username,
		Email:      customer.Email,
		FirstName:  customer.FirstName,
		LastName:   customer.LastName,
		Phone:      customer.Phone,
		Address:    customer.Address,
		City:       customer.City,
		PostalCode: customer.PostalCode,
		Guest:      customer.Guest,
		CreatedAt:  customer.CreatedAt,
	}
}
