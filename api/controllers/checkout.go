package controllers

import (
	"net/http"

	"github.com/pasofino/tienda-backend/api/responses"
	"github.com/pasofino/tienda-backend/api/validators"
	checkoutsvc "github.com/pasofino/tienda-backend/internal/checkout"
	"github.com/pasofino/tienda-backend/pkg/logger"
)

type checkoutRequest struct {
	Email         string `json:"email" validate:"omitempty,email"`
	FirstName     string `json:"first_name" validate:"max=100"`
	LastName      string `json:"last_name" validate:"max=100"`
	Phone         string `json:"phone" validate:"required,max=32"`
	Address       string `json:"address" validate:"required,max=255"`
	City          string `json:"city" validate:"required,max=100"`
	PostalCode    string `json:"postal_code" validate:"required,max=16"`
	PaymentMethod string `json:"payment_method" validate:"max=32"`
}

// Checkout promotes the caller's cart into a pending order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrderFromCart(r.Context(), identity, checkoutsvc.CheckoutInput{
			Email:         payload.Email,
			FirstName:     payload.FirstName,
			LastName:      payload.LastName,
			Phone:         payload.Phone,
			Address:       payload.Address,
			City:          payload.City,
			PostalCode:    payload.PostalCode,
			PaymentMethod: payload.PaymentMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
