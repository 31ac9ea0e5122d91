package controllers

import (
	"net/http"

	"github.com/pasofino/tienda-backend/api/middleware"
	"github.com/pasofino/tienda-backend/api/responses"
	"github.com/pasofino/tienda-backend/api/validators"
	ordersvc "github.com/pasofino/tienda-backend/internal/orders"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/logger"
)

// OrderList returns the authenticated customer's order history.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		if !identity.IsCustomer() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		orders, err := svc.ListByCustomer(r.Context(), *identity.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// OrderDetail returns one of the caller's orders. Someone else's order id
// answers exactly like a missing one.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		if !identity.IsCustomer() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		orderID, err := parseUUIDParam(r, "orderRef")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetForCustomer(r.Context(), orderID, *identity.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type trackOrderRequest struct {
	OrderNumber string `json:"order_number" validate:"required,max=64"`
	Phone       string `json:"phone" validate:"required,max=32"`
}

// OrderTrack is the public lookup: order number plus the phone it was placed
// with.
func OrderTrack(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload trackOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Track(r.Context(), payload.OrderNumber, payload.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
