package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pasofino/tienda-backend/api/responses"
	paymentsvc "github.com/pasofino/tienda-backend/internal/payments"
	"github.com/pasofino/tienda-backend/pkg/logger"
)

// PaymentInitiate creates or reuses the payment intent for an order.
func PaymentInitiate(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.InitiateCheckout(r.Context(), chi.URLParam(r, "orderRef"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// PaymentSuccess marks the order paid only after the gateway confirms the
// charge went through.
func PaymentSuccess(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.ConfirmSuccess(r.Context(), chi.URLParam(r, "orderRef"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func PaymentFailure(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.ConfirmFailure(r.Context(), chi.URLParam(r, "orderRef"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
