package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pasofino/tienda-backend/internal/orders"
	"github.com/pasofino/tienda-backend/pkg/config"
	"github.com/pasofino/tienda-backend/pkg/db/models"
	"github.com/pasofino/tienda-backend/pkg/enums"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/logger"
	"github.com/pasofino/tienda-backend/pkg/metrics"
)

// Service drives an order through the payment gateway.
type Service interface {
	InitiateCheckout(ctx context.Context, orderNumber string) (*SessionDTO, error)
	ConfirmSuccess(ctx context.Context, orderNumber string) (*orders.OrderDTO, error)
	ConfirmFailure(ctx context.Context, orderNumber string) (*orders.OrderDTO, error)
}

// SessionDTO is what the frontend needs to collect the payment.
type SessionDTO struct {
	OrderNumber   string `json:"order_number"`
	PaymentStatus string `json:"payment_status"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	IntentID      string `json:"intent_id,omitempty"`
	ClientSecret  string `json:"client_secret,omitempty"`
}

type service struct {
	repo    *orders.Repository
	gateway Gateway
	cfg     config.CheckoutConfig
	metrics *metrics.StoreMetrics
	logg    *logger.Logger
}

// NewService constructs a payment service instance.
func NewService(repo *orders.Repository, gateway Gateway, cfg config.CheckoutConfig, storeMetrics *metrics.StoreMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		metrics: storeMetrics,
		logg:    logg,
	}, nil
}

// InitiateCheckout attaches a payment intent to the order. Paid orders
// short-circuit without touching the gateway, a pending order reuses its
// existing intent, and a failed order gets a fresh one.
func (s *service) InitiateCheckout(ctx context.Context, orderNumber string) (*SessionDTO, error) {
	order, err := s.loadOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == enums.PaymentStatusPaid {
		return s.session(order), nil
	}

	if order.PaymentStatus == enums.PaymentStatusPending && order.HasIntent() {
		return s.session(order), nil
	}

	intent, err := s.gateway.CreateIntent(ctx, order.TotalCents(), s.currency(), map[string]string{
		"order_number": order.OrderNumber,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "create payment intent")
	}

	if err := s.repo.UpdatePaymentIntent(ctx, order.ID, intent.ID, intent.ClientSecret); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment intent")
	}
	if order.PaymentStatus == enums.PaymentStatusFailed {
		if err := s.repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusPending, nil); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset payment status")
		}
		order.PaymentStatus = enums.PaymentStatusPending
	}

	order.IntentID = &intent.ID
	order.ClientSecret = &intent.ClientSecret
	return s.session(order), nil
}

// ConfirmSuccess re-queries the gateway and marks the order paid only when
// the provider reports a settled intent. Navigating to the success URL on
// its own changes nothing.
func (s *service) ConfirmSuccess(ctx context.Context, orderNumber string) (*orders.OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == enums.PaymentStatusPaid {
		return orders.NewOrderDTO(order), nil
	}
	if !order.HasIntent() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order has no payment to confirm")
	}

	status, err := s.gateway.GetIntentStatus(ctx, *order.IntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "query payment intent")
	}
	if status != IntentStatusSucceeded {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment has not succeeded")
	}

	paid := enums.OrderStatusPaid
	if err := s.repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusPaid, &paid); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	order.PaymentStatus = enums.PaymentStatusPaid
	order.Status = enums.OrderStatusPaid

	s.metrics.IncPayment("paid")
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "payment confirmed")
	}
	return orders.NewOrderDTO(order), nil
}

// ConfirmFailure moves a pending payment to failed. Paid orders are
// terminal and stay paid.
func (s *service) ConfirmFailure(ctx context.Context, orderNumber string) (*orders.OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == enums.PaymentStatusPaid {
		return orders.NewOrderDTO(order), nil
	}
	if order.PaymentStatus == enums.PaymentStatusFailed {
		return orders.NewOrderDTO(order), nil
	}

	if err := s.repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusFailed, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
	}
	order.PaymentStatus = enums.PaymentStatusFailed

	s.metrics.IncPayment("failed")
	if s.logg != nil {
		s.logg.Warn(s.logg.WithOrderNumber(ctx, order.OrderNumber), "payment failed")
	}
	return orders.NewOrderDTO(order), nil
}

func (s *service) loadOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) session(order *models.Order) *SessionDTO {
	dto := &SessionDTO{
		OrderNumber:   order.OrderNumber,
		PaymentStatus: order.PaymentStatus.String(),
		AmountCents:   order.TotalCents(),
		Currency:      s.currency(),
	}
	if order.IntentID != nil {
		dto.IntentID = *order.IntentID
	}
	if order.ClientSecret != nil {
		dto.ClientSecret = *order.ClientSecret
	}
	return dto
}

func (s *service) currency() string {
	if c := strings.TrimSpace(strings.ToLower(s.cfg.Currency)); c != "" {
		return c
	}
	return "eur"
}
