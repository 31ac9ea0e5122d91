package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
)

// Service exposes the customer-facing order reads.
type Service interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]OrderDTO, error)
	GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*OrderDTO, error)
	Track(ctx context.Context, orderNumber, phone string) (*OrderDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs an orders read service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return dtos, nil
}

// GetForCustomer refuses to distinguish "missing" from "not yours": both
// surface as not-found.
func (s *service) GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return NewOrderDTO(order), nil
}

// Track is the public lookup: both the order number and the phone must match
// exactly, otherwise callers learn nothing.
func (s *service) Track(ctx context.Context, orderNumber, phone string) (*OrderDTO, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	phone = strings.TrimSpace(phone)
	if orderNumber == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number and phone are required")
	}

	order, err := s.repo.FindByNumberAndPhone(ctx, orderNumber, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "track order")
	}
	return NewOrderDTO(order), nil
}
