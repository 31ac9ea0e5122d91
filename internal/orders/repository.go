package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasofino/tienda-backend/pkg/db/models"
	"github.com/pasofino/tienda-backend/pkg/enums"
)

// Repository wires order persistence. Checkout and payments share it for
// the write path; the service below is the customer-facing read side.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order together with its line items.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByNumber loads an order by its public number with line items.
func (r *Repository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "order_number = ?", orderNumber).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByID loads an order with line items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByNumberAndPhone loads an order only when BOTH the number and the
// phone match exactly.
func (r *Repository) FindByNumberAndPhone(ctx context.Context, orderNumber, phone string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "order_number = ? AND phone = ?", orderNumber, phone).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdatePaymentIntent persists the gateway intent reference on the order.
func (r *Repository) UpdatePaymentIntent(ctx context.Context, orderID uuid.UUID, intentID, clientSecret string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"intent_id":     intentID,
			"client_secret": clientSecret,
		}).Error
}

// UpdatePaymentStatus moves the payment (and optionally order) status.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, payment enums.PaymentStatus, status *enums.OrderStatus) error {
	updates := map[string]any{"payment_status": payment.String()}
	if status != nil {
		updates["status"] = status.String()
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}
