package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pasofino/tienda-backend/internal/cart"
	"github.com/pasofino/tienda-backend/internal/customers"
	"github.com/pasofino/tienda-backend/internal/notifications"
	"github.com/pasofino/tienda-backend/internal/orders"
	"github.com/pasofino/tienda-backend/pkg/config"
	"github.com/pasofino/tienda-backend/pkg/db"
	"github.com/pasofino/tienda-backend/pkg/db/models"
	"github.com/pasofino/tienda-backend/pkg/enums"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/logger"
	"github.com/pasofino/tienda-backend/pkg/metrics"
	"github.com/pasofino/tienda-backend/pkg/types"
)

// Service promotes carts to orders.
type Service interface {
	CreateOrderFromCart(ctx context.Context, identity types.Identity, input CheckoutInput) (*orders.OrderDTO, error)
}

// CheckoutInput carries the validated shipping details submitted at checkout.
type CheckoutInput struct {
	Email         string
	FirstName     string
	LastName      string
	Phone         string
	Address       string
	City          string
	PostalCode    string
	PaymentMethod string
}

type service struct {
	dbClient *db.Client
	cfg      config.CheckoutConfig
	notifier notifications.Service
	metrics  *metrics.StoreMetrics
	logg     *logger.Logger
}

// NewService constructs a checkout service instance.
func NewService(dbClient *db.Client, cfg config.CheckoutConfig, notifier notifications.Service, storeMetrics *metrics.StoreMetrics, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification service required")
	}
	return &service{
		dbClient: dbClient,
		cfg:      cfg,
		notifier: notifier,
		metrics:  storeMetrics,
		logg:     logg,
	}, nil
}

// CreateOrderFromCart runs the whole promotion in one transaction: resolve
// the cart, pin the buyer profile, snapshot the lines at today's prices and
// consume the reservation. Stock is NOT returned; the units now belong to
// the order.
func (s *service) CreateOrderFromCart(ctx context.Context, identity types.Identity, input CheckoutInput) (*orders.OrderDTO, error) {
	start := time.Now()

	var dto *orders.OrderDTO
	var buyerEmail string
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		activeCart, err := cart.ResolveActive(ctx, tx, identity)
		if err != nil {
			return err
		}
		if len(activeCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot create an order from an empty cart")
		}

		customer, err := s.resolveCustomer(ctx, tx, identity, input)
		if err != nil {
			return err
		}
		buyerEmail = customer.Email

		order, err := s.buildOrder(activeCart, customer, input)
		if err != nil {
			return err
		}

		ordersRepo := orders.NewRepository(tx)
		created, err := ordersRepo.Create(ctx, order)
		if err != nil && db.IsUniqueViolation(err, "") {
			// One collision retry with a fresh number.
			order.OrderNumber = newOrderNumber(customer.ID)
			created, err = ordersRepo.Create(ctx, order)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}

		if err := cart.NewRepository(tx).DeleteItems(ctx, activeCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume cart")
		}

		dto = orders.NewOrderDTO(created)
		return nil
	})
	if err != nil {
		s.metrics.ObserveCheckout("failure", time.Since(start))
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.metrics.ObserveCheckout("success", time.Since(start))
	s.metrics.IncOrderCreated()
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNumber(ctx, dto.OrderNumber), "order created from cart")
	}
	s.notifier.SendOrderConfirmation(ctx, buyerEmail, dto)
	return dto, nil
}

// resolveCustomer pins the buyer: registered customers get their profile
// updated with the submitted details, anonymous checkouts reuse the account
// matching the email or synthesize a guest profile that can never log in.
func (s *service) resolveCustomer(ctx context.Context, tx *gorm.DB, identity types.Identity, input CheckoutInput) (*models.Customer, error) {
	repo := customers.NewRepository(tx)

	if identity.IsCustomer() {
		customer, err := repo.FindByID(ctx, *identity.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		applyShippingDetails(customer, input)
		if _, err := repo.Save(ctx, customer); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer profile")
		}
		return customer, nil
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required for guest checkout")
	}

	existing, err := repo.FindByEmail(ctx, email)
	if err == nil {
		applyShippingDetails(existing, input)
		if _, err := repo.Save(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer profile")
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer by email")
	}

	guest := &models.Customer{
		Username:     guestUsername(),
		Email:        email,
		PasswordHash: "",
		Guest:        true,
	}
	applyShippingDetails(guest, input)
	created, err := repo.Create(ctx, guest)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create guest customer")
	}
	return created, nil
}

func (s *service) buildOrder(activeCart *models.Cart, customer *models.Customer, input CheckoutInput) (*models.Order, error) {
	subtotal := decimal.Zero
	items := make([]models.OrderLineItem, 0, len(activeCart.Items))
	for _, line := range activeCart.Items {
		if line.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart line lost its product")
		}
		unitPrice := line.Product.FinalPrice()
		item := models.OrderLineItem{
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
		}
		if line.Variant != nil {
			size := line.Variant.Size
			item.Size = &size
		}
		items = append(items, item)
		subtotal = subtotal.Add(unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	order := &models.Order{
		OrderNumber:   newOrderNumber(customer.ID),
		CustomerID:    customer.ID,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Subtotal:      subtotal,
		Tax:           decimal.Zero,
		Shipping:      s.shippingFee(subtotal),
		Discount:      decimal.Zero,
		ShippingAddr:  formatShippingAddr(input),
		Phone:         strings.TrimSpace(input.Phone),
		Items:         items,
	}
	if method := strings.TrimSpace(input.PaymentMethod); method != "" {
		order.PaymentMethod = &method
	}
	return order, nil
}

// shippingFee charges the flat fee only for orders below the free-shipping
// threshold; empty subtotals cannot happen here (empty carts are rejected).
func (s *service) shippingFee(subtotal decimal.Decimal) decimal.Decimal {
	threshold := decimal.New(s.cfg.FreeShippingThresholdCents, -2)
	if subtotal.IsPositive() && subtotal.LessThan(threshold) {
		return decimal.New(s.cfg.ShippingFlatFeeCents, -2)
	}
	return decimal.Zero
}

func applyShippingDetails(customer *models.Customer, input CheckoutInput) {
	if v := strings.TrimSpace(input.FirstName); v != "" {
		customer.FirstName = v
	}
	if v := strings.TrimSpace(input.LastName); v != "" {
		customer.LastName = v
	}
	if v := strings.TrimSpace(input.Phone); v != "" {
		customer.Phone = v
	}
	if v := strings.TrimSpace(input.Address); v != "" {
		customer.Address = v
	}
	if v := strings.TrimSpace(input.City); v != "" {
		customer.City = v
	}
	if v := strings.TrimSpace(input.PostalCode); v != "" {
		customer.PostalCode = v
	}
}

func formatShippingAddr(input CheckoutInput) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{input.Address, input.City, input.PostalCode} {
		if v := strings.TrimSpace(part); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func guestUsername() string {
	return "guest_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
