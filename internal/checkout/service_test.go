package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pasofino/tienda-backend/internal/cart"
	"github.com/pasofino/tienda-backend/internal/orders"
	"github.com/pasofino/tienda-backend/pkg/config"
	"github.com/pasofino/tienda-backend/pkg/db"
	"github.com/pasofino/tienda-backend/pkg/db/models"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/types"
)

type stubNotifier struct {
	mu     sync.Mutex
	emails []string
	orders []*orders.OrderDTO
}

func (s *stubNotifier) SendOrderConfirmation(_ context.Context, email string, order *orders.OrderDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, email)
	s.orders = append(s.orders, order)
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		ShippingFlatFeeCents:       499,
		FreeShippingThresholdCents: 5000,
		Currency:                   "eur",
	}
}

func mustNewService(t *testing.T, client *db.Client, notifier *stubNotifier) Service {
	t.Helper()
	svc, err := NewService(client, testCheckoutConfig(), notifier, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustSeedProduct(t *testing.T, tx *gorm.DB, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      "City Boot",
		Slug:      fmt.Sprintf("city-boot-%s", uuid.NewString()),
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Available: true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustSeedCartWithItem(t *testing.T, tx *gorm.DB, identity types.Identity, product *models.Product, qty int) *models.Cart {
	t.Helper()
	row := &models.Cart{ID: uuid.New(), CustomerID: identity.CustomerID, SessionKey: identity.SessionKey}
	if err := tx.Create(row).Error; err != nil {
		t.Fatalf("create cart: %v", err)
	}
	item := &models.CartItem{ID: uuid.New(), CartID: row.ID, ProductID: product.ID, Quantity: qty}
	if err := tx.Create(item).Error; err != nil {
		t.Fatalf("create cart item: %v", err)
	}
	// The cart reserved these units, mirror the add-to-cart decrement.
	if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty)).Error; err != nil {
		t.Fatalf("reserve stock: %v", err)
	}
	return row
}

func shippingInput(email string) CheckoutInput {
	return CheckoutInput{
		Email:      email,
		FirstName:  "Ada",
		LastName:   "Luna",
		Phone:      "600111222",
		Address:    "Calle Mayor 1",
		City:       "Madrid",
		PostalCode: "28001",
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := mustNewService(t, client, &stubNotifier{})
	identity := types.SessionIdentity("sess-" + uuid.NewString())

	_, err := svc.CreateOrderFromCart(context.Background(), identity, shippingInput("ada@example.com"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected empty cart error, got %v", err)
	}
}

func TestCheckoutBelowThresholdChargesFlatShipping(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := mustNewService(t, client, &stubNotifier{})
	identity := types.SessionIdentity("sess-" + uuid.NewString())

	product := mustSeedProduct(t, client.DB(), "20.00", 10)
	mustSeedCartWithItem(t, client.DB(), identity, product, 1)

	dto, err := svc.CreateOrderFromCart(context.Background(), identity, shippingInput("ada@example.com"))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !dto.Shipping.Equal(decimal.RequireFromString("4.99")) {
		t.Fatalf("expected shipping 4.99, got %s", dto.Shipping)
	}
	if !dto.Total.Equal(decimal.RequireFromString("24.99")) {
		t.Fatalf("expected total 24.99, got %s", dto.Total)
	}
}

func TestCheckoutAtEightyShipsFree(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := mustNewService(t, client, &stubNotifier{})
	identity := types.SessionIdentity("sess-" + uuid.NewString())

	product := mustSeedProduct(t, client.DB(), "80.00", 10)
	seeded := mustSeedCartWithItem(t, client.DB(), identity, product, 1)

	dto, err := svc.CreateOrderFromCart(context.Background(), identity, shippingInput("ada@example.com"))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !dto.Shipping.IsZero() {
		t.Fatalf("expected free shipping, got %s", dto.Shipping)
	}
	if !dto.Total.Equal(dto.Subtotal) {
		t.Fatalf("expected total==subtotal, got total %s subtotal %s", dto.Total, dto.Subtotal)
	}
	if dto.PaymentStatus != "pending" {
		t.Fatalf("expected pending payment, got %s", dto.PaymentStatus)
	}

	// Cart is emptied but the reservation is consumed, not restocked.
	var itemCount int64
	if err := client.DB().Model(&models.CartItem{}).Where("cart_id = ?", seeded.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("expected cart emptied, %d items remain", itemCount)
	}
	var stocked models.Product
	if err := client.DB().First(&stocked, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stocked.Stock != 9 {
		t.Fatalf("expected stock to stay at 9, got %d", stocked.Stock)
	}
}

func TestCheckoutGuestSynthesizesCustomer(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := mustNewService(t, client, &stubNotifier{})
	identity := types.SessionIdentity("sess-" + uuid.NewString())

	product := mustSeedProduct(t, client.DB(), "30.00", 5)
	mustSeedCartWithItem(t, client.DB(), identity, product, 1)

	if _, err := svc.CreateOrderFromCart(context.Background(), identity, shippingInput("guest@example.com")); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	var customer models.Customer
	if err := client.DB().First(&customer, "email = ?", "guest@example.com").Error; err != nil {
		t.Fatalf("load guest: %v", err)
	}
	if !customer.Guest {
		t.Fatal("expected guest flag set")
	}
	if customer.PasswordHash != "" {
		t.Fatal("expected empty password hash for guest")
	}
	if customer.CanLogin() {
		t.Fatal("guest must not be able to log in")
	}
	if !strings.HasPrefix(customer.Username, "guest_") {
		t.Fatalf("unexpected guest username %q", customer.Username)
	}
}

func TestCheckoutGuestRequiresEmail(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := mustNewService(t, client, &stubNotifier{})
	identity := types.SessionIdentity("sess-" + uuid.NewString())

	product := mustSeedProduct(t, client.DB(), "30.00", 5)
	mustSeedCartWithItem(t, client.DB(), identity, product, 1)

	_, err := svc.CreateOrderFromCart(context.Background(), identity, shippingInput(""))
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutAuthenticatedUpdatesProfile(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := mustNewService(t, client, &stubNotifier{})

	customer := &models.Customer{
		ID:       uuid.New(),
		Username: "ada",
		Email:    "ada@example.com",
	}
	if err := client.DB().Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	identity := types.CustomerIdentity(customer.ID)

	product := mustSeedProduct(t, client.DB(), "30.00", 5)
	mustSeedCartWithItem(t, client.DB(), identity, product, 1)

	if _, err := svc.CreateOrderFromCart(context.Background(), identity, shippingInput("ada@example.com")); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	var updated models.Customer
	if err := client.DB().First(&updated, "id = ?", customer.ID).Error; err != nil {
		t.Fatalf("reload customer: %v", err)
	}
	if updated.Phone != "600111222" || updated.City != "Madrid" || updated.Address != "Calle Mayor 1" {
		t.Fatalf("expected profile pinned from shipping details, got %+v", updated)
	}
}

func TestCheckoutFreezesUnitPrices(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := mustNewService(t, client, &stubNotifier{})
	identity := types.SessionIdentity("sess-" + uuid.NewString())

	product := mustSeedProduct(t, client.DB(), "60.00", 5)
	mustSeedCartWithItem(t, client.DB(), identity, product, 2)

	dto, err := svc.CreateOrderFromCart(context.Background(), identity, shippingInput("ada@example.com"))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if err := client.DB().Model(&models.Product{}).Where("id = ?", product.ID).
		UpdateColumn("price", "99.00").Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}

	reloaded, err := orders.NewRepository(client.DB()).FindByNumber(context.Background(), dto.OrderNumber)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if len(reloaded.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(reloaded.Items))
	}
	if !reloaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected frozen unit price 60, got %s", reloaded.Items[0].UnitPrice)
	}
}

func TestCheckoutSendsConfirmation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	notifier := &stubNotifier{}
	svc := mustNewService(t, client, notifier)
	identity := types.SessionIdentity("sess-" + uuid.NewString())

	product := mustSeedProduct(t, client.DB(), "30.00", 5)
	mustSeedCartWithItem(t, client.DB(), identity, product, 1)

	dto, err := svc.CreateOrderFromCart(context.Background(), identity, shippingInput("buyer@example.com"))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !strings.HasPrefix(dto.OrderNumber, "ORD-") {
		t.Fatalf("unexpected order number %q", dto.OrderNumber)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.emails) != 1 || notifier.emails[0] != "buyer@example.com" {
		t.Fatalf("expected one confirmation to buyer, got %v", notifier.emails)
	}
	if notifier.orders[0].OrderNumber != dto.OrderNumber {
		t.Fatalf("confirmation carries wrong order")
	}
}

func TestCheckoutLeavesCartUsableForNextPurchase(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	svc := mustNewService(t, client, &stubNotifier{})
	identity := types.SessionIdentity("sess-" + uuid.NewString())

	product := mustSeedProduct(t, client.DB(), "30.00", 10)
	mustSeedCartWithItem(t, client.DB(), identity, product, 2)

	if _, err := svc.CreateOrderFromCart(context.Background(), identity, shippingInput("ada@example.com")); err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	// The identity's cart survives empty; adding again works.
	cartSvc, err := cart.NewService(cart.NewRepository(client.DB()), client, nil)
	if err != nil {
		t.Fatalf("new cart service: %v", err)
	}
	dto, err := cartSvc.AddItem(context.Background(), identity, cart.AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("re-add after checkout: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].Quantity != 1 {
		t.Fatalf("unexpected cart state: %+v", dto.Items)
	}
}
