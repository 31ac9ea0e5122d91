package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	authsvc "github.com/pasofino/tienda-backend/internal/auth"
	cartsvc "github.com/pasofino/tienda-backend/internal/cart"
	catalogsvc "github.com/pasofino/tienda-backend/internal/catalog"
	checkoutsvc "github.com/pasofino/tienda-backend/internal/checkout"
	customersvc "github.com/pasofino/tienda-backend/internal/customers"
	ordersvc "github.com/pasofino/tienda-backend/internal/orders"
	paymentsvc "github.com/pasofino/tienda-backend/internal/payments"
	pkgauth "github.com/pasofino/tienda-backend/pkg/auth"
	"github.com/pasofino/tienda-backend/pkg/config"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubCatalog struct {
	listCalls int
}

func (s *stubCatalog) ListProducts(context.Context, catalogsvc.ListProductsInput) (*catalogsvc.ProductListResult, error) {
	s.listCalls++
	return &catalogsvc.ProductListResult{Products: []catalogsvc.ProductSummaryDTO{}}, nil
}

func (s *stubCatalog) GetProduct(context.Context, string) (*catalogsvc.ProductDetailDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubCatalog) ListFeatured(context.Context) ([]catalogsvc.ProductSummaryDTO, error) {
	return nil, nil
}

func (s *stubCatalog) ListCategories(context.Context) ([]catalogsvc.CategoryDTO, error) {
	return nil, nil
}

func (s *stubCatalog) ListBrands(context.Context) ([]catalogsvc.BrandDTO, error) {
	return nil, nil
}

type stubCart struct {
	lastIdentity types.Identity
}

func (s *stubCart) Get(_ context.Context, identity types.Identity) (*cartsvc.CartDTO, error) {
	s.lastIdentity = identity
	return &cartsvc.CartDTO{}, nil
}

func (s *stubCart) AddItem(_ context.Context, identity types.Identity, _ cartsvc.AddItemInput) (*cartsvc.CartDTO, error) {
	s.lastIdentity = identity
	return &cartsvc.CartDTO{}, nil
}

func (s *stubCart) UpdateItem(context.Context, types.Identity, uuid.UUID, int) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (s *stubCart) RemoveItem(context.Context, types.Identity, uuid.UUID) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (s *stubCart) Clear(context.Context, types.Identity) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

type stubCheckout struct{}

func (stubCheckout) CreateOrderFromCart(context.Context, types.Identity, checkoutsvc.CheckoutInput) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{OrderNumber: "ORD-TEST"}, nil
}

type stubPayments struct{}

func (stubPayments) InitiateCheckout(context.Context, string) (*paymentsvc.SessionDTO, error) {
	return &paymentsvc.SessionDTO{}, nil
}

func (stubPayments) ConfirmSuccess(context.Context, string) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func (stubPayments) ConfirmFailure(context.Context, string) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

type stubOrders struct {
	trackCalls int
}

func (s *stubOrders) ListByCustomer(context.Context, uuid.UUID) ([]ordersvc.OrderDTO, error) {
	return nil, nil
}

func (s *stubOrders) GetForCustomer(context.Context, uuid.UUID, uuid.UUID) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func (s *stubOrders) Track(context.Context, string, string) (*ordersvc.OrderDTO, error) {
	s.trackCalls++
	return &ordersvc.OrderDTO{OrderNumber: "ORD-TRACK"}, nil
}

type stubAuth struct{}

func (stubAuth) Register(context.Context, authsvc.RegisterInput) (*authsvc.SessionDTO, error) {
	return &authsvc.SessionDTO{}, nil
}

func (stubAuth) Login(context.Context, authsvc.LoginInput) (*authsvc.SessionDTO, error) {
	return &authsvc.SessionDTO{}, nil
}

type stubCustomers struct{}

func (stubCustomers) GetProfile(context.Context, uuid.UUID) (*customersvc.ProfileDTO, error) {
	return &customersvc.ProfileDTO{}, nil
}

func (stubCustomers) UpdateProfile(context.Context, uuid.UUID, customersvc.UpdateProfileInput) (*customersvc.ProfileDTO, error) {
	return &customersvc.ProfileDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret-router-test",
			Issuer:            "tienda-test",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *stubCatalog, *stubCart, *stubOrders) {
	t.Helper()

	catalog := &stubCatalog{}
	cart := &stubCart{}
	orders := &stubOrders{}
	router := NewRouter(testConfig(), nil, stubPinger{}, nil, prometheus.NewRegistry(), Services{
		Catalog:   catalog,
		Cart:      cart,
		Checkout:  stubCheckout{},
		Payments:  stubPayments{},
		Orders:    orders,
		Auth:      stubAuth{},
		Customers: stubCustomers{},
	})
	return router, catalog, cart, orders
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouterCatalogIsPublic(t *testing.T) {
	router, catalog, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if catalog.listCalls != 1 {
		t.Fatalf("catalog service not reached, calls=%d", catalog.listCalls)
	}
}

func TestRouterCartMintsSessionForAnonymous(t *testing.T) {
	router, _, cart, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !cart.lastIdentity.IsSession() {
		t.Fatalf("expected a session identity, got %+v", cart.lastIdentity)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie on first contact")
	}
}

func TestRouterCartResolvesCustomerFromToken(t *testing.T) {
	router, _, cart, _ := newTestRouter(t)

	customerID := uuid.New()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		CustomerID: customerID,
		Username:   "maria",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !cart.lastIdentity.IsCustomer() || *cart.lastIdentity.CustomerID != customerID {
		t.Fatalf("expected customer identity, got %+v", cart.lastIdentity)
	}
}

func TestRouterOrderHistoryRequiresAuth(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous order history, got %d", rec.Code)
	}
}

func TestRouterTrackIsPublic(t *testing.T) {
	router, _, _, orders := newTestRouter(t)

	body := strings.NewReader(`{"order_number":"ORD-1","phone":"+34123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/track", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if orders.trackCalls != 1 {
		t.Fatalf("track service not reached, calls=%d", orders.trackCalls)
	}
}
