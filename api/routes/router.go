package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pasofino/tienda-backend/api/controllers"
	"github.com/pasofino/tienda-backend/api/middleware"
	authsvc "github.com/pasofino/tienda-backend/internal/auth"
	cartsvc "github.com/pasofino/tienda-backend/internal/cart"
	catalogsvc "github.com/pasofino/tienda-backend/internal/catalog"
	checkoutsvc "github.com/pasofino/tienda-backend/internal/checkout"
	customersvc "github.com/pasofino/tienda-backend/internal/customers"
	ordersvc "github.com/pasofino/tienda-backend/internal/orders"
	paymentsvc "github.com/pasofino/tienda-backend/internal/payments"
	"github.com/pasofino/tienda-backend/pkg/config"
	"github.com/pasofino/tienda-backend/pkg/logger"
	pkgredis "github.com/pasofino/tienda-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Catalog   catalogsvc.Service
	Cart      cartsvc.Service
	Checkout  checkoutsvc.Service
	Payments  paymentsvc.Service
	Orders    ordersvc.Service
	Auth      authsvc.Service
	Customers customersvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisPinger(redisClient),
		}))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateLimitStore(redisClient), logg)).Post("/login", controllers.Login(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, rateLimitStore(redisClient), logg)).Post("/register", controllers.Register(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Catalog reads need no identity.
		r.Get("/products", controllers.ProductList(svcs.Catalog, logg))
		r.Get("/products/featured", controllers.ProductFeatured(svcs.Catalog, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(svcs.Catalog, logg))
		r.Get("/categories", controllers.CategoryList(svcs.Catalog, logg))
		r.Get("/brands", controllers.BrandList(svcs.Catalog, logg))

		r.Post("/track", controllers.OrderTrack(svcs.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Identity(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(svcs.Cart, logg))
				r.Delete("/", controllers.CartClear(svcs.Cart, logg))
				r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
				r.Patch("/items/{itemID}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{itemID}", controllers.CartRemoveItem(svcs.Cart, logg))
			})

			r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

			// chi allows only one wildcard name per segment, so the pay
			// routes (order number) and the detail route (order id) share
			// {orderRef}.
			r.Route("/orders", func(r chi.Router) {
				r.Post("/{orderRef}/pay", controllers.PaymentInitiate(svcs.Payments, logg))
				r.Post("/{orderRef}/pay/success", controllers.PaymentSuccess(svcs.Payments, logg))
				r.Post("/{orderRef}/pay/failure", controllers.PaymentFailure(svcs.Payments, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCustomer(logg))
					r.Get("/", controllers.OrderList(svcs.Orders, logg))
					r.Get("/{orderRef}", controllers.OrderDetail(svcs.Orders, logg))
				})
			})

			r.Route("/me", func(r chi.Router) {
				r.Use(middleware.RequireCustomer(logg))
				r.Get("/", controllers.ProfileGet(svcs.Customers, logg))
				r.Put("/", controllers.ProfileUpdate(svcs.Customers, logg))
			})
		})
	})

	return r
}

// The helpers below keep a nil *Client from turning into a non-nil
// interface, which would defeat the middlewares' nil-store guards.

func redisPinger(client *pkgredis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

type rateStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

func rateLimitStore(client *pkgredis.Client) rateStore {
	if client == nil {
		return nil
	}
	return client
}
