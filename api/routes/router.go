package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ishos/storefront/api/controllers"
	cartcontrollers "github.com/ishos/storefront/api/controllers/cart"
	ordercontrollers "github.com/ishos/storefront/api/controllers/orders"
	"github.com/ishos/storefront/api/middleware"
	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/internal/orders"
	"github.com/ishos/storefront/internal/session"
	"github.com/ishos/storefront/pkg/config"
	"github.com/ishos/storefront/pkg/logger"
	"github.com/ishos/storefront/pkg/metrics"
	"github.com/ishos/storefront/pkg/redis"
)

type sessionManager interface {
	Get(context.Context, string) (*session.Session, error)
}

// RedisStore is the slice of pkg/redis the HTTP layer uses for replay
// protection and throttling.
type RedisStore interface {
	redis.IdempotencyStore
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(...string) string
	Ping(context.Context) error
}

// NewRouter wires the storefront API. redisClient and dbP may be nil when
// those dependencies are not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	reader catalog.Reader,
	sessions sessionManager,
	ordersSvc orders.Service,
	redisClient RedisStore,
	dbP controllers.Pinger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	if m == nil {
		m = metrics.Nop()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, m.HTTP),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	deps := map[string]controllers.Pinger{"redis": nil, "db": nil}
	var (
		idemStore redis.IdempotencyStore
		rateStore middleware.RateLimiterStore
	)
	if redisClient != nil {
		deps["redis"] = redisClient
		idemStore = redisClient
		rateStore = redisClient
	}
	if dbP != nil {
		deps["db"] = dbP
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/store", controllers.StoreInfo(reader, nil))
		r.Get("/menu/products", controllers.MenuProducts(reader, logg))
		r.Get("/menu/products/featured", controllers.MenuFeatured(reader))
		r.Get("/menu/products/{productId}", controllers.MenuProduct(reader, logg))
		r.Get("/menu/categories", controllers.MenuCategories(reader))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, sessions, logg))
			r.Use(middleware.Idempotency(idemStore, logg))

			r.Get("/menu/filters", controllers.FiltersGet(logg))
			r.Put("/menu/filters", controllers.FiltersUpdate(logg))
			r.Delete("/menu/filters", controllers.FiltersReset(logg))
			r.Get("/menu/search", controllers.MenuSearch(reader, logg))

			r.Get("/cart", cartcontrollers.CartFetch(reader, logg))
			r.Delete("/cart", cartcontrollers.CartClear(logg))
			r.Post("/cart/items", cartcontrollers.CartAddItem(reader, logg))
			r.Patch("/cart/items/{itemId}", cartcontrollers.CartUpdateItem(reader, logg))
			r.Delete("/cart/items/{itemId}", cartcontrollers.CartRemoveItem(reader, logg))

			r.Get("/toasts", controllers.ToastsList(logg))
			r.Delete("/toasts", controllers.ToastsClear(logg))
			r.Delete("/toasts/{toastId}", controllers.ToastDismiss(logg))

			r.Post("/orders/validate", ordercontrollers.Validate(ordersSvc, logg))
			r.With(middleware.RateLimit(middleware.SubmitRateLimitPolicy(cfg.RateLimit), rateStore, logg)).
				Post("/orders", ordercontrollers.Submit(ordersSvc, logg))
		})

		// Staff endpoints work on the shop's order log and carry no session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.StaffOnly(cfg.Staff.Token, logg))
			r.Use(middleware.Idempotency(idemStore, logg))

			r.Get("/orders", ordercontrollers.List(ordersSvc, logg))
			r.Get("/orders/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
			r.Post("/orders/{orderId}/status", ordercontrollers.UpdateStatus(ordersSvc, logg))
		})
	})

	return r
}
