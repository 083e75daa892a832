package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nazmulhossain/shopdesk-backend/api/controllers"
	"github.com/nazmulhossain/shopdesk-backend/api/middleware"
	"github.com/nazmulhossain/shopdesk-backend/internal/courier"
	"github.com/nazmulhossain/shopdesk-backend/internal/customers"
	"github.com/nazmulhossain/shopdesk-backend/internal/ledger"
	"github.com/nazmulhossain/shopdesk-backend/internal/orders"
	"github.com/nazmulhossain/shopdesk-backend/internal/products"
	"github.com/nazmulhossain/shopdesk-backend/pkg/config"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
	pkgredis "github.com/nazmulhossain/shopdesk-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Nil entries disable the
// routes they back rather than panicking at wire-up.
type Deps struct {
	DB        controllers.Pinger
	Redis     *pkgredis.Client
	Products  *products.Service
	Customers *customers.Service
	Orders    *orders.Service
	Ledger    *ledger.Service
	Courier   *courier.Bridge
	Sync      *courier.Reconciler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(deps)))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if deps.Redis != nil {
			r.Use(middleware.Idempotency(deps.Redis, logg))
		}

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Post("/", controllers.CreateProduct(deps.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))
			r.Patch("/{productId}", controllers.UpdateProduct(deps.Products, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(deps.Products, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(deps.Customers, logg))
			r.Post("/", controllers.CreateCustomer(deps.Customers, logg))
			r.Get("/{customerId}", controllers.GetCustomer(deps.Customers, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
			r.Patch("/{orderId}", controllers.EditOrder(deps.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(deps.Orders, logg))
			r.Post("/{orderId}/courier", controllers.SendToCourier(deps.Courier, logg))
			r.Post("/{orderId}/courier/sync", controllers.SyncCourierStatus(deps.Sync, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(deps.Ledger, logg))
			r.Post("/", controllers.CreateTransaction(deps.Ledger, logg))
			r.Get("/balance", controllers.TransactionBalance(deps.Ledger, logg))
		})
	})

	return r
}

func readinessDeps(deps Deps) map[string]controllers.Pinger {
	out := map[string]controllers.Pinger{}
	if deps.DB != nil {
		out["database"] = deps.DB
	}
	if deps.Redis != nil {
		out["redis"] = deps.Redis
	}
	return out
}
