// Package kernel assembles the HTTP handler: services, global middleware,
// the /metrics endpoint and the API routes.
package kernel

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/controllers"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
	"github.com/Shreehariballakkuraya/ScanPOS/app/routes"
	"github.com/Shreehariballakkuraya/ScanPOS/app/services"
	"github.com/Shreehariballakkuraya/ScanPOS/config"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/cache"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/event"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/metrics"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/middleware"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/reqid"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/response"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/router"
)

// HTTPKernel owns the router and the event bus the services publish on.
type HTTPKernel struct {
	router *router.Router
	bus    *event.Bus
}

// NewHTTPKernel wires services on db and store. A nil store disables report
// caching.
func NewHTTPKernel(db *gorm.DB, store cache.Store) *HTTPKernel {
	bus := event.New()
	r := router.New()

	// Outermost first: metrics see total latency, the request id exists
	// before anything logs, and panics are caught before the logger records
	// the status.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSFromOrigins(config.CORSOrigins())))
	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.Handle("/metrics", metrics.Handler())

	routes.RegisterAPI(r, Controllers(db, store, bus))

	return &HTTPKernel{router: r, bus: bus}
}

// Controllers builds every controller over one shared set of services.
func Controllers(db *gorm.DB, store cache.Store, bus *event.Bus) routes.Controllers {
	reports := services.NewReportService(db, store, config.ReportCacheTTL(), config.LowStockThreshold())
	reports.Listen(bus)

	return routes.Controllers{
		Auth:     controllers.NewAuthController(services.NewAuthService(db)),
		Products: controllers.NewProductController(services.NewProductService(db)),
		Invoices: controllers.NewInvoiceController(
			services.NewInvoiceService(db, repositories.StockLedger{}, bus),
			services.NewCartService(db),
		),
		Reports: controllers.NewReportController(reports),
		Users:   controllers.NewUserController(services.NewUserService(db)),
	}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists the named API routes.
func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }

// Shutdown detaches the event listeners.
func (k *HTTPKernel) Shutdown() { k.bus.Flush() }
