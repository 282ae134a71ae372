package routes

import (
	"encoding/json"
	"net/http"

	"github.com/Shreehariballakkuraya/ScanPOS/app/controllers"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/ctx"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/middleware"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/rbac"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/router"
)

// Controllers bundles the handlers the API mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Invoices *controllers.InvoiceController
	Reports  *controllers.ReportController
	Users    *controllers.UserController
}

func RegisterAPI(r *router.Router, c Controllers) {
	r.Get("/health", "health", health)

	api := r.Group("/api")
	api.Post("/auth/register", "auth.register", ctx.Wrap(c.Auth.Register))
	api.Post("/auth/login", "auth.login", ctx.Wrap(c.Auth.Login))

	protected := api.Group("", middleware.Auth)
	protected.Get("/auth/me", "auth.me", ctx.Wrap(c.Auth.Me))

	protected.Get("/products", "products.index", ctx.Wrap(c.Products.Index))
	protected.Get("/products/by-barcode/{barcode}", "products.by_barcode", ctx.Wrap(c.Products.ByBarcode))
	protected.Get("/products/{id}", "products.show", ctx.Wrap(c.Products.Show))

	catalog := protected.Group("/products", rbac.HasRole(rbac.RoleAdmin))
	catalog.Post("", "products.store", ctx.Wrap(c.Products.Store))
	catalog.Put("/{id}", "products.update", ctx.Wrap(c.Products.Update))
	catalog.Delete("/{id}", "products.destroy", ctx.Wrap(c.Products.Destroy))

	protected.Get("/invoices", "invoices.index", ctx.Wrap(c.Invoices.Index))
	protected.Post("/invoices", "invoices.store", ctx.Wrap(c.Invoices.Store))
	protected.Get("/invoices/{id}", "invoices.show", ctx.Wrap(c.Invoices.Show))
	protected.Delete("/invoices/{id}", "invoices.destroy", ctx.Wrap(c.Invoices.Destroy))
	protected.Post("/invoices/{id}/complete", "invoices.complete", ctx.Wrap(c.Invoices.Complete))
	protected.Post("/invoices/{id}/items", "invoices.items.store", ctx.Wrap(c.Invoices.AddItem))
	protected.Put("/invoices/{id}/items/{itemID}", "invoices.items.update", ctx.Wrap(c.Invoices.UpdateItem))
	protected.Delete("/invoices/{id}/items/{itemID}", "invoices.items.destroy", ctx.Wrap(c.Invoices.RemoveItem))

	protected.Get("/reports/sales", "reports.sales", ctx.Wrap(c.Reports.Sales))
	protected.Get("/reports/dashboard", "reports.dashboard", ctx.Wrap(c.Reports.Dashboard))

	admin := protected.Group("/users", rbac.HasRole(rbac.RoleAdmin))
	admin.Get("", "users.index", ctx.Wrap(c.Users.Index))
	admin.Post("", "users.store", ctx.Wrap(c.Users.Store))
	admin.Get("/{id}", "users.show", ctx.Wrap(c.Users.Show))
	admin.Put("/{id}", "users.update", ctx.Wrap(c.Users.Update))
	admin.Delete("/{id}", "users.destroy", ctx.Wrap(c.Users.Destroy))
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"}) //nolint:errcheck
}
