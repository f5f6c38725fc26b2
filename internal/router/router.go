package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/halipro/api/internal/auth"
	"github.com/halipro/api/internal/enum"
	"github.com/halipro/api/internal/handler"
	"github.com/halipro/api/internal/middleware"
	"github.com/halipro/api/internal/ws"
)

// Deps collects everything the router wires together.
type Deps struct {
	Tokens         *auth.Manager
	Hub            *ws.Hub
	Auth           *handler.AuthHandler
	Users          *handler.UserHandler
	Orders         *handler.OrderHandler
	Customers      *handler.CustomerHandler
	Products       *handler.ProductHandler
	Drivers        *handler.DriverHandler
	Regions        *handler.RegionHandler
	Templates      *handler.TemplateHandler
	Ledger         *handler.LedgerHandler
	Reports        *handler.ReportHandler
	AllowedOrigins []string
}

func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/ws/orders", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(deps.Hub, deps.Tokens, w, req)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Tokens))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", deps.Users.GetMe)
				r.Put("/", deps.Users.UpdateProfile)
				r.Put("/password", deps.Users.ChangePassword)
				r.Put("/push-token", deps.Users.RegisterPushToken)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", deps.Orders.Create)
				r.Get("/", deps.Orders.List)
				r.Get("/{id}", deps.Orders.Get)
				r.Put("/{id}", deps.Orders.Update)
				r.Post("/{id}/advance", deps.Orders.Advance)
				r.Post("/{id}/cancel", deps.Orders.Cancel)
				r.Post("/{id}/settle", deps.Orders.Settle)
				r.Get("/{id}/receipt", deps.Orders.Receipt)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Post("/", deps.Customers.Create)
				r.Get("/", deps.Customers.List)
				r.Get("/{id}", deps.Customers.Get)
				r.Get("/{id}/orders", deps.Customers.Orders)
				r.Put("/{id}", deps.Customers.Update)
				r.Delete("/{id}", deps.Customers.Delete)
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", deps.Products.Create)
				r.Get("/", deps.Products.List)
				r.Get("/{id}", deps.Products.Get)
				r.Put("/{id}", deps.Products.Update)
				r.Delete("/{id}", deps.Products.Delete)
			})

			r.Route("/drivers", func(r chi.Router) {
				r.Post("/", deps.Drivers.Create)
				r.Get("/", deps.Drivers.List)
				r.Put("/{id}", deps.Drivers.Update)
				r.Delete("/{id}", deps.Drivers.Delete)
			})

			r.Route("/regions", func(r chi.Router) {
				r.Post("/", deps.Regions.Create)
				r.Get("/", deps.Regions.List)
				r.Put("/{id}", deps.Regions.Update)
				r.Delete("/{id}", deps.Regions.Delete)
			})

			r.Route("/message-templates", func(r chi.Router) {
				r.Post("/", deps.Templates.Create)
				r.Get("/", deps.Templates.List)
				r.Put("/{id}", deps.Templates.Update)
				r.Delete("/{id}", deps.Templates.Delete)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", deps.Ledger.CreateExpense)
				r.Get("/", deps.Ledger.ListExpenses)
				r.Delete("/{id}", deps.Ledger.DeleteExpense)
			})

			r.Route("/incomes", func(r chi.Router) {
				r.Post("/", deps.Ledger.CreateIncome)
				r.Get("/", deps.Ledger.ListIncomes)
				r.Delete("/{id}", deps.Ledger.DeleteIncome)
			})

			// Financial reporting is restricted to the business owner.
			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequireRole(enum.UserRoleOwner))
				r.Get("/cash-summary", deps.Reports.CashSummary)
				r.Get("/cash-summary/export", deps.Reports.ExportCashSummary)
				r.Get("/daily-summary", deps.Reports.DailySummary)
				r.Get("/expense-categories", deps.Reports.ExpenseCategories)
			})
		})
	})

	return r
}
