// Package httpapi wires the HTTP surface of the tracker. Handlers stay thin
// and delegate every business rule to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hasbulkhan45/MoneyManager/internal/service/bills"
	"github.com/hasbulkhan45/MoneyManager/internal/service/ledger"
)

// Server composes the storage backend and the two services behind a Chi
// router.
type Server struct {
	store Store
	svc   ledger.Service
	bills bills.Service
	curr  string
	log   *slog.Logger
	rt    *chi.Mux
}

// New constructs the HTTP server with routes and middleware. notifier may be
// nil when reminder scheduling is not wired.
func New(store Store, notifier Notifier, logger *slog.Logger, currency, payWallet string) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		store: store,
		svc:   ledger.New(store, store, store, notifier, currency),
		bills: bills.New(store, store, store, notifier, payWallet),
		curr:  currency,
		log:   logger,
		rt:    r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public API endpoints.
func (s *Server) routes() {
	// Ledger
	s.rt.Post("/v1/transactions", s.postTransaction)
	s.rt.Get("/v1/transactions", s.listTransactions)
	s.rt.Delete("/v1/transactions/{id}", s.deleteTransaction)

	// Savings
	s.rt.Post("/v1/savings/deposits", s.postDeposit)
	s.rt.Post("/v1/savings/withdrawals", s.postWithdrawal)
	s.rt.Get("/v1/savings", s.savingsBreakdown)
	s.rt.Get("/v1/savings/{vehicle}/balance", s.vehicleBalance)

	// Balances and reports
	s.rt.Get("/v1/balances", s.totals)
	s.rt.Get("/v1/wallets/{name}/balance", s.walletBalance)
	s.rt.Get("/v1/reports/expenses", s.expenseReport)
	s.rt.Get("/v1/budgets", s.budgetStatus)
	s.rt.Put("/v1/budgets/{category}", s.putBudget)

	// Bills
	s.rt.Post("/v1/bills", s.postBill)
	s.rt.Get("/v1/bills", s.listBills)
	s.rt.Post("/v1/bills/{id}/pay", s.payBill)
	s.rt.Delete("/v1/bills/{id}", s.deleteBill)

	// Registries
	s.rt.Get("/v1/categories", s.listRegistry(s.store.ListCategories))
	s.rt.Post("/v1/categories", s.addRegistry(s.store.AddCategory))
	s.rt.Delete("/v1/categories/{name}", s.removeRegistry(s.store.RemoveCategory))
	s.rt.Get("/v1/wallets", s.listWallets)
	s.rt.Post("/v1/wallets", s.addRegistry(s.store.AddWallet))
	s.rt.Delete("/v1/wallets/{name}", s.removeRegistry(s.store.RemoveWallet))
	s.rt.Get("/v1/savings-vehicles", s.listRegistry(s.store.ListSavingsVehicles))
	s.rt.Post("/v1/savings-vehicles", s.addRegistry(s.store.AddSavingsVehicle))
	s.rt.Delete("/v1/savings-vehicles/{name}", s.removeRegistry(s.store.RemoveSavingsVehicle))

	// Preferences
	s.rt.Get("/v1/preferences", s.getPreferences)
	s.rt.Put("/v1/preferences", s.putPreferences)

	// Operational
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}
