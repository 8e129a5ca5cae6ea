/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:      Request logging
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. RequestID:   Unique ID per request for tracing
  4. CORS:        Cross-origin requests for frontend
  5. requireAuth: JWT bearer auth on everything behind /api except login.
                  Disabled entirely when no JWT secret is configured,
                  which is the mode the integration tests run in.

ROUTE GROUPS:
  /api/auth/*          Login
  /api/accounts/*      Account queries, deposits, withdrawals
  /api/transfers/*     Internal, SEPA and SWIFT transfers
  /api/bills/*         Bill issuing and payment
  /api/orders/*        Standing order management
  /api/transactions    Full ledger (admin)
  /api/system/*        Simulated clock

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Login and JWT middleware
  - cmd/bankd/serve.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			// Account routes
			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", h.ListAccounts)
				r.Get("/{iban}", h.GetAccount)
				r.Get("/{iban}/transactions", h.GetAccountTransactions)
				r.Post("/{iban}/deposit", h.Deposit)
				r.Post("/{iban}/withdraw", h.Withdraw)
			})

			// Transfer routes
			r.Route("/transfers", func(r chi.Router) {
				r.Post("/", h.InternalTransfer)
				r.Post("/sepa", h.SEPATransfer)
				r.Post("/swift", h.SWIFTTransfer)
			})

			// Bill routes
			r.Route("/bills", func(r chi.Router) {
				r.Get("/", h.ListBills)
				r.Post("/", h.IssueBill)
				r.Post("/{id}/pay", h.PayBill)
				r.Post("/{id}/cancel", h.CancelBill)
			})

			// Standing order routes
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.ListOrders)
				r.Post("/transfer", h.CreateTransferOrder)
				r.Post("/billpay", h.CreateBillPaymentOrder)
				r.Post("/{id}/pause", h.PauseOrder)
				r.Post("/{id}/resume", h.ResumeOrder)
				r.Post("/{id}/cancel", h.CancelOrder)
			})

			// Ledger and clock routes
			r.Get("/transactions", h.ListTransactions)
			r.Route("/system", func(r chi.Router) {
				r.Get("/date", h.GetSystemDate)
				r.Post("/simulate", h.Simulate)
			})
		})
	})

	return r
}
