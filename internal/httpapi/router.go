// Package httpapi wires the HTTP surface of the ledger service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tinoosan/fintrack/internal/service/account"
	"github.com/tinoosan/fintrack/internal/service/category"
	"github.com/tinoosan/fintrack/internal/service/currency"
	"github.com/tinoosan/fintrack/internal/service/summary"
	"github.com/tinoosan/fintrack/internal/service/transaction"
	"github.com/tinoosan/fintrack/internal/service/user"
)

// Services bundles the domain services the handlers delegate to.
type Services struct {
	Users        user.Service
	Accounts     account.Service
	Categories   category.Service
	Currencies   currency.Service
	Transactions transaction.Service
	Summaries    summary.Service
}

// TokenVerifier resolves a bearer token to the calling user's id.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// ReadyChecker is implemented by backends that can report connectivity.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// Server wires handlers and middleware using Chi.
type Server struct {
	svc    Services
	tokens TokenVerifier
	ready  []ReadyChecker
	log    *slog.Logger
	rt     *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
// The logger is used by request logging, panic recovery and 5xx reporting.
func New(svc Services, tokens TokenVerifier, logger *slog.Logger, ready ...ReadyChecker) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{svc: svc, tokens: tokens, ready: ready, log: logger, rt: r}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Health and metrics (unversioned, unauthenticated)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())

	s.rt.Route("/v1", func(r chi.Router) {
		r.With(s.validateRegister()).Post("/auth/register", s.register)
		r.With(s.validateLogin()).Post("/auth/login", s.login)
		r.Get("/dictionary/categories", s.getCategoriesDictionary)
		r.Get("/dictionary/currencies", s.getCurrenciesDictionary)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/users/me", s.getMe)
			r.Delete("/users/me", s.deleteMe)

			r.With(s.validatePostAccount()).Post("/accounts", s.postAccount)
			r.Get("/accounts", s.listAccounts)
			r.Get("/accounts/{id}", s.getAccount)
			r.With(s.validatePatchAccount()).Patch("/accounts/{id}", s.patchAccount)
			r.Delete("/accounts/{id}", s.deleteAccount)
			r.Get("/accounts/{id}/reconciliation", s.getReconciliation)

			r.With(s.validateNamed()).Post("/categories", s.postCategory)
			r.Get("/categories", s.listCategories)
			r.Get("/categories/{id}", s.getCategory)
			r.With(s.validateNamed()).Patch("/categories/{id}", s.patchCategory)
			r.Delete("/categories/{id}", s.deleteCategory)

			r.With(s.validatePostCurrency()).Post("/currencies", s.postCurrency)
			r.Get("/currencies", s.listCurrencies)
			r.Get("/currencies/{id}", s.getCurrency)
			r.With(s.validatePatchCurrency()).Patch("/currencies/{id}", s.patchCurrency)
			r.Delete("/currencies/{id}", s.deleteCurrency)

			r.With(s.validatePostTransaction()).Post("/transactions", s.postTransaction)
			r.With(s.validateListTransactions()).Get("/transactions", s.listTransactions)
			r.Get("/transactions/{id}", s.getTransaction)
			r.With(s.validatePatchTransaction()).Patch("/transactions/{id}", s.patchTransaction)
			r.Delete("/transactions/{id}", s.deleteTransaction)

			r.Get("/summaries/daily", s.dailySummary)
			r.Get("/summaries/monthly", s.monthlySummary)
			r.Get("/summaries/yearly", s.yearlySummary)
			r.Get("/summaries/range", s.rangeSummary)
		})
	})
}
