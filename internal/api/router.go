package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/accountio/ledger-service/internal/ledger"
)

// NewRouter builds the HTTP surface over the ledger façade.
func NewRouter(l *ledger.Ledger, logger *slog.Logger) http.Handler {
	h := NewAccountsHandler(l)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Close)
			r.Get("/balance", h.Balance)
			r.Post("/transfers", h.Transfer)
		})
	})
	return r
}
