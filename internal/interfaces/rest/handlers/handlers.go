// Package handlers wires the issuer's HTTP API.
package handlers

import (
	"log/slog"

	"github.com/cardmint/cardmint/internal/application/services"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	authorize *services.AuthorizeService
	issue     *services.IssueService
	query     *services.QueryService
	logger    *slog.Logger
}

func NewHandlers(
	authorize *services.AuthorizeService,
	issue *services.IssueService,
	query *services.QueryService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		authorize: authorize,
		issue:     issue,
		query:     query,
		logger:    logger,
	}
}

// Routes builds the issuer's router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions", h.createTransaction)
		r.Get("/transactions", h.transactionHistory)

		r.Route("/bins", func(r chi.Router) {
			r.Post("/", h.registerBIN)
			r.Get("/", h.listBINs)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", h.issueCard)
			r.Route("/{cardNumber}", func(r chi.Router) {
				r.Get("/", h.getCard)
				r.Post("/balance", h.fundCard)
			})
		})
	})

	return r
}
