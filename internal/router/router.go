package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/paytrackhq/sms-finance-backend/internal/handlers"
	"github.com/paytrackhq/sms-finance-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(lm.LoggerMiddleware)

	th := handlers.NewTransactionHandlers(deps)
	sh := handlers.NewStatsHandlers(deps)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/transactions/stats", sh.Routes())
		r.Mount("/transactions", th.Routes())
	})
	return r
}
