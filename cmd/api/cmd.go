package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/paytrackhq/sms-finance-backend/internal/bootstrap"
	"github.com/paytrackhq/sms-finance-backend/internal/config"
	"github.com/paytrackhq/sms-finance-backend/internal/handlers"
	"github.com/paytrackhq/sms-finance-backend/internal/response"
	"github.com/paytrackhq/sms-finance-backend/internal/router"
	"github.com/paytrackhq/sms-finance-backend/internal/services"
	"github.com/paytrackhq/sms-finance-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	tstore := store.NewTransactionStore(bs.DB)

	// services
	exserv := services.NewExtractionService(bs.Vertex, bs.Gemini)
	tserv := services.NewTransactionService(tstore, exserv)
	sserv := services.NewStatsService(tstore)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.TransactionSvc = tserv
	deps.StatsSvc = sserv

	// router
	r := router.NewRouter(deps)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
