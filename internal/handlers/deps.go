package handlers

import (
	"log/slog"

	"github.com/paytrackhq/sms-finance-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	TransactionSvc  TransactionService
	StatsSvc        StatsService
}
