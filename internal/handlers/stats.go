package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/paytrackhq/sms-finance-backend/internal/dto"
	"github.com/paytrackhq/sms-finance-backend/internal/errs"
	"github.com/paytrackhq/sms-finance-backend/internal/response"
)

type StatsService interface {
	Summary(ctx context.Context, from, to time.Time) (dto.SummaryResult, error)
	Trends(ctx context.Context, from, to time.Time, granularity string) (dto.TrendsResult, error)
}

type statsHandlers struct {
	ResponseHandler response.ResponseHandler
	StatsSvc        StatsService
	clockNow        func() time.Time
}

func NewStatsHandlers(deps *Deps) *statsHandlers {
	return &statsHandlers{
		ResponseHandler: deps.ResponseHandler,
		StatsSvc:        deps.StatsSvc,
		clockNow:        time.Now,
	}
}

func (h *statsHandlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/summary", h.Summary)
	r.Get("/trends", h.Trends)
	return r
}

func (h *statsHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.dateRange(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	result, err := h.StatsSvc.Summary(r.Context(), from, to)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, http.StatusOK, result)
}

func (h *statsHandlers) Trends(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.dateRange(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	result, err := h.StatsSvc.Trends(r.Context(), from, to, r.URL.Query().Get("granularity"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, http.StatusOK, result)
}

// dateRange parses from/to query params, defaulting to month-to-date.
func (h *statsHandlers) dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := h.clockNow().UTC()

	from, err := parseDateParam(r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, errs.NewFieldValidationError("invalid date range", map[string]string{"from": err.Error()})
	}
	to, err := parseDateParam(r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, errs.NewFieldValidationError("invalid date range", map[string]string{"to": err.Error()})
	}

	if from.IsZero() {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if to.IsZero() {
		to = now
	}
	return from, to, nil
}

func parseDateParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errs.NewValidationError("dates must be YYYY-MM-DD or RFC 3339")
	}
	return ts, nil
}
