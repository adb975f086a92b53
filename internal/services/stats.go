package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paytrackhq/sms-finance-backend/internal/dto"
	"github.com/paytrackhq/sms-finance-backend/internal/errs"
)

type statsStore interface {
	SummarizeRange(ctx context.Context, from, to time.Time) (dto.SummaryResult, error)
	CategoryTrends(ctx context.Context, from, to time.Time) ([]dto.CategoryBucket, error)
	PeriodTrends(ctx context.Context, from, to time.Time, granularity string) ([]dto.PeriodBucket, error)
}

type statsService struct {
	store statsStore
}

func NewStatsService(store statsStore) *statsService {
	return &statsService{store: store}
}

var allowedGranularities = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
}

func (s *statsService) Summary(ctx context.Context, from, to time.Time) (dto.SummaryResult, error) {
	if err := validateRange(from, to); err != nil {
		return dto.SummaryResult{}, err
	}

	result, err := s.store.SummarizeRange(ctx, from, to)
	if err != nil {
		return dto.SummaryResult{}, err
	}
	result.From = from
	result.To = to
	return result, nil
}

// Trends buckets DEBIT spending by lower-cased label and by a time
// truncation of createdAt. The average is computed over per-bucket
// totals, so an empty month is absent rather than dragging it to zero.
func (s *statsService) Trends(ctx context.Context, from, to time.Time, granularity string) (dto.TrendsResult, error) {
	if err := validateRange(from, to); err != nil {
		return dto.TrendsResult{}, err
	}
	if granularity == "" {
		granularity = "month"
	}
	if !allowedGranularities[granularity] {
		return dto.TrendsResult{}, errs.NewFieldValidationError("invalid granularity", map[string]string{
			"granularity": "granularity must be one of day, week, month, year",
		})
	}

	byCategory, err := s.store.CategoryTrends(ctx, from, to)
	if err != nil {
		return dto.TrendsResult{}, err
	}
	byPeriod, err := s.store.PeriodTrends(ctx, from, to, granularity)
	if err != nil {
		return dto.TrendsResult{}, err
	}

	return dto.TrendsResult{
		Granularity:     granularity,
		ByCategory:      byCategory,
		ByPeriod:        byPeriod,
		AverageSpending: averagePerBucket(byPeriod),
		From:            from,
		To:              to,
	}, nil
}

func averagePerBucket(buckets []dto.PeriodBucket) decimal.Decimal {
	if len(buckets) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, bucket := range buckets {
		total = total.Add(bucket.TotalAmount)
	}
	return total.DivRound(decimal.NewFromInt(int64(len(buckets))), 4)
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return errs.NewValidationError("a date range is required")
	}
	if to.Before(from) {
		return errs.NewValidationError("end date must not precede start date")
	}
	return nil
}
