package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type SummaryResult struct {
	TotalTransactions int64            `json:"totalTransactions"`
	Balance           *decimal.Decimal `json:"balance"`
	TotalFees         decimal.Decimal  `json:"totalFees"`
	From              time.Time        `json:"from"`
	To                time.Time        `json:"to"`
}

type CategoryBucket struct {
	Label       string          `json:"label"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalFees   decimal.Decimal `json:"totalFees"`
	Count       int64           `json:"count"`
}

type PeriodBucket struct {
	Period      time.Time       `json:"period"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalFees   decimal.Decimal `json:"totalFees"`
	Count       int64           `json:"count"`
}

type TrendsResult struct {
	Granularity     string           `json:"granularity"`
	ByCategory      []CategoryBucket `json:"byCategory"`
	ByPeriod        []PeriodBucket   `json:"byPeriod"`
	AverageSpending decimal.Decimal  `json:"averageSpending"`
	From            time.Time        `json:"from"`
	To              time.Time        `json:"to"`
}
