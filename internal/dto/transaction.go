package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paytrackhq/sms-finance-backend/internal/models"
)

// CreateTransactionRequest is the ingestion payload. With AIEnabled the
// financial fields are extracted from Message; without it they must be
// supplied directly and are validated strictly.
type CreateTransactionRequest struct {
	AIEnabled bool `json:"aiEnabled"`

	Message          string     `json:"message" validate:"required"`
	Sender           string     `json:"sender"`
	PhoneNumber      *string    `json:"phoneNumber" validate:"omitempty,max=15"`
	MessageID        *string    `json:"messageId" validate:"omitempty,max=255"`
	MessageTimestamp *time.Time `json:"messageTimestamp"`

	Amount               *decimal.Decimal `json:"amount"`
	Fees                 *decimal.Decimal `json:"fees"`
	Type                 *string          `json:"type" validate:"omitempty,oneof=DEBIT CREDIT"`
	RemainingBalance     *decimal.Decimal `json:"remainingBalance"`
	Category             *string          `json:"category"`
	Label                *string          `json:"label"`
	PaymentCode          *string          `json:"paymentCode"`
	TransactionReference *string          `json:"transactionReference"`
	Recipient            *string          `json:"recipient"`
	Summary              *string          `json:"summary"`
	CompletedAt          *time.Time       `json:"completedAt"`
}

// UpdateTransactionRequest is a partial update. id, message and createdAt
// are immutable and deliberately absent.
type UpdateTransactionRequest struct {
	Amount               *decimal.Decimal `json:"amount"`
	Fees                 *decimal.Decimal `json:"fees"`
	Type                 *string          `json:"type" validate:"omitempty,oneof=DEBIT CREDIT"`
	RemainingBalance     *decimal.Decimal `json:"remainingBalance"`
	Category             *string          `json:"category"`
	Label                *string          `json:"label"`
	PaymentCode          *string          `json:"paymentCode"`
	TransactionReference *string          `json:"transactionReference"`
	Sender               *string          `json:"sender"`
	Recipient            *string          `json:"recipient"`
	PhoneNumber          *string          `json:"phoneNumber" validate:"omitempty,max=15"`
	Summary              *string          `json:"summary"`
	CompletedAt          *time.Time       `json:"completedAt"`
	MessageTimestamp     *time.Time       `json:"messageTimestamp"`
}

type TransactionPage struct {
	Data       []models.Transaction `json:"data"`
	NextCursor *string              `json:"nextCursor,omitempty"`
}
