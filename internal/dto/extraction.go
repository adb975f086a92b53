package dto

import "github.com/shopspring/decimal"

// SMSPayload is the caller-supplied metadata handed to extraction.
type SMSPayload struct {
	Message     string
	Sender      string
	PhoneNumber *string
}

// ExtractedTransaction is the loose pre-validation draft produced by a
// provider. It never leaves the service layer; the normalizer turns it
// into a models.Transaction or a ValidationError.
type ExtractedTransaction struct {
	Amount               *decimal.Decimal `json:"amount"`
	Fees                 *decimal.Decimal `json:"fees"`
	Type                 string           `json:"type"`
	Sender               string           `json:"sender"`
	Recipient            string           `json:"recipient"`
	Category             string           `json:"category"`
	Label                *string          `json:"label"`
	PaymentCode          *string          `json:"paymentCode"`
	TransactionReference *string          `json:"transactionReference"`
	RemainingBalance     *decimal.Decimal `json:"remainingBalance"`
	Summary              string           `json:"summary"`
	CompletedAt          string           `json:"completedAt"`
	PhoneNumber          *string          `json:"phoneNumber"`
}
