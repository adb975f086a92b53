package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "DEBIT"
	TransactionTypeCredit TransactionType = "CREDIT"
)

// SelfParty marks money that originated from or stayed with the account
// holder. Sender/Recipient are never empty once normalized.
const SelfParty = "self"

type Transaction struct {
	ID                   string           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Amount               decimal.Decimal  `gorm:"column:amount;type:numeric(20,4);not null" json:"amount"`
	Fees                 decimal.Decimal  `gorm:"column:fees;type:numeric(20,4);not null;default:0" json:"fees"`
	Type                 TransactionType  `gorm:"column:type;type:varchar(6);not null" json:"type"`
	RemainingBalance     *decimal.Decimal `gorm:"column:remaining_balance;type:numeric(20,4)" json:"remainingBalance,omitempty"`
	Category             string           `gorm:"column:transaction_category;size:255;default:other" json:"category"`
	Label                *string          `gorm:"column:label;size:255" json:"label,omitempty"`
	PaymentCode          *string          `gorm:"column:payment_code;size:255" json:"paymentCode,omitempty"`
	TransactionReference *string          `gorm:"column:transaction_reference;size:255" json:"transactionReference,omitempty"`
	Sender               string           `gorm:"column:sender;size:255;not null" json:"sender"`
	Recipient            string           `gorm:"column:recipient;size:255;not null" json:"recipient"`
	Message              string           `gorm:"column:message;type:text;not null" json:"message"`
	MessageID            *string          `gorm:"column:message_id;size:255;uniqueIndex:idx_transactions_message_id" json:"messageId,omitempty"`
	MessageTimestamp     *time.Time       `gorm:"column:message_timestamp" json:"messageTimestamp,omitempty"`
	PhoneNumber          *string          `gorm:"column:phone_number;size:15" json:"phoneNumber,omitempty"`
	Summary              *string          `gorm:"column:summary;size:255" json:"summary,omitempty"`
	CompletedAt          *time.Time       `gorm:"column:completed_at" json:"completedAt,omitempty"`
	CreatedAt            time.Time        `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (Transaction) TableName() string { return "transactions" }
