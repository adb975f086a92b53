package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paytrackhq/sms-finance-backend/internal/dto"
	"github.com/paytrackhq/sms-finance-backend/internal/errs"
	"github.com/paytrackhq/sms-finance-backend/internal/models"
	"github.com/paytrackhq/sms-finance-backend/internal/taxonomy"
)

// completedAtLayouts are tried in order when coercing the draft's date.
var completedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeTransaction merges an extraction draft with caller-supplied
// metadata and enforces the record's field contract. Caller-supplied
// provenance (message, phoneNumber, sender, messageId, messageTimestamp)
// wins over model guesses for those keys. The draft never leaves this
// function: the result is either a strict record or a ValidationError
// naming every offending field.
func normalizeTransaction(draft *dto.ExtractedTransaction, meta dto.CreateTransactionRequest, now time.Time) (*models.Transaction, error) {
	fields := map[string]string{}

	if draft.Amount == nil {
		fields["amount"] = "amount is required"
	} else if draft.Amount.IsNegative() {
		fields["amount"] = "amount must be non-negative"
	}

	fees := decimal.Zero
	if draft.Fees != nil {
		if draft.Fees.IsNegative() {
			fields["fees"] = "fees must be non-negative"
		} else {
			fees = *draft.Fees
		}
	}

	txType := models.TransactionType(strings.ToUpper(strings.TrimSpace(draft.Type)))
	if txType != models.TransactionTypeDebit && txType != models.TransactionTypeCredit {
		fields["type"] = "type must be DEBIT or CREDIT"
	}

	if draft.RemainingBalance != nil && draft.RemainingBalance.IsNegative() {
		fields["remainingBalance"] = "remainingBalance must be non-negative"
	}

	if meta.Message == "" {
		fields["message"] = "message is required"
	}

	phone := meta.PhoneNumber
	if phone == nil {
		phone = draft.PhoneNumber
	}
	if phone != nil && len(*phone) > 15 {
		fields["phoneNumber"] = "phoneNumber must be at most 15 characters"
	}

	if len(fields) > 0 {
		return nil, errs.NewFieldValidationError("transaction failed validation", fields)
	}

	category := strings.ToLower(strings.TrimSpace(draft.Category))
	if !taxonomy.IsCategoryAllowed(category) {
		category = taxonomy.CategoryOther
	}

	sender := strings.TrimSpace(meta.Sender)
	if sender == "" {
		sender = strings.TrimSpace(draft.Sender)
	}
	if sender == "" {
		sender = models.SelfParty
	}
	recipient := strings.TrimSpace(draft.Recipient)
	if recipient == "" {
		recipient = models.SelfParty
	}

	completedAt := parseCompletedAt(draft.CompletedAt, now)
	messageTimestamp := meta.MessageTimestamp
	if messageTimestamp == nil {
		messageTimestamp = &now
	}

	record := &models.Transaction{
		Amount:               *draft.Amount,
		Fees:                 fees,
		Type:                 txType,
		RemainingBalance:     draft.RemainingBalance,
		Category:             category,
		Label:                emptyToNil(draft.Label),
		PaymentCode:          emptyToNil(draft.PaymentCode),
		TransactionReference: emptyToNil(draft.TransactionReference),
		Sender:               sender,
		Recipient:            recipient,
		Message:              meta.Message,
		MessageID:            emptyToNil(meta.MessageID),
		MessageTimestamp:     messageTimestamp,
		PhoneNumber:          phone,
		Summary:              emptyToNil(&draft.Summary),
		CompletedAt:          &completedAt,
	}
	return record, nil
}

// draftFromRequest adapts a direct (non-AI) payload into the same draft
// shape, so both ingestion paths share one normalization contract.
func draftFromRequest(req dto.CreateTransactionRequest) *dto.ExtractedTransaction {
	draft := &dto.ExtractedTransaction{
		Amount:               req.Amount,
		Fees:                 req.Fees,
		RemainingBalance:     req.RemainingBalance,
		Label:                req.Label,
		PaymentCode:          req.PaymentCode,
		TransactionReference: req.TransactionReference,
		PhoneNumber:          req.PhoneNumber,
	}
	if req.Type != nil {
		draft.Type = *req.Type
	}
	if req.Category != nil {
		draft.Category = *req.Category
	}
	if req.Recipient != nil {
		draft.Recipient = *req.Recipient
	}
	if req.Summary != nil {
		draft.Summary = *req.Summary
	}
	if req.CompletedAt != nil {
		draft.CompletedAt = req.CompletedAt.Format(time.RFC3339)
	}
	return draft
}

func parseCompletedAt(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return now
	}
	for _, layout := range completedAtLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return now
}

func emptyToNil(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}
