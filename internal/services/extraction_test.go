package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paytrackhq/sms-finance-backend/internal/dto"
	"github.com/paytrackhq/sms-finance-backend/internal/errs"
	"github.com/paytrackhq/sms-finance-backend/pkg/helpers"
)

type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, system, content string) (string, error) {
	f.calls++
	return f.text, f.err
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
}

func TestExtractPrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{
		name: "vertex",
		text: `{"amount": 500, "fees": 0, "type": "CREDIT", "sender": "Jane", "recipient": "self", "category": "transfer", "summary": "Received money from Jane"}`,
	}
	secondary := &fakeProvider{name: "gemini", text: "{}"}
	svc := NewExtractionService(primary, secondary)
	svc.clockNow = fixedClock

	draft, err := svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "You have received 500 RWF from Jane."})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if draft == nil {
		t.Fatal("expected a draft")
	}
	if draft.Type != "CREDIT" || draft.Sender != "Jane" {
		t.Errorf("draft mismatch: type=%q sender=%q", draft.Type, draft.Sender)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be called when primary succeeds, got %d calls", secondary.calls)
	}
}

func TestExtractFallsBackToSecondary(t *testing.T) {
	primary := &fakeProvider{name: "vertex", err: errors.New("quota exceeded")}
	secondary := &fakeProvider{
		name: "gemini",
		text: "```json\n{\"amount\": 1200, \"type\": \"DEBIT\", \"sender\": \"self\", \"recipient\": \"MTN\", \"category\": \"airtime_purchase\", \"summary\": \"Airtime purchase\"}\n```",
	}
	svc := NewExtractionService(primary, secondary)

	draft, err := svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "Airtime purchase of 1200 RWF"})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if draft == nil {
		t.Fatal("expected a draft from the fallback provider")
	}
	if draft.Category != "airtime_purchase" {
		t.Errorf("category mismatch: %q", draft.Category)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("expected both providers tried once, got %d and %d", primary.calls, secondary.calls)
	}
}

func TestExtractAllProvidersFail(t *testing.T) {
	primary := &fakeProvider{name: "vertex", err: errors.New("unavailable")}
	secondary := &fakeProvider{name: "gemini", text: "sorry, I cannot help with that"}
	svc := NewExtractionService(primary, secondary)

	_, err := svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "You received 500 RWF"})
	var pfe *errs.ProviderFailureError
	if !errors.As(err, &pfe) {
		t.Fatalf("expected ProviderFailureError, got %v", err)
	}
}

func TestExtractEmptyObjectMeansNotATransaction(t *testing.T) {
	primary := &fakeProvider{name: "vertex", text: "{}"}
	svc := NewExtractionService(primary)

	draft, err := svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "Your verification code is 123456"})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if draft != nil {
		t.Fatalf("expected nil draft, got %+v", draft)
	}
}

func TestExtractImplausibleAmountWithoutCurrency(t *testing.T) {
	// The model invented a record for a message with no amount and no
	// currency marker anywhere in the text.
	primary := &fakeProvider{
		name: "vertex",
		text: `{"type": "DEBIT", "sender": "self", "recipient": "someone", "category": "other", "summary": "A payment"}`,
	}
	svc := NewExtractionService(primary)

	draft, err := svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "Hey, are we still on for lunch?"})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if draft != nil {
		t.Fatalf("expected nil draft, got %+v", draft)
	}
}

func TestExtractMissingAmountKeptWhenCurrencyPresent(t *testing.T) {
	primary := &fakeProvider{
		name: "vertex",
		text: `{"type": "DEBIT", "sender": "self", "recipient": "shop", "category": "goods_payment", "summary": "Payment to shop"}`,
	}
	svc := NewExtractionService(primary)

	draft, err := svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "You paid RWF to the shop"})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if draft == nil {
		t.Fatal("a currency marker in the raw message keeps the draft alive")
	}
}

func TestExtractFailedSummaryDowngraded(t *testing.T) {
	primary := &fakeProvider{
		name: "vertex",
		text: `{"amount": 900, "type": "DEBIT", "sender": "self", "recipient": "shop", "category": "goods_payment", "summary": "Payment to shop was declined"}`,
	}
	svc := NewExtractionService(primary)

	draft, err := svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "Transaction of 900 RWF to shop could not be completed"})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if draft != nil {
		t.Fatalf("a summary describing a failed transfer must not produce a draft, got %+v", draft)
	}
}

func TestExtractSummaryWordBoundary(t *testing.T) {
	primary := &fakeProvider{
		name: "vertex",
		text: `{"amount": 900, "type": "DEBIT", "sender": "self", "recipient": "Failsafe Ltd", "category": "goods_payment", "summary": "Payment to Failsafe Ltd"}`,
	}
	svc := NewExtractionService(primary)

	draft, err := svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "You paid 900 RWF to Failsafe Ltd"})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if draft == nil {
		t.Fatal("a counterparty name containing the letters must not read as a failed transfer")
	}

	primary.text = `{"amount": 900, "type": "DEBIT", "sender": "self", "recipient": "shop", "category": "goods_payment", "summary": "Transfer failure for payment to shop"}`
	draft, err = svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "Transfer of 900 RWF to shop could not be completed"})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if draft != nil {
		t.Fatalf("the word failure must still downgrade, got %+v", draft)
	}
}

func TestExtractQuotedNumbersAccepted(t *testing.T) {
	primary := &fakeProvider{
		name: "vertex",
		text: `{"amount": "2500.50", "fees": "100", "type": "DEBIT", "sender": "self", "recipient": "Alice", "category": "transfer", "summary": "Sent money to Alice"}`,
	}
	svc := NewExtractionService(primary)

	draft, err := svc.Extract(helpers.TestCtx(), dto.SMSPayload{Message: "Sent 2,500.50 RWF to Alice, fee 100 RWF"})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if draft == nil {
		t.Fatal("expected a draft")
	}
	if draft.Amount == nil || draft.Amount.String() != "2500.5" {
		t.Errorf("amount mismatch: %v", draft.Amount)
	}
	if draft.Fees == nil || !draft.Fees.Equal(decimal.NewFromInt(100)) {
		t.Errorf("fees mismatch: %v", draft.Fees)
	}
}
