package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paytrackhq/sms-finance-backend/internal/dto"
	"github.com/paytrackhq/sms-finance-backend/internal/errs"
	"github.com/paytrackhq/sms-finance-backend/internal/models"
	"github.com/paytrackhq/sms-finance-backend/internal/taxonomy"
	"github.com/paytrackhq/sms-finance-backend/pkg/cursor"
	"github.com/paytrackhq/sms-finance-backend/pkg/helpers"
)

type fakeTransactionStore struct {
	inserted    *models.Transaction
	insertErr   error
	byMessageID *models.Transaction
	findCalls   int
	getRecord   *models.Transaction
	getErr      error
	updatePatch map[string]any
	updateID    string
	deleteID    string
	listRows    []models.Transaction
	listHasMore bool
	listLimit   int
	listAfter   *cursor.Key
	listSearch  string
}

func (f *fakeTransactionStore) Insert(ctx context.Context, record *models.Transaction) (*models.Transaction, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = record
	out := *record
	out.ID = "generated-id"
	return &out, nil
}

func (f *fakeTransactionStore) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	return f.getRecord, f.getErr
}

func (f *fakeTransactionStore) FindByMessageID(ctx context.Context, messageID string) (*models.Transaction, error) {
	f.findCalls++
	return f.byMessageID, nil
}

func (f *fakeTransactionStore) Update(ctx context.Context, id string, patch map[string]any) (*models.Transaction, error) {
	f.updateID = id
	f.updatePatch = patch
	return f.getRecord, f.getErr
}

func (f *fakeTransactionStore) Delete(ctx context.Context, id string) error {
	f.deleteID = id
	return nil
}

func (f *fakeTransactionStore) ListPage(ctx context.Context, limit int, after *cursor.Key, search string) ([]models.Transaction, bool, error) {
	f.listLimit = limit
	f.listAfter = after
	f.listSearch = search
	return f.listRows, f.listHasMore, nil
}

type fakeExtractor struct {
	draft *dto.ExtractedTransaction
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, payload dto.SMSPayload) (*dto.ExtractedTransaction, error) {
	f.calls++
	return f.draft, f.err
}

func TestCreateAIPath(t *testing.T) {
	store := &fakeTransactionStore{}
	extractor := &fakeExtractor{draft: validDraft()}
	svc := NewTransactionService(store, extractor)
	svc.clockNow = fixedClock

	created, err := svc.Create(helpers.TestCtx(), dto.CreateTransactionRequest{
		AIEnabled: true,
		Message:   "You have received 500 RWF from Jane.",
		Sender:    "MTNMoney",
		MessageID: helpers.Ptr("msg-1"),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.ID != "generated-id" {
		t.Errorf("expected the stored record back, got id=%q", created.ID)
	}
	if created.Type != models.TransactionTypeCredit {
		t.Errorf("type mismatch: %v", created.Type)
	}
	if !created.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("amount mismatch: %v", created.Amount)
	}
	if created.Sender != "MTNMoney" {
		t.Errorf("caller sender must override the draft, got %q", created.Sender)
	}
	if created.Recipient != models.SelfParty {
		t.Errorf("recipient mismatch: %q", created.Recipient)
	}
	if extractor.calls != 1 {
		t.Errorf("expected one extraction, got %d", extractor.calls)
	}
}

func TestCreateDuplicateMessageID(t *testing.T) {
	store := &fakeTransactionStore{
		byMessageID: &models.Transaction{ID: "existing"},
	}
	extractor := &fakeExtractor{draft: validDraft()}
	svc := NewTransactionService(store, extractor)

	_, err := svc.Create(helpers.TestCtx(), dto.CreateTransactionRequest{
		AIEnabled: true,
		Message:   "You have received 500 RWF from Jane.",
		MessageID: helpers.Ptr("msg-1"),
	})
	var dup *errs.DuplicateTransactionError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateTransactionError, got %v", err)
	}
	if extractor.calls != 0 {
		t.Errorf("no provider call should happen for a known messageId, got %d", extractor.calls)
	}
}

func TestCreateFailureMarkerShortCircuits(t *testing.T) {
	store := &fakeTransactionStore{}
	extractor := &fakeExtractor{draft: validDraft()}
	svc := NewTransactionService(store, extractor)

	_, err := svc.Create(helpers.TestCtx(), dto.CreateTransactionRequest{
		AIEnabled: true,
		Message:   "Your transfer of 500 RWF to Jane FAILED due to insufficient funds.",
	})
	var invalid *errs.InvalidTransactionMessageError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransactionMessageError, got %v", err)
	}
	if extractor.calls != 0 {
		t.Errorf("failure markers must skip the provider, got %d calls", extractor.calls)
	}
}

func TestCreateNotATransaction(t *testing.T) {
	store := &fakeTransactionStore{}
	extractor := &fakeExtractor{draft: nil}
	svc := NewTransactionService(store, extractor)

	_, err := svc.Create(helpers.TestCtx(), dto.CreateTransactionRequest{
		AIEnabled: true,
		Message:   "Your verification code is 123456",
	})
	var invalid *errs.InvalidTransactionMessageError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransactionMessageError, got %v", err)
	}
	if store.inserted != nil {
		t.Error("nothing should be inserted")
	}
}

func TestCreateProviderFailurePropagates(t *testing.T) {
	store := &fakeTransactionStore{}
	extractor := &fakeExtractor{err: errs.NewProviderFailureError("all text-generation providers failed", nil)}
	svc := NewTransactionService(store, extractor)

	_, err := svc.Create(helpers.TestCtx(), dto.CreateTransactionRequest{
		AIEnabled: true,
		Message:   "You have received 500 RWF from Jane.",
	})
	var pfe *errs.ProviderFailureError
	if !errors.As(err, &pfe) {
		t.Fatalf("expected ProviderFailureError, got %v", err)
	}
}

func TestCreateMissingMessage(t *testing.T) {
	svc := NewTransactionService(&fakeTransactionStore{}, &fakeExtractor{})

	_, err := svc.Create(helpers.TestCtx(), dto.CreateTransactionRequest{AIEnabled: true})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["message"]; !ok {
		t.Errorf("expected message in fields, got %v", verr.Fields)
	}
}

func TestCreateDirectPath(t *testing.T) {
	store := &fakeTransactionStore{}
	extractor := &fakeExtractor{}
	svc := NewTransactionService(store, extractor)
	svc.clockNow = fixedClock

	created, err := svc.Create(helpers.TestCtx(), dto.CreateTransactionRequest{
		Message:   "manual entry",
		Amount:    decPtr("1200"),
		Type:      helpers.Ptr("DEBIT"),
		Recipient: helpers.Ptr("MTN"),
		Category:  helpers.Ptr("airtime_purchase"),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if extractor.calls != 0 {
		t.Errorf("direct ingestion must not call the extractor, got %d", extractor.calls)
	}
	if created.Category != "airtime_purchase" {
		t.Errorf("category mismatch: %q", created.Category)
	}
	if created.Sender != models.SelfParty {
		t.Errorf("sender should default to self, got %q", created.Sender)
	}
}

func TestCreateDirectRequiresAmountAndType(t *testing.T) {
	svc := NewTransactionService(&fakeTransactionStore{}, &fakeExtractor{})

	_, err := svc.Create(helpers.TestCtx(), dto.CreateTransactionRequest{Message: "manual entry"})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"amount", "type"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected %q in fields, got %v", field, verr.Fields)
		}
	}
}

func TestUpdateBuildsPatch(t *testing.T) {
	store := &fakeTransactionStore{getRecord: &models.Transaction{ID: "t1"}}
	svc := NewTransactionService(store, &fakeExtractor{})

	_, err := svc.Update(helpers.TestCtx(), "t1", dto.UpdateTransactionRequest{
		Amount:   decPtr("750"),
		Category: helpers.Ptr("Snack Run"),
		Sender:   helpers.Ptr("  "),
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if store.updateID != "t1" {
		t.Errorf("id mismatch: %q", store.updateID)
	}
	if store.updatePatch["transaction_category"] != taxonomy.CategoryOther {
		t.Errorf("unknown category must fall back, got %v", store.updatePatch["transaction_category"])
	}
	if store.updatePatch["sender"] != models.SelfParty {
		t.Errorf("blank sender must normalize to self, got %v", store.updatePatch["sender"])
	}
	if _, ok := store.updatePatch["amount"]; !ok {
		t.Error("expected amount in patch")
	}
}

func TestUpdateRejectsNegativeAmount(t *testing.T) {
	svc := NewTransactionService(&fakeTransactionStore{}, &fakeExtractor{})

	_, err := svc.Update(helpers.TestCtx(), "t1", dto.UpdateTransactionRequest{Amount: decPtr("-5")})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateEmptyPatch(t *testing.T) {
	svc := NewTransactionService(&fakeTransactionStore{}, &fakeExtractor{})

	_, err := svc.Update(helpers.TestCtx(), "t1", dto.UpdateTransactionRequest{})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestListIssuesCursorOnlyWhenMore(t *testing.T) {
	rows := []models.Transaction{
		{ID: "a", CreatedAt: fixedClock()},
		{ID: "b", CreatedAt: fixedClock().Add(-time.Minute)},
	}
	store := &fakeTransactionStore{listRows: rows, listHasMore: true}
	svc := NewTransactionService(store, &fakeExtractor{})

	page, err := svc.List(helpers.TestCtx(), 2, "", "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if page.NextCursor == nil {
		t.Fatal("expected a next cursor when more rows remain")
	}
	key, ok := cursor.Decode(*page.NextCursor)
	if !ok || key.ID != "b" {
		t.Errorf("cursor should point at the last row, got %+v ok=%v", key, ok)
	}

	store.listHasMore = false
	page, err = svc.List(helpers.TestCtx(), 2, "", "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if page.NextCursor != nil {
		t.Errorf("no cursor expected on the final page, got %q", *page.NextCursor)
	}
}

func TestListClampsLimit(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, &fakeExtractor{})

	if _, err := svc.List(helpers.TestCtx(), 0, "", ""); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if store.listLimit != defaultPageSize {
		t.Errorf("zero limit should use the default, got %d", store.listLimit)
	}

	if _, err := svc.List(helpers.TestCtx(), 5000, "", ""); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if store.listLimit != maxPageSize {
		t.Errorf("oversized limit should clamp, got %d", store.listLimit)
	}
}

func TestListMalformedCursorStartsFromTop(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, &fakeExtractor{})

	if _, err := svc.List(helpers.TestCtx(), 10, "!!not-a-cursor!!", "groceries"); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if store.listAfter != nil {
		t.Errorf("malformed cursor must reset to the top, got %+v", store.listAfter)
	}
	if store.listSearch != "groceries" {
		t.Errorf("search mismatch: %q", store.listSearch)
	}
}
