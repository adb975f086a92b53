package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/paytrackhq/sms-finance-backend/internal/dto"
	"github.com/paytrackhq/sms-finance-backend/internal/errs"
	"github.com/paytrackhq/sms-finance-backend/internal/models"
	"github.com/paytrackhq/sms-finance-backend/internal/taxonomy"
	"github.com/paytrackhq/sms-finance-backend/pkg/cursor"
	"github.com/paytrackhq/sms-finance-backend/pkg/logger"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

type transactionStore interface {
	Insert(ctx context.Context, record *models.Transaction) (*models.Transaction, error)
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	FindByMessageID(ctx context.Context, messageID string) (*models.Transaction, error)
	Update(ctx context.Context, id string, patch map[string]any) (*models.Transaction, error)
	Delete(ctx context.Context, id string) error
	ListPage(ctx context.Context, limit int, after *cursor.Key, search string) ([]models.Transaction, bool, error)
}

type transactionExtractor interface {
	Extract(ctx context.Context, payload dto.SMSPayload) (*dto.ExtractedTransaction, error)
}

type transactionService struct {
	store     transactionStore
	extractor transactionExtractor
	validate  *validator.Validate
	clockNow  func() time.Time
}

func NewTransactionService(store transactionStore, extractor transactionExtractor) *transactionService {
	return &transactionService{
		store:     store,
		extractor: extractor,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		clockNow:  time.Now,
	}
}

// failureMarkers short-circuit ingestion before any provider call: a
// message that announces its own failure is never a transaction.
var failureMarkers = []string{"failed", "unsuccessful"}

func (s *transactionService) Create(ctx context.Context, req dto.CreateTransactionRequest) (*models.Transaction, error) {
	log := logger.FromContext(ctx)

	if err := s.validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}

	if !req.AIEnabled {
		return s.createDirect(ctx, req)
	}

	// Dedup fast path. The unique constraint on message_id remains the
	// authoritative guard; this only saves a provider call.
	if req.MessageID != nil && *req.MessageID != "" {
		existing, err := s.store.FindByMessageID(ctx, *req.MessageID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errs.NewDuplicateTransactionError("a transaction with this messageId already exists")
		}
	}

	if containsFailureMarker(req.Message) {
		return nil, errs.NewInvalidTransactionMessageError("message describes a failed transaction")
	}

	draft, err := s.extractor.Extract(ctx, dto.SMSPayload{
		Message:     req.Message,
		Sender:      req.Sender,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, errs.NewInvalidTransactionMessageError("message does not describe a completed transaction")
	}

	record, err := normalizeTransaction(draft, req, s.clockNow().UTC())
	if err != nil {
		return nil, err
	}

	created, err := s.store.Insert(ctx, record)
	if err != nil {
		return nil, err
	}
	log.Info("transaction ingested", "id", created.ID, "type", created.Type, "category", created.Category)
	return created, nil
}

func (s *transactionService) createDirect(ctx context.Context, req dto.CreateTransactionRequest) (*models.Transaction, error) {
	fields := map[string]string{}
	if req.Amount == nil {
		fields["amount"] = "amount is required"
	}
	if req.Type == nil {
		fields["type"] = "type is required"
	}
	if len(fields) > 0 {
		return nil, errs.NewFieldValidationError("transaction failed validation", fields)
	}

	record, err := normalizeTransaction(draftFromRequest(req), req, s.clockNow().UTC())
	if err != nil {
		return nil, err
	}
	return s.store.Insert(ctx, record)
}

func (s *transactionService) Get(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.GetByID(ctx, id)
}

func (s *transactionService) Update(ctx context.Context, id string, req dto.UpdateTransactionRequest) (*models.Transaction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}

	patch := map[string]any{}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, errs.NewFieldValidationError("transaction failed validation", map[string]string{"amount": "amount must be non-negative"})
		}
		patch["amount"] = *req.Amount
	}
	if req.Fees != nil {
		if req.Fees.IsNegative() {
			return nil, errs.NewFieldValidationError("transaction failed validation", map[string]string{"fees": "fees must be non-negative"})
		}
		patch["fees"] = *req.Fees
	}
	if req.Type != nil {
		patch["type"] = *req.Type
	}
	if req.RemainingBalance != nil {
		patch["remaining_balance"] = *req.RemainingBalance
	}
	if req.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*req.Category))
		if !taxonomy.IsCategoryAllowed(category) {
			category = taxonomy.CategoryOther
		}
		patch["transaction_category"] = category
	}
	if req.Label != nil {
		patch["label"] = *req.Label
	}
	if req.PaymentCode != nil {
		patch["payment_code"] = *req.PaymentCode
	}
	if req.TransactionReference != nil {
		patch["transaction_reference"] = *req.TransactionReference
	}
	if req.Sender != nil {
		patch["sender"] = normalizeParty(*req.Sender)
	}
	if req.Recipient != nil {
		patch["recipient"] = normalizeParty(*req.Recipient)
	}
	if req.PhoneNumber != nil {
		patch["phone_number"] = *req.PhoneNumber
	}
	if req.Summary != nil {
		patch["summary"] = *req.Summary
	}
	if req.CompletedAt != nil {
		patch["completed_at"] = *req.CompletedAt
	}
	if req.MessageTimestamp != nil {
		patch["message_timestamp"] = *req.MessageTimestamp
	}

	if len(patch) == 0 {
		return nil, errs.NewValidationError("no updatable fields provided")
	}
	return s.store.Update(ctx, id, patch)
}

func (s *transactionService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// List returns one keyset page. A malformed cursor means "start from the
// top". The next cursor is issued from an explicit has-more probe, so an
// exact multiple of the page size does not falsely terminate pagination.
func (s *transactionService) List(ctx context.Context, limit int, rawCursor, search string) (dto.TransactionPage, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var after *cursor.Key
	if key, ok := cursor.Decode(rawCursor); ok {
		after = &key
	}

	rows, hasMore, err := s.store.ListPage(ctx, limit, after, strings.TrimSpace(search))
	if err != nil {
		return dto.TransactionPage{}, err
	}

	page := dto.TransactionPage{Data: rows}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		next := cursor.Encode(cursor.Key{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}

func containsFailureMarker(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range failureMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func normalizeParty(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.SelfParty
	}
	return value
}

// asValidationError flattens validator output into the field-keyed error
// tree the response contract expects.
func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.NewValidationError(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldKey(fe.Field())] = "failed " + fe.Tag() + " validation"
	}
	return errs.NewFieldValidationError("request failed validation", fields)
}

func fieldKey(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
