package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/paytrackhq/sms-finance-backend/internal/dto"
	"github.com/paytrackhq/sms-finance-backend/internal/errs"
	"github.com/paytrackhq/sms-finance-backend/internal/models"
	"github.com/paytrackhq/sms-finance-backend/pkg/cursor"
)

// likeEscaper neutralizes LIKE metacharacters in user-supplied search
// text; a literal % or _ must not match every phone number.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type transactionStore struct {
	db *gorm.DB
}

func NewTransactionStore(db *gorm.DB) *transactionStore {
	return &transactionStore{db: db}
}

// Insert persists a new record with a generated identity and storage
// timestamps. The unique index on message_id is the real duplicate
// guard; a constraint trip surfaces as DuplicateTransactionError.
func (s *transactionStore) Insert(ctx context.Context, record *models.Transaction) (*models.Transaction, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.NewDuplicateTransactionError("a transaction with this messageId already exists")
		}
		return nil, errs.NewDatabaseError("insert transaction", err)
	}
	return record, nil
}

func (s *transactionStore) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var record models.Transaction
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFoundError("transaction not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("get transaction", err)
	}
	return &record, nil
}

// FindByMessageID returns (nil, nil) when no record carries the id.
func (s *transactionStore) FindByMessageID(ctx context.Context, messageID string) (*models.Transaction, error) {
	var record models.Transaction
	err := s.db.WithContext(ctx).Where("message_id = ?", messageID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find transaction by messageId", err)
	}
	return &record, nil
}

func (s *transactionStore) Update(ctx context.Context, id string, patch map[string]any) (*models.Transaction, error) {
	patch["updated_at"] = time.Now().UTC()

	res := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, errs.NewDuplicateTransactionError("a transaction with this messageId already exists")
		}
		return nil, errs.NewDatabaseError("update transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errs.NewNotFoundError("transaction not found")
	}
	return s.GetByID(ctx, id)
}

func (s *transactionStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if res.Error != nil {
		return errs.NewDatabaseError("delete transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFoundError("transaction not found")
	}
	return nil
}

// ListPage runs the composite keyset query, probing one row past the
// limit so the caller gets an explicit has-more signal. Search text is
// matched against the weighted search_vector, with a plain substring
// fallback on phone_number so partial digit sequences stay findable.
func (s *transactionStore) ListPage(ctx context.Context, limit int, after *cursor.Key, search string) ([]models.Transaction, bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Transaction{})

	if search != "" {
		q = q.Where(
			"search_vector @@ plainto_tsquery('english', ?) OR phone_number LIKE ?",
			search, "%"+likeEscaper.Replace(search)+"%",
		)
	}
	if after != nil {
		q = q.Where("(created_at, id) < (?, ?)", after.CreatedAt, after.ID)
	}

	var rows []models.Transaction
	err := q.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error
	if err != nil {
		return nil, false, errs.NewDatabaseError("list transactions", err)
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	return rows, hasMore, nil
}

func (s *transactionStore) SummarizeRange(ctx context.Context, from, to time.Time) (dto.SummaryResult, error) {
	var totals struct {
		TotalTransactions int64
		TotalFees         decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COUNT(*) AS total_transactions, COALESCE(SUM(fees), 0) AS total_fees").
		Where("created_at BETWEEN ? AND ?", from, to).
		Scan(&totals).Error
	if err != nil {
		return dto.SummaryResult{}, errs.NewDatabaseError("summarize transactions", err)
	}

	result := dto.SummaryResult{
		TotalTransactions: totals.TotalTransactions,
		TotalFees:         totals.TotalFees,
	}

	// Balance is the last observed snapshot in range, not a running sum.
	var latest models.Transaction
	err = s.db.WithContext(ctx).
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC, id DESC").
		First(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SummaryResult{}, errs.NewDatabaseError("summarize transactions", err)
	}
	if err == nil {
		result.Balance = latest.RemainingBalance
	}
	return result, nil
}

func (s *transactionStore) CategoryTrends(ctx context.Context, from, to time.Time) ([]dto.CategoryBucket, error) {
	var buckets []dto.CategoryBucket
	err := s.db.WithContext(ctx).Raw(`
		SELECT LOWER(label) AS label,
		       SUM(amount)  AS total_amount,
		       SUM(fees)    AS total_fees,
		       COUNT(*)     AS count
		FROM transactions
		WHERE type = 'DEBIT'
		  AND label IS NOT NULL
		  AND created_at BETWEEN ? AND ?
		GROUP BY LOWER(label)
		ORDER BY total_amount DESC`,
		from, to,
	).Scan(&buckets).Error
	if err != nil {
		return nil, errs.NewDatabaseError("aggregate transactions by category", err)
	}
	return buckets, nil
}

func (s *transactionStore) PeriodTrends(ctx context.Context, from, to time.Time, granularity string) ([]dto.PeriodBucket, error) {
	var buckets []dto.PeriodBucket
	err := s.db.WithContext(ctx).Raw(`
		SELECT date_trunc(?, created_at) AS period,
		       SUM(amount)               AS total_amount,
		       SUM(fees)                 AS total_fees,
		       COUNT(*)                  AS count
		FROM transactions
		WHERE type = 'DEBIT'
		  AND created_at BETWEEN ? AND ?
		GROUP BY period
		ORDER BY period ASC`,
		granularity, from, to,
	).Scan(&buckets).Error
	if err != nil {
		return nil, errs.NewDatabaseError("aggregate transactions by period", err)
	}
	return buckets, nil
}
