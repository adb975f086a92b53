package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/paytrackhq/sms-finance-backend/internal/models"
)

// searchVectorDDL adds the generated tsvector column the page query
// matches against. Recipient and phone number carry the highest weight,
// then sender, label and transaction reference.
var searchVectorDDL = []string{
	`ALTER TABLE transactions
	 ADD COLUMN IF NOT EXISTS search_vector tsvector GENERATED ALWAYS AS (
	   setweight(to_tsvector('english', coalesce(recipient, '')), 'A') ||
	   setweight(to_tsvector('english', coalesce(phone_number, '')), 'A') ||
	   setweight(to_tsvector('english', coalesce(sender, '')), 'B') ||
	   setweight(to_tsvector('english', coalesce(label, '')), 'C') ||
	   setweight(to_tsvector('english', coalesce(transaction_reference, '')), 'D')
	 ) STORED`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_search_vector
	 ON transactions USING GIN (search_vector)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_created_at_id
	 ON transactions (created_at DESC, id DESC)`,
}

// Migrate brings the schema up to date. Full migration tooling lives
// outside this service; this is startup schema bootstrap only.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Transaction{}); err != nil {
		return fmt.Errorf("automigrate transactions: %w", err)
	}
	for _, ddl := range searchVectorDDL {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("apply transactions ddl: %w", err)
		}
	}
	return nil
}
