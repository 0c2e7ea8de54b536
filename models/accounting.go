package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies an accounting entry
type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// AccountingEntry is the ledger row recognizing revenue (or expense).
// Order commits create one income entry in the same transaction as the order.
type AccountingEntry struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     *uint           `gorm:"index" json:"order_id,omitempty"`
	EntryType   EntryType       `gorm:"size:16;not null" json:"entry_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string          `json:"description"`
	Category    string          `gorm:"size:32;not null" json:"category"`
	Date        time.Time       `gorm:"type:date;not null" json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for the AccountingEntry model
func (AccountingEntry) TableName() string {
	return "accounting_entries"
}
