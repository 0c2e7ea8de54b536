package models

import "time"

// OutboxStatus is the delivery state of a queued notification
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
	OutboxStatusDead    OutboxStatus = "dead"
)

// NotificationOutbox is a durable queue row for an outbound WhatsApp message.
// Rows are inserted in the same transaction as the order they announce, so a
// committed order always has its kitchen notification recorded even when the
// immediate send fails. A background processor retries failed rows.
type NotificationOutbox struct {
	ID            string       `gorm:"size:36;primaryKey" json:"id"` // uuid
	Recipient     string       `gorm:"size:32;not null" json:"recipient"`
	Body          string       `gorm:"type:text;not null" json:"body"`
	OrderID       *uint        `gorm:"index" json:"order_id,omitempty"`
	Status        OutboxStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	Attempts      int          `gorm:"not null;default:0" json:"attempts"`
	LastError     *string      `gorm:"type:text" json:"last_error,omitempty"`
	NextAttemptAt time.Time    `gorm:"not null;index" json:"next_attempt_at"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the NotificationOutbox model
func (NotificationOutbox) TableName() string {
	return "notification_outbox"
}
