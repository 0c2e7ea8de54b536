package models

import (
	"time"
)

// MessageDirection indicates whether a conversation turn was received from
// or sent to the customer.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "incoming"
	DirectionOutbound MessageDirection = "outgoing"
)

// ConversationTurn represents one message in a customer's WhatsApp thread.
// Turns are append-only and are never updated or deleted by the pipeline.
type ConversationTurn struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	PhoneNumber string           `gorm:"size:32;not null;index:idx_conversations_phone_created,priority:1" json:"phone_number"`
	Direction   MessageDirection `gorm:"size:16;not null" json:"direction"`
	Text        string           `gorm:"type:text;not null" json:"text"`
	OrderID     *uint            `gorm:"index" json:"order_id,omitempty"` // set on turns produced by an order commit
	CreatedAt   time.Time        `gorm:"index:idx_conversations_phone_created,priority:2" json:"created_at"`
}

// TableName specifies the table name for the ConversationTurn model
func (ConversationTurn) TableName() string {
	return "conversations"
}
