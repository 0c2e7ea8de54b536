package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/esquivelfacundo/gastrodash/models"
)

// ConversationService is the append-only store of WhatsApp conversation turns.
// All per-customer state the pipeline needs is re-derived from this log.
type ConversationService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewConversationService creates a conversation store backed by db
func NewConversationService(db *gorm.DB, log *logrus.Logger) *ConversationService {
	return &ConversationService{db: db, log: log}
}

// Append records one conversation turn and returns its ID. Failures are
// returned to the caller: losing a turn silently would corrupt the context
// sent to the model on every later message.
func (s *ConversationService) Append(phone string, direction models.MessageDirection, text string, orderID *uint) (uint, error) {
	turn := models.ConversationTurn{
		PhoneNumber: phone,
		Direction:   direction,
		Text:        text,
		OrderID:     orderID,
	}

	if err := s.db.Create(&turn).Error; err != nil {
		return 0, fmt.Errorf("failed to save conversation turn: %w", err)
	}
	return turn.ID, nil
}

// History returns the most recent turns for a phone number as role-tagged
// chat messages in chronological order. Inbound turns map to the "user" role
// and outbound turns to "assistant". A read failure degrades to an empty
// history so the conversation keeps flowing without context.
func (s *ConversationService) History(phone string, limit int) []ChatMessage {
	turns, err := s.recentTurns(phone, limit)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"phone": phone,
			"error": err.Error(),
		}).Error("failed to fetch conversation history")
		return []ChatMessage{}
	}

	messages := make([]ChatMessage, 0, len(turns))
	for _, turn := range turns {
		role := RoleAssistant
		if turn.Direction == models.DirectionInbound {
			role = RoleUser
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Text})
	}
	return messages
}

// recentTurns fetches the newest turns (descending) and reverses them in
// memory so callers always see chronological order, ties broken by insertion
// sequence.
func (s *ConversationService) recentTurns(phone string, limit int) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	err := s.db.
		Where("phone_number = ?", phone).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// FlattenHistory renders a history as plain role-prefixed text for the
// extraction prompt.
func FlattenHistory(history []ChatMessage) string {
	var b strings.Builder
	for i, msg := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}
