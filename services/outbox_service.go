package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/esquivelfacundo/gastrodash/models"
)

// OutboxService delivers queued notifications at least once. Rows are
// enqueued inside the order transaction and dispatched immediately; rows
// whose send fails are retried with backoff by Run until they succeed or
// exhaust MaxAttempts.
type OutboxService struct {
	db      *gorm.DB
	gateway NotificationGateway
	log     *logrus.Logger

	BatchSize   int
	Interval    time.Duration
	Backoff     time.Duration
	MaxAttempts int
}

// NewOutboxService creates an outbox processor with default tuning
func NewOutboxService(db *gorm.DB, gateway NotificationGateway, log *logrus.Logger) *OutboxService {
	return &OutboxService{
		db:          db,
		gateway:     gateway,
		log:         log,
		BatchSize:   20,
		Interval:    5 * time.Second,
		Backoff:     30 * time.Second,
		MaxAttempts: 5,
	}
}

// Enqueue inserts a pending notification row using tx, which may be an open
// transaction so the row commits atomically with the order it announces.
func (s *OutboxService) Enqueue(tx *gorm.DB, recipient, body string, orderID *uint) (*models.NotificationOutbox, error) {
	row := models.NotificationOutbox{
		ID:            uuid.NewString(),
		Recipient:     recipient,
		Body:          body,
		OrderID:       orderID,
		Status:        models.OutboxStatusPending,
		NextAttemptAt: time.Now(),
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return &row, nil
}

// Dispatch attempts delivery of one row and records the outcome. A failed
// send leaves the row queued for retry; delivery therefore happens at least
// once, never silently zero times.
func (s *OutboxService) Dispatch(ctx context.Context, row *models.NotificationOutbox) error {
	sendErr := s.gateway.SendText(ctx, row.Recipient, row.Body)

	row.Attempts++
	if sendErr == nil {
		row.Status = models.OutboxStatusSent
		row.LastError = nil
	} else {
		errText := sendErr.Error()
		row.LastError = &errText
		row.NextAttemptAt = time.Now().Add(s.Backoff)
		if row.Attempts >= s.MaxAttempts {
			row.Status = models.OutboxStatusDead
			s.log.WithFields(logrus.Fields{
				"outbox_id": row.ID,
				"recipient": row.Recipient,
				"attempts":  row.Attempts,
			}).Error("notification exhausted retries")
		} else {
			row.Status = models.OutboxStatusFailed
		}
	}

	if err := s.db.Model(&models.NotificationOutbox{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"status":          row.Status,
			"attempts":        row.Attempts,
			"last_error":      row.LastError,
			"next_attempt_at": row.NextAttemptAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to record dispatch outcome: %w", err)
	}
	return sendErr
}

// Run polls for due rows until ctx is cancelled
func (s *OutboxService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.ProcessOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Interval):
		}
	}
}

// ProcessOnce dispatches one batch of due pending/failed rows
func (s *OutboxService) ProcessOnce(ctx context.Context) {
	var rows []models.NotificationOutbox
	err := s.db.
		Where("status IN ? AND next_attempt_at <= ?",
			[]models.OutboxStatus{models.OutboxStatusPending, models.OutboxStatusFailed}, time.Now()).
		Order("created_at ASC").
		Limit(s.BatchSize).
		Find(&rows).Error
	if err != nil {
		s.log.WithField("error", err.Error()).Error("failed to fetch outbox batch")
		return
	}

	for i := range rows {
		if err := s.Dispatch(ctx, &rows[i]); err != nil {
			s.log.WithFields(logrus.Fields{
				"outbox_id": rows[i].ID,
				"attempts":  rows[i].Attempts,
				"error":     err.Error(),
			}).Warn("notification dispatch failed, will retry")
		}
	}
}
