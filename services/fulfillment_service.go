package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/esquivelfacundo/gastrodash/models"
)

// MessageHandler processes one inbound customer message
type MessageHandler interface {
	HandleMessage(ctx context.Context, phone, text string) error
}

// FulfillmentService drives the conversational order pipeline: it records
// the exchange, replies through the language model, and commits an order
// once the extractor derives a complete one from the conversation.
type FulfillmentService struct {
	db        *gorm.DB
	store     *ConversationService
	catalog   *CatalogService
	replies   ReplyGenerator
	extractor OrderExtractor
	gateway   NotificationGateway
	outbox    *OutboxService
	chefPhone string
	limit     int
	log       *logrus.Logger

	// one lock per phone number serializes concurrent messages from the
	// same customer, so two near-simultaneous webhooks cannot both derive
	// readiness from the same history and double-commit
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var messageHandlerInstance MessageHandler

// FulfillmentDeps bundles the collaborators of the fulfillment service
type FulfillmentDeps struct {
	DB        *gorm.DB
	Store     *ConversationService
	Catalog   *CatalogService
	Replies   ReplyGenerator
	Extractor OrderExtractor
	Gateway   NotificationGateway
	Outbox    *OutboxService
	ChefPhone string
	Limit     int
	Log       *logrus.Logger
}

// NewFulfillmentService creates the pipeline from its collaborators
func NewFulfillmentService(deps FulfillmentDeps) *FulfillmentService {
	limit := deps.Limit
	if limit <= 0 {
		limit = 10
	}
	return &FulfillmentService{
		db:        deps.DB,
		store:     deps.Store,
		catalog:   deps.Catalog,
		replies:   deps.Replies,
		extractor: deps.Extractor,
		gateway:   deps.Gateway,
		outbox:    deps.Outbox,
		chefPhone: deps.ChefPhone,
		limit:     limit,
		log:       deps.Log,
		locks:     make(map[string]*sync.Mutex),
	}
}

// InitMessageHandler initializes the global message handler
func InitMessageHandler(deps FulfillmentDeps) MessageHandler {
	messageHandlerInstance = NewFulfillmentService(deps)
	return messageHandlerInstance
}

// GetMessageHandler returns the initialized message handler instance
func GetMessageHandler() MessageHandler {
	return messageHandlerInstance
}

// SetMessageHandler sets the message handler instance (primarily for testing)
func SetMessageHandler(h MessageHandler) {
	messageHandlerInstance = h
}

// HandleMessage processes one inbound message as a unit: append, reply,
// extract, and conditionally commit an order. Reply and send failures are
// absorbed here; only persistence failures that would corrupt later context
// propagate to the caller.
func (s *FulfillmentService) HandleMessage(ctx context.Context, phone, text string) error {
	lock := s.channelLock(phone)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.store.Append(phone, models.DirectionInbound, text, nil); err != nil {
		return err
	}

	history := s.store.History(phone, s.limit)

	reply := s.replies.Reply(ctx, text, history)
	if err := s.gateway.SendText(ctx, phone, reply); err != nil {
		// Not retried and not surfaced to the customer; the turn is still
		// recorded so the model keeps a consistent view of the exchange.
		s.log.WithFields(logrus.Fields{
			"phone": phone,
			"error": err.Error(),
		}).Error("failed to send reply")
	}
	if _, err := s.store.Append(phone, models.DirectionOutbound, reply, nil); err != nil {
		return err
	}

	updated := s.store.History(phone, s.limit)
	draft := s.extractor.Extract(ctx, FlattenHistory(updated))
	if !draft.ReadyToProcess {
		return nil
	}

	// The draft comes from a non-deterministic generator; never trust its
	// readiness flag without re-checking the invariant.
	if err := draft.Validate(); err != nil {
		s.log.WithFields(logrus.Fields{
			"phone": phone,
			"error": err.Error(),
		}).Warn("extractor marked draft ready but validation failed")
		return nil
	}

	order, err := s.commitOrder(phone, &draft)
	if errors.Is(err, errDuplicateOrder) {
		s.log.WithField("phone", phone).Info("order already committed for this conversational intent")
		return nil
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"phone": phone,
			"error": err.Error(),
		}).Error("order commit failed")
		return err
	}
	if order == nil {
		// every requested item fell off the menu
		return nil
	}

	s.notifyCommitted(ctx, order)
	return nil
}

var errDuplicateOrder = errors.New("duplicate order commit")

type resolvedLine struct {
	product  models.Product
	quantity int
}

// commitOrder resolves the draft against the menu and atomically persists
// the order, its line items, its ledger entry, and the queued kitchen
// notification. It returns (nil, nil) when no draft item resolves.
func (s *FulfillmentService) commitOrder(phone string, draft *OrderDraft) (*models.Order, error) {
	products, err := s.catalog.ListAvailable()
	if err != nil {
		return nil, err
	}

	var resolved []resolvedLine
	for _, item := range draft.Items {
		product := MatchProduct(products, item.Name)
		if product == nil {
			// an unmatched name means "not on the menu": dropped, not an error
			s.log.WithFields(logrus.Fields{
				"phone": phone,
				"item":  item.Name,
			}).Warn("requested item not found in menu, dropping")
			continue
		}
		resolved = append(resolved, resolvedLine{product: *product, quantity: item.Quantity})
	}
	if len(resolved) == 0 {
		s.log.WithField("phone", phone).Warn("no draft item resolved against the menu, skipping commit")
		return nil, nil
	}

	total := decimal.Zero
	for _, line := range resolved {
		total = total.Add(line.product.Price.Mul(decimal.NewFromInt(int64(line.quantity))))
	}

	scheduledDate := parseScheduledDate(draft.ScheduledDate)
	customerName := "Cliente"
	if draft.CustomerName != nil && *draft.CustomerName != "" {
		customerName = *draft.CustomerName
	}
	paymentMethod := ""
	if draft.PaymentMethod != nil {
		paymentMethod = *draft.PaymentMethod
	}

	dedupKey := orderDedupKey(phone, resolved, scheduledDate)
	order := models.Order{
		CustomerName:    customerName,
		CustomerPhone:   phone,
		ServiceType:     models.ServiceType(*draft.ServiceType),
		DeliveryAddress: draft.DeliveryAddress,
		PaymentMethod:   paymentMethod,
		TotalAmount:     total,
		Status:          models.OrderStatusConfirmed,
		ScheduledDate:   scheduledDate,
		ScheduledTime:   draft.ScheduledTime,
		DedupKey:        &dedupKey,
	}
	for _, line := range resolved {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			Quantity:    line.quantity,
			UnitPrice:   line.product.Price,
			Subtotal:    line.product.Price.Mul(decimal.NewFromInt(int64(line.quantity))),
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		switch err := tx.Where("dedup_key = ?", dedupKey).First(&existing).Error; {
		case err == nil:
			return errDuplicateOrder
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		entry := models.AccountingEntry{
			OrderID:     &order.ID,
			EntryType:   models.EntryTypeIncome,
			Amount:      total,
			Description: fmt.Sprintf("Pedido #%d - %s", order.ID, customerName),
			Category:    "sales",
			Date:        scheduledDate,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create accounting entry: %w", err)
		}

		if s.chefPhone != "" {
			if _, err := s.outbox.Enqueue(tx, s.chefPhone, FormatChefTicket(&order), &order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"phone":    phone,
		"total":    total.StringFixed(2),
	}).Info("order committed")
	return &order, nil
}

// notifyCommitted pushes the kitchen notification and the customer
// acknowledgement after a successful commit. Neither failure affects the
// committed order; the kitchen copy is retried by the outbox processor.
func (s *FulfillmentService) notifyCommitted(ctx context.Context, order *models.Order) {
	if s.chefPhone == "" {
		s.log.Warn("chef phone not configured, kitchen not notified")
	} else {
		var row models.NotificationOutbox
		err := s.db.Where("order_id = ? AND recipient = ?", order.ID, s.chefPhone).First(&row).Error
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			}).Error("failed to load queued kitchen notification")
		} else if err := s.outbox.Dispatch(ctx, &row); err != nil {
			s.log.WithFields(logrus.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			}).Warn("kitchen notification failed, outbox will retry")
		}
	}

	if err := s.gateway.SendText(ctx, order.CustomerPhone, CustomerAck); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		}).Error("failed to send customer acknowledgement")
	}
	if _, err := s.store.Append(order.CustomerPhone, models.DirectionOutbound, CustomerAck, &order.ID); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		}).Error("failed to record customer acknowledgement")
	}
}

// channelLock returns the mutex serializing one phone number's messages
func (s *FulfillmentService) channelLock(phone string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[phone]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[phone] = lock
	}
	return lock
}

// parseScheduledDate interprets the draft's date, defaulting to today
func parseScheduledDate(raw *string) time.Time {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if raw == nil || *raw == "" {
		return today
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return today
	}
	return parsed
}

// orderDedupKey hashes the conversational intent of an order: one customer
// asking for one resolved item set on one date maps to one key, so a retried
// webhook or racing extraction cannot commit the same order twice.
func orderDedupKey(phone string, lines []resolvedLine, scheduledDate time.Time) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%d:%d", line.product.ID, line.quantity))
	}
	sort.Strings(parts)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s", phone, scheduledDate.Format("2006-01-02"), parts)
	return hex.EncodeToString(h.Sum(nil))
}
