package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/esquivelfacundo/gastrodash/models"
	"github.com/esquivelfacundo/gastrodash/utils"
)

// DraftItem is one requested line of an order draft, still unresolved
// against the menu.
type DraftItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderDraft is the structured order information extracted from a
// conversation. It is transient and never persisted as-is; the model that
// produces it is non-deterministic, so consumers must re-validate before
// acting on ReadyToProcess.
type OrderDraft struct {
	CustomerName    *string     `json:"customer_name"`
	Items           []DraftItem `json:"items"`
	ServiceType     *string     `json:"service_type"`
	DeliveryAddress *string     `json:"delivery_address"`
	PaymentMethod   *string     `json:"payment_method"`
	ScheduledDate   *string     `json:"scheduled_date"` // "YYYY-MM-DD", nil means today
	ScheduledTime   *string     `json:"scheduled_time"` // "HH:MM"
	MissingInfo     []string    `json:"missing_info"`
	ReadyToProcess  bool        `json:"ready_to_process"`
}

// Validate checks the draft readiness invariant: a processable draft has at
// least one item, a known service type, and an address when the service type
// is delivery.
func (d *OrderDraft) Validate() error {
	if len(d.Items) == 0 {
		return fmt.Errorf("draft has no items")
	}
	if d.ServiceType == nil {
		return fmt.Errorf("draft has no service type")
	}
	serviceType := models.ServiceType(*d.ServiceType)
	if !serviceType.Valid() {
		return fmt.Errorf("unknown service type %q", *d.ServiceType)
	}
	if serviceType == models.ServiceDelivery && (d.DeliveryAddress == nil || strings.TrimSpace(*d.DeliveryAddress) == "") {
		return fmt.Errorf("delivery order has no address")
	}
	return nil
}

// OrderExtractor derives a structured order draft from conversation text
type OrderExtractor interface {
	Extract(ctx context.Context, conversationText string) OrderDraft
}

// ModelOrderExtractor implements OrderExtractor with a language-model call.
// It is stateless: every call analyzes the full conversation text it is
// given, so re-extracting the same history yields the same draft for a
// deterministic model.
type ModelOrderExtractor struct {
	model ChatModel
	log   *logrus.Logger
}

var orderExtractorInstance OrderExtractor

// InitOrderExtractor initializes the order extractor
func InitOrderExtractor(model ChatModel, log *logrus.Logger) OrderExtractor {
	orderExtractorInstance = &ModelOrderExtractor{model: model, log: log}
	return orderExtractorInstance
}

// GetOrderExtractor returns the initialized order extractor instance
func GetOrderExtractor() OrderExtractor {
	return orderExtractorInstance
}

// SetOrderExtractor sets the order extractor instance (primarily for testing)
func SetOrderExtractor(e OrderExtractor) {
	orderExtractorInstance = e
}

const extractionPrompt = `Analiza la siguiente conversación y extrae la información del pedido en formato JSON.
Si falta información importante, indica qué falta.

Conversación:
%s

Responde SOLO con un JSON válido con esta estructura:
{
  "customer_name": "nombre del cliente o null",
  "items": [{"name": "nombre del producto", "quantity": número}],
  "service_type": "delivery" o "takeaway" o null,
  "delivery_address": "dirección completa o null",
  "payment_method": "efectivo" o "transferencia" o null,
  "scheduled_date": "YYYY-MM-DD o null para hoy",
  "scheduled_time": "HH:MM o null",
  "missing_info": ["lista de información faltante"],
  "ready_to_process": true o false
}`

// Extract runs one extraction pass over the conversation text. It never
// returns an error: any failure yields a draft that is not ready to process,
// so the conversation loop keeps running and a later message retries
// naturally.
func (e *ModelOrderExtractor) Extract(ctx context.Context, conversationText string) OrderDraft {
	raw, err := e.model.Complete(ctx, []ChatMessage{
		{Role: RoleUser, Content: fmt.Sprintf(extractionPrompt, conversationText)},
	}, CompletionOptions{
		MaxTokens:   300,
		Temperature: 0.1,
	})
	if err != nil {
		e.log.WithField("error", err.Error()).Error("order extraction call failed")
		return errorDraft()
	}

	var draft OrderDraft
	if err := json.Unmarshal([]byte(utils.ExtractJSONObject(raw)), &draft); err != nil {
		e.log.WithFields(logrus.Fields{
			"error":    err.Error(),
			"response": raw,
		}).Error("order extraction returned malformed JSON")
		return errorDraft()
	}

	repairDraft(&draft)
	return draft
}

// errorDraft is the fixed fallback for a failed extraction
func errorDraft() OrderDraft {
	return OrderDraft{
		ReadyToProcess: false,
		MissingInfo:    []string{"extraction error"},
	}
}

// repairDraft normalizes an untrusted model payload in place: empty or
// non-positive items are dropped, the service type is canonicalized, and
// ReadyToProcess is cleared when the readiness invariant does not hold.
func repairDraft(d *OrderDraft) {
	items := d.Items[:0]
	for _, item := range d.Items {
		if strings.TrimSpace(item.Name) == "" || item.Quantity <= 0 {
			continue
		}
		items = append(items, item)
	}
	d.Items = items

	if d.ServiceType != nil {
		normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(*d.ServiceType), " ", ""))
		switch normalized {
		case "delivery", "takeaway":
			d.ServiceType = &normalized
		case "":
			d.ServiceType = nil
		default:
			d.ServiceType = &normalized
		}
	}

	if d.ReadyToProcess {
		if err := d.Validate(); err != nil {
			d.ReadyToProcess = false
			d.MissingInfo = append(d.MissingInfo, err.Error())
		}
	}
}
