package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/esquivelfacundo/gastrodash/models"
)

// CustomerAck is the short acknowledgement sent to the customer right after
// their order is committed, while the kitchen confirms timing.
const CustomerAck = "Estamos consultando con la cocina en cuánto tiempo va a estar tu pedido 👨‍🍳"

// ChefService formats and sends kitchen-facing notifications and customer
// status updates.
type ChefService struct {
	db        *gorm.DB
	gateway   NotificationGateway
	chefPhone string
	log       *logrus.Logger
}

var chefServiceInstance *ChefService

// NewChefService creates a chef notification service
func NewChefService(db *gorm.DB, gateway NotificationGateway, chefPhone string, log *logrus.Logger) *ChefService {
	return &ChefService{db: db, gateway: gateway, chefPhone: chefPhone, log: log}
}

// InitChefService initializes the global chef service
func InitChefService(db *gorm.DB, gateway NotificationGateway, chefPhone string, log *logrus.Logger) *ChefService {
	chefServiceInstance = NewChefService(db, gateway, chefPhone, log)
	return chefServiceInstance
}

// GetChefService returns the initialized chef service instance
func GetChefService() *ChefService {
	return chefServiceInstance
}

// SetChefService sets the chef service instance (primarily for testing)
func SetChefService(s *ChefService) {
	chefServiceInstance = s
}

// ChefPhone returns the configured kitchen recipient, empty when unset
func (s *ChefService) ChefPhone() string {
	return s.chefPhone
}

// FormatChefTicket renders the kitchen copy of a committed order
func FormatChefTicket(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔔 *NUEVO PEDIDO #%d*\n\n", order.ID)
	fmt.Fprintf(&b, "👤 *Cliente:* %s\n", order.CustomerName)
	fmt.Fprintf(&b, "📞 *Teléfono:* %s\n\n", order.CustomerPhone)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "🍽️ %dx %s\n", item.Quantity, item.ProductName)
	}

	if order.ServiceType == models.ServiceDelivery {
		b.WriteString("\n🚚 *Servicio:* Delivery\n")
		if order.DeliveryAddress != nil {
			fmt.Fprintf(&b, "📍 *Dirección:* %s\n", *order.DeliveryAddress)
		}
	} else {
		b.WriteString("\n📦 *Servicio:* Take Away\n")
	}
	if order.PaymentMethod != "" {
		fmt.Fprintf(&b, "💰 *Pago:* %s\n", order.PaymentMethod)
	}

	today := time.Now().Format("2006-01-02")
	if scheduled := order.ScheduledDate.Format("2006-01-02"); scheduled != today {
		fmt.Fprintf(&b, "📅 *Para:* %s", scheduled)
	} else {
		b.WriteString("📅 *Para:* HOY")
	}
	if order.ScheduledTime != nil {
		fmt.Fprintf(&b, " %s", *order.ScheduledTime)
	}

	return b.String()
}

// FormatCustomerConfirmation renders the confirmation message shown to the
// customer once the kitchen accepts the order.
func FormatCustomerConfirmation(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "✅ *PEDIDO CONFIRMADO #%d*\n\n", order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %dx %s\n", item.Quantity, item.ProductName)
	}
	fmt.Fprintf(&b, "\n💰 *Total:* $%s\n", order.TotalAmount.StringFixed(2))

	if order.ServiceType == models.ServiceDelivery {
		b.WriteString("📦 *Servicio:* Delivery\n")
		if order.DeliveryAddress != nil {
			fmt.Fprintf(&b, "📍 *Dirección:* %s\n", *order.DeliveryAddress)
		}
	} else {
		b.WriteString("📦 *Servicio:* Take Away\n")
	}

	b.WriteString("\n⏱️ *Tiempo estimado:* 30-45 minutos")
	return b.String()
}

// StatusUpdateMessage renders the customer-facing text for an order status
// change. It returns an empty string for statuses with no customer message.
func StatusUpdateMessage(order *models.Order) string {
	switch order.Status {
	case models.OrderStatusConfirmed:
		return fmt.Sprintf("✅ Tu pedido #%d ha sido confirmado y está en preparación. Tiempo estimado: 30-45 minutos.", order.ID)
	case models.OrderStatusReady:
		if order.ServiceType == models.ServiceDelivery {
			return fmt.Sprintf("🎉 ¡Tu pedido #%d está listo! Saldrá para delivery en breve.", order.ID)
		}
		return fmt.Sprintf("🎉 ¡Tu pedido #%d está listo! Puedes pasar a retirarlo.", order.ID)
	case models.OrderStatusDelivered:
		return fmt.Sprintf("✅ Pedido #%d entregado. ¡Gracias por tu compra!", order.ID)
	default:
		return ""
	}
}

// SendStatusUpdate notifies the customer about an order status change
func (s *ChefService) SendStatusUpdate(ctx context.Context, order *models.Order) error {
	message := StatusUpdateMessage(order)
	if message == "" {
		return nil
	}
	if err := s.gateway.SendText(ctx, order.CustomerPhone, message); err != nil {
		return fmt.Errorf("failed to send status update for order %d: %w", order.ID, err)
	}
	return nil
}

// SendDailySummary sends the chef a digest of today's orders. Nothing is
// sent when no chef phone is configured or there are no orders.
func (s *ChefService) SendDailySummary(ctx context.Context) error {
	if s.chefPhone == "" {
		s.log.Warn("chef phone not configured, skipping daily summary")
		return nil
	}

	orders, err := s.TodayOrders()
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("📅 *PEDIDOS DEL DÍA*\n\n")
	for _, order := range orders {
		fmt.Fprintf(&b, "🔸 *Pedido #%d*\n", order.ID)
		fmt.Fprintf(&b, "👤 %s\n", order.CustomerName)
		for _, item := range order.Items {
			fmt.Fprintf(&b, "• %dx %s\n", item.Quantity, item.ProductName)
		}
		if order.ScheduledTime != nil {
			fmt.Fprintf(&b, "⏰ %s\n", *order.ScheduledTime)
		}
		fmt.Fprintf(&b, "📊 Estado: %s\n\n", order.Status)
	}

	if err := s.gateway.SendText(ctx, s.chefPhone, b.String()); err != nil {
		return fmt.Errorf("failed to send daily summary: %w", err)
	}
	return nil
}

// TodayOrders returns today's orders with their items, oldest first.
// An order counts as today's when it was created today or is scheduled for
// today and not yet delivered.
func (s *ChefService) TodayOrders() ([]models.Order, error) {
	startOfDay := time.Now().Truncate(24 * time.Hour)
	endOfDay := startOfDay.Add(24 * time.Hour)

	var orders []models.Order
	err := s.db.
		Preload("Items").
		Where("(created_at >= ? AND created_at < ?) OR (scheduled_date >= ? AND scheduled_date < ? AND status <> ?)",
			startOfDay, endOfDay, startOfDay, endOfDay, models.OrderStatusDelivered).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch today's orders: %w", err)
	}
	return orders, nil
}
