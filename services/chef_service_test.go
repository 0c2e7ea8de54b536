package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esquivelfacundo/gastrodash/models"
)

func sampleOrder() *models.Order {
	address := "Belgrano 123"
	scheduledTime := "21:30"
	return &models.Order{
		ID:              7,
		CustomerName:    "Facundo",
		CustomerPhone:   "5493794000100",
		ServiceType:     models.ServiceDelivery,
		DeliveryAddress: &address,
		PaymentMethod:   "efectivo",
		TotalAmount:     decimal.NewFromInt(9200),
		Status:          models.OrderStatusConfirmed,
		ScheduledDate:   time.Now(),
		ScheduledTime:   &scheduledTime,
		Items: []models.OrderItem{
			{ProductName: "Arroz con Pollo", Quantity: 2, UnitPrice: decimal.NewFromInt(3500), Subtotal: decimal.NewFromInt(7000)},
			{ProductName: "Tortilla de Papa", Quantity: 1, UnitPrice: decimal.NewFromInt(2200), Subtotal: decimal.NewFromInt(2200)},
		},
	}
}

func TestFormatChefTicket(t *testing.T) {
	ticket := FormatChefTicket(sampleOrder())

	assert.Contains(t, ticket, "NUEVO PEDIDO #7")
	assert.Contains(t, ticket, "Facundo")
	assert.Contains(t, ticket, "5493794000100")
	assert.Contains(t, ticket, "2x Arroz con Pollo")
	assert.Contains(t, ticket, "1x Tortilla de Papa")
	assert.Contains(t, ticket, "Delivery")
	assert.Contains(t, ticket, "Belgrano 123")
	assert.Contains(t, ticket, "efectivo")
	assert.Contains(t, ticket, "HOY")
	assert.Contains(t, ticket, "21:30")
}

func TestFormatChefTicketTakeAwayFutureDate(t *testing.T) {
	order := sampleOrder()
	order.ServiceType = models.ServiceTakeAway
	order.DeliveryAddress = nil
	order.ScheduledDate = time.Now().AddDate(0, 0, 2)

	ticket := FormatChefTicket(order)
	assert.Contains(t, ticket, "Take Away")
	assert.NotContains(t, ticket, "Dirección")
	assert.NotContains(t, ticket, "HOY")
	assert.Contains(t, ticket, order.ScheduledDate.Format("2006-01-02"))
}

func TestFormatCustomerConfirmation(t *testing.T) {
	text := FormatCustomerConfirmation(sampleOrder())

	assert.Contains(t, text, "PEDIDO CONFIRMADO #7")
	assert.Contains(t, text, "2x Arroz con Pollo")
	assert.Contains(t, text, "$9200.00")
	assert.Contains(t, text, "Belgrano 123")
}

func TestStatusUpdateMessage(t *testing.T) {
	order := sampleOrder()

	order.Status = models.OrderStatusConfirmed
	assert.Contains(t, StatusUpdateMessage(order), "confirmado")

	order.Status = models.OrderStatusReady
	assert.Contains(t, StatusUpdateMessage(order), "delivery en breve")

	order.ServiceType = models.ServiceTakeAway
	assert.Contains(t, StatusUpdateMessage(order), "retirarlo")

	order.Status = models.OrderStatusDelivered
	assert.Contains(t, StatusUpdateMessage(order), "entregado")

	order.Status = models.OrderStatusPreparing
	assert.Empty(t, StatusUpdateMessage(order), "no customer message while preparing")
}

func TestSendStatusUpdate(t *testing.T) {
	db := setupServicesTestDB(t)
	gateway := NewMockNotificationGateway()
	svc := NewChefService(db, gateway, testChefPhone, newTestLogger())

	order := sampleOrder()
	require.NoError(t, svc.SendStatusUpdate(context.Background(), order))

	sent := gateway.SentTo(order.CustomerPhone)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "pedido #7")
}

func TestSendDailySummary(t *testing.T) {
	db := setupServicesTestDB(t)
	seedMenu(t, db)
	gateway := NewMockNotificationGateway()
	svc := NewChefService(db, gateway, testChefPhone, newTestLogger())

	order := sampleOrder()
	order.ID = 0
	require.NoError(t, db.Create(order).Error)

	require.NoError(t, svc.SendDailySummary(context.Background()))

	sent := gateway.SentTo(testChefPhone)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "PEDIDOS DEL DÍA")
	assert.Contains(t, sent[0].Body, "Facundo")
	assert.Contains(t, sent[0].Body, "2x Arroz con Pollo")
}

func TestSendDailySummarySkipsWhenEmpty(t *testing.T) {
	db := setupServicesTestDB(t)
	gateway := NewMockNotificationGateway()
	svc := NewChefService(db, gateway, testChefPhone, newTestLogger())

	require.NoError(t, svc.SendDailySummary(context.Background()))
	assert.Empty(t, gateway.Sent())
}

func TestSendDailySummarySkipsWithoutChefPhone(t *testing.T) {
	db := setupServicesTestDB(t)
	gateway := NewMockNotificationGateway()
	svc := NewChefService(db, gateway, "", newTestLogger())

	require.NoError(t, svc.SendDailySummary(context.Background()))
	assert.Empty(t, gateway.Sent())
}
