package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/esquivelfacundo/gastrodash/config"
	"github.com/esquivelfacundo/gastrodash/models"
	"github.com/esquivelfacundo/gastrodash/services"
)

// UpdateOrderStatusRequest represents the request body for updating an order's status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var validStatuses = map[models.OrderStatus]bool{
	models.OrderStatusPending:   true,
	models.OrderStatusConfirmed: true,
	models.OrderStatusPreparing: true,
	models.OrderStatusReady:     true,
	models.OrderStatusDelivered: true,
	models.OrderStatusCancelled: true,
}

// ListTodayOrders handles GET /api/v1/orders/today - returns today's orders
// with their items for the kitchen dashboard
func ListTodayOrders(c *gin.Context) {
	orders, err := services.GetChefService().TodayOrders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load today's orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - moves an order
// through the kitchen workflow and notifies the customer of the change
func UpdateOrderStatus(c *gin.Context) {
	log := config.GetLogger()

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	status := models.OrderStatus(req.Status)
	if !validStatuses[status] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown order status: " + req.Status,
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Items").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	order.Status = status
	if err := db.Model(&order).Update("status", status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order status",
			},
		})
		return
	}

	// The status change is committed; the customer notification is
	// best-effort on top of it.
	if err := services.GetChefService().SendStatusUpdate(c.Request.Context(), &order); err != nil {
		log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"status":   status,
			"error":    err.Error(),
		}).Error("failed to notify customer of status change")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// SendDailySummary handles POST /api/v1/orders/daily-summary - pushes the
// day's order digest to the kitchen
func SendDailySummary(c *gin.Context) {
	if err := services.GetChefService().SendDailySummary(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOTIFICATION_ERROR",
				"message": "Failed to send daily summary",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Daily summary sent",
	})
}
