package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/esquivelfacundo/gastrodash/config"
	"github.com/esquivelfacundo/gastrodash/services"
)

// VerifyWebhook handles GET /webhook/whatsapp - Meta's webhook subscription
// handshake. It echoes the challenge when the verify token matches.
func VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	cfg := config.GetConfig()
	if mode == "subscribe" && token != "" && token == cfg.MetaVerifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.String(http.StatusForbidden, "Forbidden")
}

// ReceiveMessage handles POST /webhook/whatsapp - an inbound message event
// from Meta. It acknowledges with 200 unconditionally and promptly so the
// provider never re-delivers, and runs the pipeline in the background.
func ReceiveMessage(c *gin.Context) {
	log := config.GetLogger()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusOK, "OK")
		return
	}

	incoming, err := services.ParseIncomingMessage(body)
	if err != nil {
		log.WithField("error", err.Error()).Warn("unparseable webhook payload")
		c.String(http.StatusOK, "OK")
		return
	}
	if incoming == nil {
		// status updates and other non-text events
		c.String(http.StatusOK, "OK")
		return
	}

	log.WithFields(logrus.Fields{
		"phone":   incoming.From,
		"contact": incoming.ContactName,
	}).Info("inbound message received")

	handler := services.GetMessageHandler()
	go func() {
		if err := handler.HandleMessage(context.Background(), incoming.From, incoming.Text); err != nil {
			log.WithFields(logrus.Fields{
				"phone": incoming.From,
				"error": err.Error(),
			}).Error("message handling failed")
		}
	}()

	c.String(http.StatusOK, "OK")
}
