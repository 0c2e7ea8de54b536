package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	appConfig "github.com/esquivelfacundo/gastrodash/config"
	"github.com/esquivelfacundo/gastrodash/models"
)

// ReplyFallback is sent to the customer whenever reply generation fails.
// The conversation must always receive some answer, never a raw error.
const ReplyFallback = "Disculpa, tengo problemas técnicos en este momento. ¿Podrías intentar nuevamente en unos minutos?"

// ReplyGenerator produces the natural-language reply shown to the customer
type ReplyGenerator interface {
	Reply(ctx context.Context, userMessage string, history []ChatMessage) string
}

// ModelReplyGenerator implements ReplyGenerator with a language-model call
// seeded with the restaurant persona and current menu.
type ModelReplyGenerator struct {
	model   ChatModel
	catalog *CatalogService
	cfg     *appConfig.Config
	log     *logrus.Logger
}

var replyGeneratorInstance ReplyGenerator

// InitReplyGenerator initializes the reply generator
func InitReplyGenerator(model ChatModel, catalog *CatalogService, log *logrus.Logger) ReplyGenerator {
	replyGeneratorInstance = &ModelReplyGenerator{
		model:   model,
		catalog: catalog,
		cfg:     appConfig.GetConfig(),
		log:     log,
	}
	return replyGeneratorInstance
}

// GetReplyGenerator returns the initialized reply generator instance
func GetReplyGenerator() ReplyGenerator {
	return replyGeneratorInstance
}

// SetReplyGenerator sets the reply generator instance (primarily for testing)
func SetReplyGenerator(g ReplyGenerator) {
	replyGeneratorInstance = g
}

// Reply generates the assistant's answer to the customer's latest message.
// Any failure returns the fixed fallback string.
func (g *ModelReplyGenerator) Reply(ctx context.Context, userMessage string, history []ChatMessage) string {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: RoleSystem, Content: g.systemPrompt()})
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{Role: RoleUser, Content: userMessage})

	reply, err := g.model.Complete(ctx, messages, CompletionOptions{
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		g.log.WithField("error", err.Error()).Error("reply generation failed")
		return ReplyFallback
	}
	if strings.TrimSpace(reply) == "" {
		g.log.Warn("reply generation returned empty text")
		return ReplyFallback
	}
	return reply
}

// systemPrompt builds the persona/menu context. The menu section comes from
// the live catalog so price changes reach the bot without a redeploy; a
// catalog read failure just omits the menu listing.
func (g *ModelReplyGenerator) systemPrompt() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Eres el asistente virtual de %s, un restaurante.\n\n", g.cfg.RestaurantName)
	fmt.Fprintf(&b, "INFORMACIÓN DEL RESTAURANTE:\n")
	fmt.Fprintf(&b, "- Nombre: %s\n", g.cfg.RestaurantName)
	if g.cfg.RestaurantAddress != "" {
		fmt.Fprintf(&b, "- Ubicación: %s\n", g.cfg.RestaurantAddress)
	}
	if g.cfg.RestaurantPhone != "" {
		fmt.Fprintf(&b, "- Teléfono: %s\n", g.cfg.RestaurantPhone)
	}

	if products, err := g.catalog.ListAvailable(); err == nil && len(products) > 0 {
		b.WriteString("\nMENÚ DISPONIBLE:\n")
		for _, p := range products {
			writeMenuLine(&b, p)
		}
	}

	b.WriteString(`
SERVICIOS:
- Delivery
- Take Away (retiro en el local)

MÉTODOS DE PAGO:
- Efectivo
- Transferencia bancaria

TU PERSONALIDAD:
- Amable y cálido
- Eficiente para tomar pedidos
- Siempre dispuesto a ayudar y recomendar

PROCESO DE PEDIDO:
1. Saluda cordialmente
2. Pregunta qué desea pedir
3. Confirma cada item y cantidad
4. Pregunta si es delivery o take away
5. Si es delivery, solicita dirección completa
6. Pregunta método de pago
7. Pregunta si es para hoy o para otro día
8. Confirma todos los datos del pedido

IMPORTANTE:
- Solo ofrece productos que están en el menú
- Sé específico con las cantidades y precios
- Si no entiendes algo, pide aclaración amablemente
`)

	return b.String()
}

func writeMenuLine(b *strings.Builder, p models.Product) {
	fmt.Fprintf(b, "- %s - $%s", p.Name, p.Price.StringFixed(2))
	if p.Description != "" {
		fmt.Fprintf(b, " (%s)", p.Description)
	}
	b.WriteString("\n")
}
