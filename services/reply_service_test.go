package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "github.com/esquivelfacundo/gastrodash/config"
)

func newTestReplyGenerator(t *testing.T, model ChatModel) *ModelReplyGenerator {
	t.Helper()

	db := setupServicesTestDB(t)
	seedMenu(t, db)

	return &ModelReplyGenerator{
		model:   model,
		catalog: NewCatalogService(db),
		cfg: &appConfig.Config{
			RestaurantName:    "La Esquina",
			RestaurantAddress: "Av. Siempre Viva 742",
		},
		log: newTestLogger(),
	}
}

func TestReplyReturnsModelText(t *testing.T) {
	model := NewMockChatModel("¡Hola! ¿Qué te gustaría pedir hoy?")
	g := newTestReplyGenerator(t, model)

	reply := g.Reply(context.Background(), "hola", nil)
	assert.Equal(t, "¡Hola! ¿Qué te gustaría pedir hoy?", reply)
}

func TestReplyFallbackOnModelFailure(t *testing.T) {
	model := NewMockChatModel()
	model.FailWith(errors.New("connection timed out"))
	g := newTestReplyGenerator(t, model)

	reply := g.Reply(context.Background(), "hola", nil)
	assert.Equal(t, ReplyFallback, reply)
}

func TestReplyFallbackOnEmptyModelText(t *testing.T) {
	model := NewMockChatModel("   ")
	g := newTestReplyGenerator(t, model)

	reply := g.Reply(context.Background(), "hola", nil)
	assert.Equal(t, ReplyFallback, reply)
}

func TestReplySeedsPersonaHistoryAndUserMessage(t *testing.T) {
	model := NewMockChatModel("claro")
	g := newTestReplyGenerator(t, model)

	history := []ChatMessage{
		{Role: RoleUser, Content: "hola"},
		{Role: RoleAssistant, Content: "¡Bienvenido!"},
	}
	g.Reply(context.Background(), "quiero una paella", history)

	require.Len(t, model.Calls, 1)
	messages := model.Calls[0]
	require.Len(t, messages, 4)

	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "La Esquina")
	assert.Contains(t, messages[0].Content, "Paella Tradicional")
	assert.Contains(t, messages[0].Content, "4200.00")

	assert.Equal(t, history[0], messages[1])
	assert.Equal(t, history[1], messages[2])

	assert.Equal(t, RoleUser, messages[3].Role)
	assert.Equal(t, "quiero una paella", messages[3].Content)
}

func TestReplyPersonaOmitsUnavailableItems(t *testing.T) {
	model := NewMockChatModel("claro")
	g := newTestReplyGenerator(t, model)

	g.Reply(context.Background(), "qué hay en el menú?", nil)

	require.Len(t, model.Calls, 1)
	assert.NotContains(t, model.Calls[0][0].Content, "Tortilla Española")
}
