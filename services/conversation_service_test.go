package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esquivelfacundo/gastrodash/models"
)

func TestHistoryChronologicalOrder(t *testing.T) {
	db := setupServicesTestDB(t)
	store := NewConversationService(db, newTestLogger())

	// Appends land within the same timestamp granularity, so ordering must
	// fall back to insertion sequence
	const n = 8
	for i := 0; i < n; i++ {
		direction := models.DirectionInbound
		if i%2 == 1 {
			direction = models.DirectionOutbound
		}
		_, err := store.Append("5493794000001", direction, fmt.Sprintf("mensaje %d", i), nil)
		require.NoError(t, err)
	}

	history := store.History("5493794000001", 20)
	require.Len(t, history, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("mensaje %d", i), history[i].Content, "turn %d out of order", i)
	}
}

func TestHistoryLimitKeepsNewestTurns(t *testing.T) {
	db := setupServicesTestDB(t)
	store := NewConversationService(db, newTestLogger())

	for i := 0; i < 15; i++ {
		_, err := store.Append("5493794000002", models.DirectionInbound, fmt.Sprintf("m%d", i), nil)
		require.NoError(t, err)
	}

	history := store.History("5493794000002", 10)
	require.Len(t, history, 10)
	// the newest 10 turns, still chronological
	assert.Equal(t, "m5", history[0].Content)
	assert.Equal(t, "m14", history[9].Content)
}

func TestHistoryRoleMapping(t *testing.T) {
	db := setupServicesTestDB(t)
	store := NewConversationService(db, newTestLogger())

	_, err := store.Append("5493794000003", models.DirectionInbound, "hola", nil)
	require.NoError(t, err)
	_, err = store.Append("5493794000003", models.DirectionOutbound, "¡Bienvenido!", nil)
	require.NoError(t, err)

	history := store.History("5493794000003", 10)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, RoleAssistant, history[1].Role)
}

func TestHistoryScopedToPhoneNumber(t *testing.T) {
	db := setupServicesTestDB(t)
	store := NewConversationService(db, newTestLogger())

	_, err := store.Append("5493794000004", models.DirectionInbound, "pedido de A", nil)
	require.NoError(t, err)
	_, err = store.Append("5493794000005", models.DirectionInbound, "pedido de B", nil)
	require.NoError(t, err)

	history := store.History("5493794000004", 10)
	require.Len(t, history, 1)
	assert.Equal(t, "pedido de A", history[0].Content)
}

func TestHistoryDegradesToEmptyOnReadFailure(t *testing.T) {
	db := setupServicesTestDB(t)
	store := NewConversationService(db, newTestLogger())

	require.NoError(t, db.Migrator().DropTable(&models.ConversationTurn{}))

	history := store.History("5493794000006", 10)
	assert.Empty(t, history)
}

func TestAppendFailureIsSurfaced(t *testing.T) {
	db := setupServicesTestDB(t)
	store := NewConversationService(db, newTestLogger())

	require.NoError(t, db.Migrator().DropTable(&models.ConversationTurn{}))

	_, err := store.Append("5493794000007", models.DirectionInbound, "hola", nil)
	assert.Error(t, err)
}

func TestFlattenHistory(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleUser, Content: "quiero una paella"},
		{Role: RoleAssistant, Content: "¿Delivery o take away?"},
	}

	assert.Equal(t, "user: quiero una paella\nassistant: ¿Delivery o take away?", FlattenHistory(history))
	assert.Equal(t, "", FlattenHistory(nil))
}
