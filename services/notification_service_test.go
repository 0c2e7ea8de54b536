package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaGatewaySendText(t *testing.T) {
	var captured struct {
		path    string
		auth    string
		payload map[string]interface{}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&captured.payload)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"messages":[{"id":"wamid.test"}]}`))
	}))
	defer server.Close()

	gateway := NewMetaGateway(server.Client(), "test-token", "111222333", server.URL)
	err := gateway.SendText(context.Background(), "5493794000100", "hola!")
	require.NoError(t, err)

	assert.Equal(t, "/111222333/messages", captured.path)
	assert.Equal(t, "Bearer test-token", captured.auth)
	assert.Equal(t, "whatsapp", captured.payload["messaging_product"])
	assert.Equal(t, "5493794000100", captured.payload["to"])
	assert.Equal(t, "text", captured.payload["type"])
	text := captured.payload["text"].(map[string]interface{})
	assert.Equal(t, "hola!", text["body"])
}

func TestMetaGatewaySendTemplate(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gateway := NewMetaGateway(server.Client(), "test-token", "111222333", server.URL)
	err := gateway.SendTemplate(context.Background(), "5493794000100", "order_update", []string{"7"})
	require.NoError(t, err)

	assert.Equal(t, "template", payload["type"])
	template := payload["template"].(map[string]interface{})
	assert.Equal(t, "order_update", template["name"])
	language := template["language"].(map[string]interface{})
	assert.Equal(t, "es_AR", language["code"])
	components := template["components"].([]interface{})
	require.Len(t, components, 1)
}

func TestMetaGatewayExtractsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid recipient","code":131026}}`))
	}))
	defer server.Close()

	gateway := NewMetaGateway(server.Client(), "test-token", "111222333", server.URL)
	err := gateway.SendText(context.Background(), "not-a-phone", "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid recipient")
	assert.Contains(t, err.Error(), "400")
}

func TestMetaGatewayNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	gateway := NewMetaGateway(server.Client(), "test-token", "111222333", server.URL)
	err := gateway.SendText(context.Background(), "5493794000100", "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

const sampleWebhookPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "changes": [{
      "value": {
        "contacts": [{"profile": {"name": "Facundo"}}],
        "messages": [{"from": "5493794000100", "type": "text", "text": {"body": "quiero una paella"}}]
      }
    }]
  }]
}`

func TestParseIncomingMessage(t *testing.T) {
	incoming, err := ParseIncomingMessage([]byte(sampleWebhookPayload))
	require.NoError(t, err)
	require.NotNil(t, incoming)

	assert.Equal(t, "5493794000100", incoming.From)
	assert.Equal(t, "quiero una paella", incoming.Text)
	assert.Equal(t, "Facundo", incoming.ContactName)
}

func TestParseIncomingMessageIgnoresNonMessageEvents(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"different object", `{"object": "page", "entry": []}`},
		{"no entries", `{"object": "whatsapp_business_account", "entry": []}`},
		{
			"status update without messages",
			`{"object": "whatsapp_business_account", "entry": [{"changes": [{"value": {"statuses": [{"status": "delivered"}]}}]}]}`,
		},
		{
			"non-text message",
			`{"object": "whatsapp_business_account", "entry": [{"changes": [{"value": {"messages": [{"from": "549", "type": "image"}]}}]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			incoming, err := ParseIncomingMessage([]byte(tt.payload))
			require.NoError(t, err)
			assert.Nil(t, incoming)
		})
	}
}

func TestParseIncomingMessageRejectsGarbage(t *testing.T) {
	incoming, err := ParseIncomingMessage([]byte("not json at all"))
	assert.Error(t, err)
	assert.Nil(t, incoming)
}
