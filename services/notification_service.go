package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	appConfig "github.com/esquivelfacundo/gastrodash/config"
)

// NotificationGateway sends WhatsApp messages through the messaging provider.
// One call is one synchronous network round trip; there is no built-in retry
// or delivery confirmation beyond the transport response.
type NotificationGateway interface {
	SendText(ctx context.Context, recipient, body string) error
	SendTemplate(ctx context.Context, recipient, templateName string, params []string) error
}

// MetaGateway implements NotificationGateway against the Meta WhatsApp
// Cloud API (graph.facebook.com).
type MetaGateway struct {
	httpClient    *http.Client
	accessToken   string
	phoneNumberID string
	baseURL       string
}

var notificationGatewayInstance NotificationGateway

// InitNotificationGateway initializes the Meta gateway from configuration
func InitNotificationGateway() (NotificationGateway, error) {
	cfg := appConfig.GetConfig()
	if cfg.MetaAccessToken == "" || cfg.MetaPhoneNumberID == "" {
		return nil, fmt.Errorf("META_ACCESS_TOKEN and META_PHONE_NUMBER_ID are required")
	}

	notificationGatewayInstance = &MetaGateway{
		httpClient:    &http.Client{Timeout: cfg.SendTimeout},
		accessToken:   cfg.MetaAccessToken,
		phoneNumberID: cfg.MetaPhoneNumberID,
		baseURL:       fmt.Sprintf("https://graph.facebook.com/%s", cfg.MetaAPIVersion),
	}
	return notificationGatewayInstance, nil
}

// GetNotificationGateway returns the initialized gateway instance
func GetNotificationGateway() NotificationGateway {
	return notificationGatewayInstance
}

// SetNotificationGateway sets the gateway instance (primarily for testing)
func SetNotificationGateway(g NotificationGateway) {
	notificationGatewayInstance = g
}

// NewMetaGateway creates a gateway against an explicit base URL. Used by
// tests to point the gateway at a local server.
func NewMetaGateway(httpClient *http.Client, accessToken, phoneNumberID, baseURL string) *MetaGateway {
	return &MetaGateway{
		httpClient:    httpClient,
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		baseURL:       baseURL,
	}
}

type metaTextPayload struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             metaTextBody `json:"text"`
}

type metaTextBody struct {
	Body string `json:"body"`
}

type metaTemplatePayload struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Template         metaTemplate `json:"template"`
}

type metaTemplate struct {
	Name       string                  `json:"name"`
	Language   metaTemplateLanguage    `json:"language"`
	Components []metaTemplateComponent `json:"components,omitempty"`
}

type metaTemplateLanguage struct {
	Code string `json:"code"`
}

type metaTemplateComponent struct {
	Type       string                  `json:"type"`
	Parameters []metaTemplateParameter `json:"parameters"`
}

type metaTemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type metaErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SendText sends a plain text message to a phone number
func (g *MetaGateway) SendText(ctx context.Context, recipient, body string) error {
	payload := metaTextPayload{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
		Text:             metaTextBody{Body: body},
	}
	return g.post(ctx, payload)
}

// SendTemplate sends a pre-approved template message. Required when
// messaging a number outside the 24-hour customer-response window.
func (g *MetaGateway) SendTemplate(ctx context.Context, recipient, templateName string, params []string) error {
	payload := metaTemplatePayload{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "template",
		Template: metaTemplate{
			Name:     templateName,
			Language: metaTemplateLanguage{Code: "es_AR"},
		},
	}
	if len(params) > 0 {
		parameters := make([]metaTemplateParameter, 0, len(params))
		for _, p := range params {
			parameters = append(parameters, metaTemplateParameter{Type: "text", Text: p})
		}
		payload.Template.Components = []metaTemplateComponent{{
			Type:       "body",
			Parameters: parameters,
		}}
	}
	return g.post(ctx, payload)
}

func (g *MetaGateway) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", g.baseURL, g.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("message send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Extract the provider error message when the body carries one
	respBody, _ := io.ReadAll(resp.Body)
	var metaErr metaErrorResponse
	if json.Unmarshal(respBody, &metaErr) == nil && metaErr.Error.Message != "" {
		return fmt.Errorf("meta API error (%d): %s", resp.StatusCode, metaErr.Error.Message)
	}
	return fmt.Errorf("meta API error: status %d", resp.StatusCode)
}

// IncomingMessage is the provider-agnostic shape of one inbound text message
type IncomingMessage struct {
	From        string
	Text        string
	ContactName string
}

type metaWebhookBody struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string       `json:"from"`
					Type string       `json:"type"`
					Text metaTextBody `json:"text"`
				} `json:"messages"`
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseIncomingMessage decodes a Meta webhook payload into an inbound text
// message. It returns nil for payloads that carry no text message (status
// updates, non-WhatsApp objects); those are acknowledged and ignored.
func ParseIncomingMessage(body []byte) (*IncomingMessage, error) {
	var payload metaWebhookBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}
	if payload.Object != "whatsapp_business_account" {
		return nil, nil
	}
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return nil, nil
	}

	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return nil, nil
	}
	msg := value.Messages[0]
	if msg.Type != "text" || msg.Text.Body == "" {
		return nil, nil
	}

	incoming := &IncomingMessage{
		From: msg.From,
		Text: msg.Text.Body,
	}
	if len(value.Contacts) > 0 {
		incoming.ContactName = value.Contacts[0].Profile.Name
	}
	return incoming, nil
}
