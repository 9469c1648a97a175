package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

const (
	maxReplyButtons = 3
	maxListRows     = 10
	maxBodyLength   = 1024
)

// WhatsAppOptions configures the Cloud API client.
type WhatsAppOptions struct {
	APIURL        string
	APIVersion    string
	AccessToken   string
	PhoneNumberID string
	ClinicName    string
}

type WhatsAppService struct {
	apiURL        string
	apiVersion    string
	accessToken   string
	phoneNumberID string
	clinicName    string
	httpClient    *http.Client
	logger        *zap.Logger

	// Status tracking
	statusMu        sync.RWMutex
	lastMessageTime time.Time
	dailyCount      map[string]int
}

func NewWhatsAppService(opts WhatsAppOptions, logger *zap.Logger) *WhatsAppService {
	if opts.APIURL == "" {
		opts.APIURL = "https://graph.facebook.com"
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "v18.0"
	}
	return &WhatsAppService{
		apiURL:        strings.TrimRight(opts.APIURL, "/"),
		apiVersion:    opts.APIVersion,
		accessToken:   opts.AccessToken,
		phoneNumberID: opts.PhoneNumberID,
		clinicName:    opts.ClinicName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:     utils.OrNop(logger),
		dailyCount: make(map[string]int),
	}
}

// Enabled reports whether credentials are configured.
func (ws *WhatsAppService) Enabled() bool {
	return ws.accessToken != "" && ws.phoneNumberID != ""
}

// SendTextMessage sends a simple text message
func (ws *WhatsAppService) SendTextMessage(ctx context.Context, to, message string) error {
	return ws.sendRequest(ctx, models.WhatsAppSendMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               utils.NormalizeWhatsAppNumber(to),
		Type:             "text",
		Text:             &models.WhatsAppText{Body: message},
	})
}

// SendInteractiveMessage sends reply buttons or a list.
func (ws *WhatsAppService) SendInteractiveMessage(ctx context.Context, to string, interactive *models.InteractiveMessage) error {
	return ws.sendRequest(ctx, models.WhatsAppSendMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               utils.NormalizeWhatsAppNumber(to),
		Type:             "interactive",
		Interactive:      interactive,
	})
}

// SendChatResponse delivers an engine reply: up to three quick replies
// become buttons, up to ten a list, anything else plain text.
func (ws *WhatsAppService) SendChatResponse(ctx context.Context, to string, resp *models.ChatResponse) error {
	if interactive := BuildInteractive(resp, ws.clinicName); interactive != nil {
		return ws.SendInteractiveMessage(ctx, to, interactive)
	}
	return ws.SendTextMessage(ctx, to, resp.Response)
}

// BuildInteractive converts a chat response with actions into an
// interactive message, or returns nil when it should go out as text.
func BuildInteractive(resp *models.ChatResponse, footer string) *models.InteractiveMessage {
	n := len(resp.Actions)
	if n == 0 || n > maxListRows || len([]rune(resp.Response)) > maxBodyLength {
		return nil
	}

	msg := &models.InteractiveMessage{
		Body:   models.InteractiveBody{Text: resp.Response},
		Action: &models.InteractiveAction{},
	}
	if footer != "" {
		msg.Footer = &models.InteractiveFooter{Text: footer}
	}

	if n <= maxReplyButtons {
		msg.Type = "button"
		for _, a := range resp.Actions {
			msg.Action.Buttons = append(msg.Action.Buttons, a.ToWhatsAppButton())
		}
		return msg
	}

	msg.Type = "list"
	msg.Action.Button = "Choose an option"
	section := models.Section{Title: "Options"}
	for _, a := range resp.Actions {
		section.Rows = append(section.Rows, a.ToWhatsAppListItem())
	}
	msg.Action.Sections = []models.Section{section}
	return msg
}

// MarkMessageAsRead marks a message as read
func (ws *WhatsAppService) MarkMessageAsRead(ctx context.Context, messageID string) error {
	return ws.sendRequest(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	})
}

func (ws *WhatsAppService) sendRequest(ctx context.Context, payload interface{}) error {
	if !ws.Enabled() {
		return fmt.Errorf("whatsapp is not configured")
	}
	url := fmt.Sprintf("%s/%s/%s/messages", ws.apiURL, ws.apiVersion, ws.phoneNumberID)

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+ws.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorResp struct {
			Error models.Error `json:"error"`
		}
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			ws.logger.Error("WhatsApp API error",
				zap.Int("status", resp.StatusCode),
				zap.Int("code", errorResp.Error.Code),
				zap.String("message", errorResp.Error.Message),
			)
			return fmt.Errorf("whatsapp api error %d: %s", errorResp.Error.Code, errorResp.Error.Message)
		}
		ws.logger.Error("WhatsApp API error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return fmt.Errorf("whatsapp api error: status %d", resp.StatusCode)
	}

	ws.updateMessageStatus()
	return nil
}

// updateMessageStatus updates internal message tracking
func (ws *WhatsAppService) updateMessageStatus() {
	ws.statusMu.Lock()
	defer ws.statusMu.Unlock()

	ws.lastMessageTime = time.Now()
	today := ws.lastMessageTime.Format("2006-01-02")
	for day := range ws.dailyCount {
		if day != today {
			delete(ws.dailyCount, day)
		}
	}
	ws.dailyCount[today]++
}

// GetStatus returns the service status
func (ws *WhatsAppService) GetStatus(activeSessions int) models.WhatsAppServiceStatus {
	ws.statusMu.RLock()
	defer ws.statusMu.RUnlock()

	return models.WhatsAppServiceStatus{
		Enabled:           ws.Enabled(),
		LastMessageSent:   ws.lastMessageTime,
		MessageCountToday: ws.dailyCount[time.Now().Format("2006-01-02")],
		ActiveSessions:    activeSessions,
	}
}
