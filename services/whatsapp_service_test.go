package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-booking-chatbot/models"
)

func newTestWhatsApp(t *testing.T, handler http.HandlerFunc) *WhatsAppService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewWhatsAppService(WhatsAppOptions{
		APIURL:        server.URL,
		APIVersion:    "v18.0",
		AccessToken:   "token",
		PhoneNumberID: "12345",
		ClinicName:    "Test Clinic",
	}, nil)
}

func TestSendTextMessage(t *testing.T) {
	var got models.WhatsAppSendMessage
	ws := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v18.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"messages":[{"id":"wamid.1"}]}`)
	})

	require.NoError(t, ws.SendTextMessage(context.Background(), "786-595-3900", "hi there"))
	assert.Equal(t, "17865953900", got.To)
	assert.Equal(t, "text", got.Type)
	require.NotNil(t, got.Text)
	assert.Equal(t, "hi there", got.Text.Body)

	status := ws.GetStatus(3)
	assert.True(t, status.Enabled)
	assert.Equal(t, 1, status.MessageCountToday)
	assert.Equal(t, 3, status.ActiveSessions)
}

func TestSendRequestAPIError(t *testing.T) {
	ws := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":131030,"title":"Recipient not allowed","message":"Recipient phone number not in allowed list"}}`)
	})

	err := ws.SendTextMessage(context.Background(), "17865953900", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "131030")
	assert.Equal(t, 0, ws.GetStatus(0).MessageCountToday)
}

func TestSendRequestRequiresCredentials(t *testing.T) {
	ws := NewWhatsAppService(WhatsAppOptions{}, nil)
	assert.False(t, ws.Enabled())
	assert.Error(t, ws.SendTextMessage(context.Background(), "17865953900", "hi"))
}

func TestSendChatResponseUsesButtons(t *testing.T) {
	var got models.WhatsAppSendMessage
	ws := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	resp := models.ToChatResponse(models.GreetingResponse{Reply: models.Reply{
		Message:     "Welcome",
		Suggestions: mainMenu,
	}})
	require.NoError(t, ws.SendChatResponse(context.Background(), "17865953900", resp))

	assert.Equal(t, "interactive", got.Type)
	require.NotNil(t, got.Interactive)
	assert.Equal(t, "button", got.Interactive.Type)
	assert.Len(t, got.Interactive.Action.Buttons, 3)
	assert.Equal(t, "Test Clinic", got.Interactive.Footer.Text)
}

func TestBuildInteractive(t *testing.T) {
	actions := func(n int) []models.Action {
		out := make([]models.Action, n)
		for i := range out {
			out[i] = models.Action{Type: "quick_reply", Label: fmt.Sprintf("Option number %d with a long label", i), ID: fmt.Sprintf("reply_%d", i)}
		}
		return out
	}

	assert.Nil(t, BuildInteractive(&models.ChatResponse{Response: "plain"}, ""))
	assert.Nil(t, BuildInteractive(&models.ChatResponse{Response: "many", Actions: actions(11)}, ""))
	assert.Nil(t, BuildInteractive(&models.ChatResponse{Response: strings.Repeat("x", 1025), Actions: actions(2)}, ""))

	buttons := BuildInteractive(&models.ChatResponse{Response: "pick", Actions: actions(2)}, "")
	require.NotNil(t, buttons)
	assert.Equal(t, "button", buttons.Type)
	assert.Nil(t, buttons.Footer)
	assert.Len(t, []rune(buttons.Action.Buttons[0].Reply.Title), 20)

	list := BuildInteractive(&models.ChatResponse{Response: "pick", Actions: actions(5)}, "Clinic")
	require.NotNil(t, list)
	assert.Equal(t, "list", list.Type)
	require.Len(t, list.Action.Sections, 1)
	assert.Len(t, list.Action.Sections[0].Rows, 5)
	assert.Len(t, []rune(list.Action.Sections[0].Rows[0].Title), 24)
	assert.Equal(t, "reply_4", list.Action.Sections[0].Rows[4].ID)
}

func TestMarkMessageAsRead(t *testing.T) {
	var got map[string]string
	ws := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	require.NoError(t, ws.MarkMessageAsRead(context.Background(), "wamid.9"))
	assert.Equal(t, "read", got["status"])
	assert.Equal(t, "wamid.9", got["message_id"])
}
