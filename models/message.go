package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageChannel represents the communication channel
type MessageChannel string

const (
	ChannelWeb       MessageChannel = "web"
	ChannelWebSocket MessageChannel = "websocket"
	ChannelWhatsApp  MessageChannel = "whatsapp"
)

// Message is one logged exchange.
type Message struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID    string             `bson:"session_id" json:"session_id"`
	UserMessage  string             `bson:"user_message" json:"user_message"`
	BotResponse  string             `bson:"bot_response" json:"bot_response"`
	Intent       Intent             `bson:"intent" json:"intent"`
	ResponseType ResponseType       `bson:"response_type" json:"response_type"`
	State        string             `bson:"state" json:"state"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
	UserID       string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Channel      MessageChannel     `bson:"channel,omitempty" json:"channel,omitempty"`
}

type ChatRequest struct {
	Message   string         `json:"message" binding:"required"`
	SessionID string         `json:"session_id" binding:"required"`
	UserID    string         `json:"user_id,omitempty"`
	Channel   MessageChannel `json:"channel,omitempty"`
}

// ChatResponse is the wire form of an engine reply.
type ChatResponse struct {
	Response      string       `json:"response"`
	Type          ResponseType `json:"type"`
	Suggestions   []string     `json:"suggestions,omitempty"`
	AppointmentID *int64       `json:"appointment_id,omitempty"`
	Collecting    string       `json:"collecting,omitempty"`
	Category      string       `json:"category,omitempty"`
	SessionID     string       `json:"session_id,omitempty"`
	Actions       []Action     `json:"actions,omitempty"`
}

type Action struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	ID          string `json:"id,omitempty"`
}

// ToWhatsAppButton converts an action to a reply button. WhatsApp caps button
// titles at 20 characters.
func (a Action) ToWhatsAppButton() InteractiveButton {
	return InteractiveButton{
		Type: "reply",
		Reply: &ButtonReply{
			ID:    a.ID,
			Title: truncate(a.Label, 20),
		},
	}
}

// ToWhatsAppListItem converts an action to a list row (24 character titles).
func (a Action) ToWhatsAppListItem() ListItem {
	return ListItem{
		ID:          a.ID,
		Title:       truncate(a.Label, 24),
		Description: a.Description,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
