package whatsapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
)

// WebhookPayload is the notification body the Graph API posts to the webhook.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID      string          `json:"id"`
	Changes []webhookChange `json:"changes"`
}

type webhookChange struct {
	Field string       `json:"field"`
	Value webhookValue `json:"value"`
}

type webhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         webhookMetadata  `json:"metadata"`
	Contacts         []webhookContact `json:"contacts"`
	Messages         []webhookMessage `json:"messages"`
	Statuses         []webhookStatus  `json:"statuses"`
}

type webhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type webhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type webhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Interactive *struct {
		Type        string       `json:"type"`
		ButtonReply *replyChoice `json:"button_reply,omitempty"`
		ListReply   *replyChoice `json:"list_reply,omitempty"`
	} `json:"interactive,omitempty"`
	Button *struct {
		Payload string `json:"payload"`
		Text    string `json:"text"`
	} `json:"button,omitempty"`
}

type replyChoice struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type webhookStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
	Errors      []struct {
		Code  int    `json:"code"`
		Title string `json:"title"`
	} `json:"errors,omitempty"`
}

// Inbound is the first user message of a notification, ready for the engine.
type Inbound struct {
	Event   conversation.Event
	Profile conversation.Profile
	// Type is the raw WhatsApp message type ("text", "interactive", "image", ...).
	Type string
}

// DeliveryStatus is a receipt for a message the bot sent earlier.
type DeliveryStatus struct {
	MessageID   string
	Status      string
	RecipientID string
	ErrorCode   int
	ErrorTitle  string
}

// Notification is a decoded webhook body. Message is nil when the body
// carries no user message (status-only or unrelated notifications).
type Notification struct {
	Message  *Inbound
	Statuses []DeliveryStatus
}

// ErrMalformedPayload is returned when the body is not valid JSON.
var ErrMalformedPayload = errors.New("whatsapp: malformed webhook payload")

// ParseWebhook decodes a webhook body. Only the first message of the first
// change is routed; status receipts are collected from every change.
func ParseWebhook(body []byte) (Notification, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var n Notification
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, st := range change.Value.Statuses {
				ds := DeliveryStatus{MessageID: st.ID, Status: st.Status, RecipientID: st.RecipientID}
				if len(st.Errors) > 0 {
					ds.ErrorCode = st.Errors[0].Code
					ds.ErrorTitle = st.Errors[0].Title
				}
				n.Statuses = append(n.Statuses, ds)
			}
		}
	}

	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return n, nil
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return n, nil
	}
	msg := value.Messages[0]
	n.Message = &Inbound{
		Event:   toEvent(msg),
		Profile: profileFor(msg.From, value.Contacts),
		Type:    msg.Type,
	}
	return n, nil
}

func toEvent(msg webhookMessage) conversation.Event {
	switch msg.Type {
	case "text":
		if msg.Text != nil {
			return conversation.TextEvent{From: msg.From, ID: msg.ID, Body: msg.Text.Body}
		}
	case "interactive":
		if msg.Interactive != nil {
			choice := msg.Interactive.ButtonReply
			if choice == nil {
				choice = msg.Interactive.ListReply
			}
			if choice != nil {
				return conversation.InteractiveEvent{
					From:     msg.From,
					ID:       msg.ID,
					Selected: conversation.ButtonChoice{ID: choice.ID, Title: choice.Title},
				}
			}
		}
	case "button":
		// quick-reply buttons on template messages
		if msg.Button != nil {
			return conversation.InteractiveEvent{
				From:     msg.From,
				ID:       msg.ID,
				Selected: conversation.ButtonChoice{ID: msg.Button.Payload, Title: msg.Button.Text},
			}
		}
	}
	return conversation.OtherEvent{From: msg.From, ID: msg.ID, Type: msg.Type}
}

func profileFor(from string, contacts []webhookContact) conversation.Profile {
	for _, c := range contacts {
		if c.WaID == from {
			return conversation.Profile{Name: strings.TrimSpace(c.Profile.Name), ID: c.WaID}
		}
	}
	if len(contacts) > 0 {
		return conversation.Profile{Name: strings.TrimSpace(contacts[0].Profile.Name), ID: contacts[0].WaID}
	}
	return conversation.Profile{}
}
