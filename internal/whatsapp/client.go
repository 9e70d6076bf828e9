// Package whatsapp talks to the WhatsApp Cloud (Graph) API: it sends outbound
// messages and turns inbound webhook payloads into conversation events.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

var whatsappTracer = otel.Tracer("medpet.internal.whatsapp")

const (
	messagingProduct = "whatsapp"
	maxButtonTitle   = 20
	maxErrorBody     = 8192
)

// ClientConfig configures the Graph API client.
type ClientConfig struct {
	// MessagesURL is the full {base}/{version}/{phone-id}/messages endpoint.
	MessagesURL string
	Token       string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client sends messages through the Graph API messages endpoint.
type Client struct {
	messagesURL string
	token       string
	httpClient  *http.Client
	logger      *logging.Logger
}

// NewClient builds a Graph API client.
func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		messagesURL: cfg.MessagesURL,
		token:       cfg.Token,
		httpClient:  httpClient,
		logger:      logger,
	}
}

var _ conversation.Gateway = (*Client)(nil)

// APIError is a non-2xx answer from the Graph API.
type APIError struct {
	Status  int
	Code    int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("whatsapp: graph api status %d", e.Status)
	}
	return fmt.Sprintf("whatsapp: graph api status %d: %s (code %d, %s)", e.Status, e.Message, e.Code, e.Type)
}

type textPayload struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type,omitempty"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             textBody     `json:"text"`
	Context          *replyTarget `json:"context,omitempty"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

type replyTarget struct {
	MessageID string `json:"message_id"`
}

// SendText sends a plain text message, optionally quoting replyTo.
func (c *Client) SendText(ctx context.Context, to, body, replyTo string) error {
	if strings.TrimSpace(body) == "" {
		return errors.New("whatsapp: body required")
	}
	payload := textPayload{
		MessagingProduct: messagingProduct,
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}
	if replyTo != "" {
		payload.Context = &replyTarget{MessageID: replyTo}
	}
	return c.post(ctx, "send_text", to, payload)
}

type interactivePayload struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Interactive      interactive `json:"interactive"`
}

type interactive struct {
	Type   string            `json:"type"`
	Body   interactiveBody   `json:"body"`
	Action interactiveAction `json:"action"`
}

type interactiveBody struct {
	Text string `json:"text"`
}

type interactiveAction struct {
	Buttons []replyButton `json:"buttons"`
}

type replyButton struct {
	Type  string     `json:"type"`
	Reply replyTitle `json:"reply"`
}

type replyTitle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SendButtons sends an interactive reply-button message with up to three buttons.
func (c *Client) SendButtons(ctx context.Context, to, body string, buttons []conversation.Button) error {
	if len(buttons) == 0 {
		return errors.New("whatsapp: at least one button required")
	}
	if len(buttons) > conversation.MaxButtons {
		return fmt.Errorf("whatsapp: %d buttons exceeds limit of %d", len(buttons), conversation.MaxButtons)
	}
	replies := make([]replyButton, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, replyButton{
			Type:  "reply",
			Reply: replyTitle{ID: b.ID, Title: truncateRunes(b.Title, maxButtonTitle)},
		})
	}
	payload := interactivePayload{
		MessagingProduct: messagingProduct,
		To:               to,
		Type:             "interactive",
		Interactive: interactive{
			Type:   "button",
			Body:   interactiveBody{Text: body},
			Action: interactiveAction{Buttons: replies},
		},
	}
	return c.post(ctx, "send_buttons", to, payload)
}

type mediaObject struct {
	Link     string `json:"link"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// SendMedia sends an image, audio, video or document by link.
func (c *Client) SendMedia(ctx context.Context, to string, media conversation.Media) error {
	obj := mediaObject{Link: media.URL}
	switch media.Kind {
	case conversation.MediaImage, conversation.MediaVideo:
		obj.Caption = media.Caption
	case conversation.MediaDocument:
		obj.Caption = media.Caption
		obj.Filename = media.Filename
	case conversation.MediaAudio:
		// audio messages do not accept captions
	default:
		return fmt.Errorf("%w: %s", conversation.ErrUnsupportedMedia, media.Kind)
	}
	if media.URL == "" {
		return errors.New("whatsapp: media link required")
	}
	payload := map[string]interface{}{
		"messaging_product": messagingProduct,
		"to":                to,
		"type":              string(media.Kind),
		string(media.Kind):  obj,
	}
	return c.post(ctx, "send_media", to, payload)
}

type contactName struct {
	FormattedName string `json:"formatted_name"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
}

type contactOrg struct {
	Company string `json:"company,omitempty"`
}

type contactPhone struct {
	Phone string `json:"phone"`
	WaID  string `json:"wa_id,omitempty"`
	Type  string `json:"type,omitempty"`
}

type contactEmail struct {
	Email string `json:"email"`
	Type  string `json:"type,omitempty"`
}

type contactURL struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

type contactCard struct {
	Name   contactName    `json:"name"`
	Org    *contactOrg    `json:"org,omitempty"`
	Phones []contactPhone `json:"phones,omitempty"`
	Emails []contactEmail `json:"emails,omitempty"`
	URLs   []contactURL   `json:"urls,omitempty"`
}

// SendContactCard shares a single contact.
func (c *Client) SendContactCard(ctx context.Context, to string, contact conversation.Contact) error {
	if strings.TrimSpace(contact.FormattedName) == "" {
		return errors.New("whatsapp: contact formatted name required")
	}
	card := contactCard{
		Name: contactName{
			FormattedName: contact.FormattedName,
			FirstName:     contact.FirstName,
			LastName:      contact.LastName,
		},
	}
	if contact.Organization != "" {
		card.Org = &contactOrg{Company: contact.Organization}
	}
	for _, p := range contact.Phones {
		card.Phones = append(card.Phones, contactPhone{Phone: p.Phone, WaID: p.WaID, Type: p.Type})
	}
	for _, e := range contact.Emails {
		card.Emails = append(card.Emails, contactEmail{Email: e.Email, Type: e.Type})
	}
	for _, u := range contact.URLs {
		card.URLs = append(card.URLs, contactURL{URL: u.URL, Type: u.Type})
	}
	payload := map[string]interface{}{
		"messaging_product": messagingProduct,
		"to":                to,
		"type":              "contacts",
		"contacts":          []contactCard{card},
	}
	return c.post(ctx, "send_contact", to, payload)
}

type readPayload struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// MarkRead acknowledges an inbound message so it shows as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	if messageID == "" {
		return errors.New("whatsapp: message id required")
	}
	return c.post(ctx, "mark_read", "", readPayload{
		MessagingProduct: messagingProduct,
		Status:           "read",
		MessageID:        messageID,
	})
}

func (c *Client) post(ctx context.Context, op, to string, payload interface{}) error {
	if c.messagesURL == "" {
		return errors.New("whatsapp: messages url missing")
	}
	if c.token == "" {
		return errors.New("whatsapp: graph api token missing")
	}

	ctx, span := whatsappTracer.Start(ctx, "whatsapp.graph."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("medpet.op", op))
	if to != "" {
		span.SetAttributes(recipientAttr(to))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: marshal %s payload: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.messagesURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("whatsapp: %s request: %w", op, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("whatsapp message posted", "op", op, "to", to)
		return nil
	}
	apiErr := parseAPIError(resp.StatusCode, respBody)
	span.RecordError(apiErr)
	span.SetStatus(codes.Error, apiErr.Error())
	return apiErr
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		apiErr.Message = parsed.Error.Message
		apiErr.Type = parsed.Error.Type
		apiErr.Code = parsed.Error.Code
	}
	return apiErr
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// recipientAttr tags a span with the destination number, masked like in logs.
func recipientAttr(to string) attribute.KeyValue {
	return attribute.String("medpet.to", logging.MaskPhone(to))
}
