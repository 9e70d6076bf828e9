package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
	observemetrics "github.com/wolfman30/medpet-whatsapp-bot/internal/observability/metrics"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/whatsapp"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

const (
	processedProvider = "whatsapp"
	maxWebhookBody    = 1 << 20
)

var webhookTracer = otel.Tracer("medpet.internal.http.handlers.whatsapp")

type conversationEngine interface {
	Handle(ctx context.Context, evt conversation.Event, profile conversation.Profile)
}

type processedTracker interface {
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// WhatsAppWebhookHandler serves the Cloud API webhook: the GET verification
// handshake and POST notifications.
type WhatsAppWebhookHandler struct {
	engine      conversationEngine
	processed   processedTracker
	verifyToken string
	appSecret   string
	metrics     *observemetrics.BotMetrics
	logger      *logging.Logger
}

type WhatsAppWebhookConfig struct {
	Engine      conversationEngine
	Processed   processedTracker
	VerifyToken string
	// AppSecret enables X-Hub-Signature-256 checks when set.
	AppSecret string
	Metrics   *observemetrics.BotMetrics
	Logger    *logging.Logger
}

func NewWhatsAppWebhookHandler(cfg WhatsAppWebhookConfig) *WhatsAppWebhookHandler {
	if cfg.Engine == nil {
		panic("handlers: conversation engine required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &WhatsAppWebhookHandler{
		engine:      cfg.Engine,
		processed:   cfg.Processed,
		verifyToken: cfg.VerifyToken,
		appSecret:   cfg.AppSecret,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// Verify answers the subscription handshake by echoing hub.challenge.
func (h *WhatsAppWebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		h.logger.Warn("webhook verification rejected", "mode", mode)
		w.WriteHeader(http.StatusForbidden)
		return
	}
	h.logger.Info("webhook verified successfully")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, q.Get("hub.challenge"))
}

// HandleMessages acknowledges every notification with 200 once it has been
// handled. Only a bad signature is rejected.
func (h *WhatsAppWebhookHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := webhookTracer.Start(r.Context(), "whatsapp.webhook")
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	if h.appSecret != "" {
		if err := whatsapp.VerifySignature(h.appSecret, body, r.Header.Get(whatsapp.SignatureHeader)); err != nil {
			h.logger.Warn("invalid whatsapp webhook signature", "error", err)
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	notification, err := whatsapp.ParseWebhook(body)
	if err != nil {
		h.logger.Warn("ignoring malformed webhook payload", "error", err)
		h.metrics.ObserveInbound("unknown", "malformed")
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, st := range notification.Statuses {
		h.metrics.ObserveReceipt(st.Status)
		if st.ErrorCode != 0 {
			h.logger.Warn("whatsapp delivery failed", "message_id", st.MessageID, "status", st.Status, "code", st.ErrorCode, "title", st.ErrorTitle)
			continue
		}
		h.logger.Debug("whatsapp delivery status", "message_id", st.MessageID, "status", st.Status)
	}

	msg := notification.Message
	if msg == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	span.SetAttributes(
		attribute.String("medpet.message_type", msg.Type),
		attribute.String("medpet.message_id", msg.Event.MessageID()),
	)

	if h.isDuplicate(ctx, msg.Event.MessageID()) {
		h.logger.Info("duplicate whatsapp message ignored", "message_id", msg.Event.MessageID())
		h.metrics.ObserveInbound(msg.Type, "duplicate")
		w.WriteHeader(http.StatusOK)
		return
	}

	// The reply flow must finish even if Meta drops the connection.
	h.engine.Handle(context.WithoutCancel(ctx), msg.Event, msg.Profile)

	h.metrics.ObserveInbound(msg.Type, "handled")
	h.metrics.ObserveWebhookLatency(msg.Type, time.Since(start).Seconds())
	w.WriteHeader(http.StatusOK)
}

// isDuplicate fails open: a tracker error lets the message through.
func (h *WhatsAppWebhookHandler) isDuplicate(ctx context.Context, messageID string) bool {
	if h.processed == nil || messageID == "" {
		return false
	}
	first, err := h.processed.MarkProcessed(ctx, processedProvider, messageID)
	if err != nil {
		h.logger.Error("processed tracker failed", "error", err, "message_id", messageID)
		return false
	}
	return !first
}
