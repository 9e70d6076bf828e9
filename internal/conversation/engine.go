package conversation

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

var engineTracer = otel.Tracer("medpet.internal.conversation.engine")

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Gateway   Gateway
	Assistant Assistant
	Ledger    Ledger
	Sessions  SessionStore
	Observer  Observer
	Media     MediaCatalog
	Clinic    *Clinic
	Logger    *logging.Logger
}

// Engine advances per-user conversations for inbound chat events.
// Events for the same user are handled one at a time.
type Engine struct {
	gateway   Gateway
	assistant Assistant
	ledger    Ledger
	sessions  SessionStore
	observer  Observer
	media     MediaCatalog
	clinic    Clinic
	logger    *logging.Logger
	locks     *keyedMutex
}

// NewEngine builds an Engine. Gateway, Ledger and Sessions are required.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Gateway == nil {
		panic("conversation: gateway cannot be nil")
	}
	if cfg.Ledger == nil {
		panic("conversation: ledger cannot be nil")
	}
	if cfg.Sessions == nil {
		panic("conversation: session store cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Media == nil {
		cfg.Media = DefaultMediaCatalog()
	}
	clinic := DefaultClinic()
	if cfg.Clinic != nil {
		clinic = *cfg.Clinic
	}
	return &Engine{
		gateway:   cfg.Gateway,
		assistant: cfg.Assistant,
		ledger:    cfg.Ledger,
		sessions:  cfg.Sessions,
		observer:  cfg.Observer,
		media:     cfg.Media,
		clinic:    clinic,
		logger:    cfg.Logger,
		locks:     newKeyedMutex(),
	}
}

// Handle processes one inbound event to completion. It never fails: downstream
// errors are logged and reported to the Observer.
func (e *Engine) Handle(ctx context.Context, evt Event, profile Profile) {
	if evt == nil {
		return
	}
	to := NormalizeUserID(evt.Sender())
	if to == "" {
		e.logger.Warn("dropping event without sender", "message_id", evt.MessageID())
		return
	}

	ctx, span := engineTracer.Start(ctx, "conversation.handle")
	defer span.End()
	span.SetAttributes(
		recipientAttr(to),
		attribute.String("medpet.message_id", evt.MessageID()),
	)

	unlock := e.locks.Lock(to)
	defer unlock()

	switch ev := evt.(type) {
	case TextEvent:
		e.handleText(ctx, to, ev, profile)
		e.markRead(ctx, to, ev.ID)
	case InteractiveEvent:
		e.handleInteractive(ctx, to, ev)
		e.markRead(ctx, to, ev.ID)
	case OtherEvent:
		e.logger.Debug("ignoring unsupported message type", "type", ev.Type, "to", to, "message_id", ev.ID)
	default:
		e.logger.Warn("ignoring unknown event", "to", to, "message_id", evt.MessageID())
	}
}

func (e *Engine) handleText(ctx context.Context, to string, ev TextEvent, profile Profile) {
	if session, ok := e.sessions.Get(to); ok {
		switch session.Kind {
		case KindAssistant:
			e.runAssistant(ctx, to, ev.Body)
			return
		case KindAppointment:
			e.advanceAppointment(ctx, to, session, ev.Body)
			return
		}
	}

	normalized := strings.ToLower(strings.TrimSpace(ev.Body))
	if isGreeting(normalized) {
		e.sendText(ctx, to, welcomeText(profile.Greeting(ev.From)), ev.ID)
		e.sendButtons(ctx, to, msgMenuPrompt, menuButtons)
		return
	}
	if kind, ok := mediaKeywords[normalized]; ok {
		e.sendMedia(ctx, to, kind)
		return
	}
	e.sendText(ctx, to, echoPrefix+ev.Body, ev.ID)
}

func (e *Engine) handleInteractive(ctx context.Context, to string, ev InteractiveEvent) {
	option := ev.Selected.Option()
	if session, ok := e.sessions.Get(to); ok && session.Kind == KindAppointment && session.Step == StepConfirm {
		e.confirmAppointment(ctx, to, session, option)
		return
	}
	e.handleMenuOption(ctx, to, option)
}

// recipientAttr tags a span with the user's number, masked like in logs.
func recipientAttr(to string) attribute.KeyValue {
	return attribute.String("medpet.to", logging.MaskPhone(to))
}

func isGreeting(text string) bool {
	if text == "" {
		return false
	}
	for _, phrase := range greetingPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func (e *Engine) sendText(ctx context.Context, to, body, replyTo string) {
	e.report(OpSendText, to, e.gateway.SendText(ctx, to, body, replyTo))
}

func (e *Engine) sendButtons(ctx context.Context, to, body string, buttons []Button) {
	e.report(OpSendButtons, to, e.gateway.SendButtons(ctx, to, body, buttons))
}

func (e *Engine) sendMedia(ctx context.Context, to string, kind MediaKind) {
	media, err := e.media.Lookup(kind)
	if err != nil {
		e.report(OpSendMedia, to, err)
		return
	}
	e.report(OpSendMedia, to, e.gateway.SendMedia(ctx, to, media))
}

func (e *Engine) sendContact(ctx context.Context, to string, contact Contact) {
	e.report(OpSendContact, to, e.gateway.SendContactCard(ctx, to, contact))
}

func (e *Engine) markRead(ctx context.Context, to, messageID string) {
	if messageID == "" {
		return
	}
	e.report(OpMarkRead, to, e.gateway.MarkRead(ctx, messageID))
}

func (e *Engine) report(op, to string, err error) {
	if e.observer != nil {
		e.observer.ObserveDelivery(op, err)
	}
	if err != nil {
		e.logger.Error("downstream call failed", "op", op, "to", to, "error", err)
	}
}
