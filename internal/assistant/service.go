package assistant

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// DefaultSystemPrompt frames the clinic assistant.
const DefaultSystemPrompt = "Eres un asistente útil de la clínica veterinaria MedPet. " +
	"Responde en español de forma breve y clara. " +
	"No des diagnósticos definitivos; recomienda una consulta presencial cuando sea necesario."

var assistantTracer = otel.Tracer("medpet.internal.assistant")

// Options tunes a Service. An empty Model lets each provider client use its own.
type Options struct {
	Model        string
	SystemPrompt string
	MaxTokens    int32
	Temperature  float32
}

// Service answers one question per call with no conversation memory.
type Service struct {
	client LLMClient
	opts   Options
	logger *logging.Logger
}

// NewService wraps an LLM client.
func NewService(client LLMClient, opts Options, logger *logging.Logger) *Service {
	if client == nil {
		panic("assistant: llm client cannot be nil")
	}
	opts.Model = strings.TrimSpace(opts.Model)
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	if opts.Temperature == 0 {
		opts.Temperature = -1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, opts: opts, logger: logger}
}

var _ conversation.Assistant = (*Service)(nil)

// Ask returns the model's answer to question. An empty string with a nil
// error means the model had nothing to say.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	ctx, span := assistantTracer.Start(ctx, "assistant.ask")
	defer span.End()
	span.SetAttributes(attribute.String("medpet.model", s.opts.Model))

	resp, err := s.client.Complete(ctx, LLMRequest{
		Model:       s.opts.Model,
		System:      []string{s.opts.SystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: question}},
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(
		attribute.Int("medpet.tokens.input", int(resp.Usage.InputTokens)),
		attribute.Int("medpet.tokens.output", int(resp.Usage.OutputTokens)),
	)
	s.logger.Debug("assistant answered", "model", s.opts.Model, "stop_reason", resp.StopReason, "total_tokens", resp.Usage.TotalTokens)
	return strings.TrimSpace(resp.Text), nil
}
