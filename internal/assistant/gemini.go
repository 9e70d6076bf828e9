package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiCall is one chat turn: model settings, prior history and the message to send.
type geminiCall struct {
	Model       string
	Temperature float32
	TopP        float32
	MaxTokens   int32
	System      string
	History     []*genai.Content
	Message     string
}

type geminiBackend interface {
	SendMessage(ctx context.Context, call geminiCall) (*genai.GenerateContentResponse, error)
	Close() error
}

// genaiBackend sends turns through the genai SDK.
type genaiBackend struct {
	client *genai.Client
}

func (b *genaiBackend) SendMessage(ctx context.Context, call geminiCall) (*genai.GenerateContentResponse, error) {
	model := b.client.GenerativeModel(call.Model)
	if call.Temperature >= 0 {
		model.SetTemperature(call.Temperature)
	}
	if call.TopP > 0 {
		model.SetTopP(call.TopP)
	}
	if call.MaxTokens > 0 {
		model.SetMaxOutputTokens(call.MaxTokens)
	}
	if call.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(call.System))
	}
	cs := model.StartChat()
	cs.History = call.History
	return cs.SendMessage(ctx, genai.Text(call.Message))
}

func (b *genaiBackend) Close() error {
	return b.client.Close()
}

// GeminiLLMClient implements LLMClient using Google's Gemini API.
type GeminiLLMClient struct {
	backend geminiBackend
	modelID string
}

// NewGeminiLLMClient creates a Gemini client. The model defaults to gemini-2.5-flash.
func NewGeminiLLMClient(ctx context.Context, apiKey, modelID string) (*GeminiLLMClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("assistant: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("assistant: create gemini client: %w", err)
	}
	return newGeminiLLMClient(&genaiBackend{client: client}, modelID), nil
}

func newGeminiLLMClient(backend geminiBackend, modelID string) *GeminiLLMClient {
	if backend == nil {
		panic("assistant: gemini backend cannot be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultGeminiModel
	}
	return &GeminiLLMClient{backend: backend, modelID: modelID}
}

// Complete uses req.Model when set, else the model chosen at construction.
func (c *GeminiLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if len(req.Messages) == 0 {
		return LLMResponse{}, errors.New("assistant: gemini requires at least one message")
	}

	call := geminiCall{
		Model:       c.modelID,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		System:      strings.TrimSpace(strings.Join(req.System, "\n\n")),
		History:     geminiHistory(req.Messages[:len(req.Messages)-1]),
		Message:     req.Messages[len(req.Messages)-1].Content,
	}
	if strings.TrimSpace(req.Model) != "" {
		call.Model = req.Model
	}

	resp, err := c.backend.SendMessage(ctx, call)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("assistant: gemini completion failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return LLMResponse{}, errors.New("assistant: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return LLMResponse{}, errors.New("assistant: gemini returned empty content")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	result := LLMResponse{
		Text:       strings.TrimSpace(text.String()),
		StopReason: candidate.FinishReason.String(),
	}
	if resp.UsageMetadata != nil {
		result.Usage = TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		}
	}
	return result, nil
}

// geminiHistory drops system and blank turns; Gemini calls the assistant "model".
func geminiHistory(messages []ChatMessage) []*genai.Content {
	var history []*genai.Content
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" || msg.Role == ChatRoleSystem {
			continue
		}
		role := "user"
		if msg.Role == ChatRoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(content)}})
	}
	return history
}

// Close releases the underlying client.
func (c *GeminiLLMClient) Close() error {
	if c.backend != nil {
		return c.backend.Close()
	}
	return nil
}
