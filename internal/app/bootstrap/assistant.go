package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/assistant"
	appconfig "github.com/wolfman30/medpet-whatsapp-bot/internal/config"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// Assistant providers accepted in ASSISTANT_PROVIDER / ASSISTANT_FALLBACK_PROVIDER.
const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
	ProviderNone    = "none"
)

// BuildAssistant wires the question-answering service. It returns nil when the
// assistant is disabled; the conversation engine then answers with its fallback text.
func BuildAssistant(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (*assistant.Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.AssistantProvider == "" || cfg.AssistantProvider == ProviderNone {
		logger.Warn("assistant disabled; questions get the fallback reply")
		return nil, nil
	}

	primary, err := buildLLMClient(ctx, cfg.AssistantProvider, cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	var fallback assistant.LLMClient
	if p := cfg.AssistantFallbackProvider; p != "" && p != ProviderNone && p != cfg.AssistantProvider {
		fallback, err = buildLLMClient(ctx, p, cfg, awsCfg)
		if err != nil {
			logger.Warn("fallback assistant provider unavailable", "provider", p, "error", err)
			fallback = nil
		}
	}

	logger.Info("assistant enabled", "provider", cfg.AssistantProvider, "fallback", cfg.AssistantFallbackProvider)
	return assistant.NewService(assistant.NewFallbackLLMClient(primary, fallback, logger), assistant.Options{}, logger), nil
}

func buildLLMClient(ctx context.Context, provider string, cfg *appconfig.Config, awsCfg aws.Config) (assistant.LLMClient, error) {
	switch provider {
	case ProviderOpenAI:
		return assistant.NewOpenAILLMClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case ProviderBedrock:
		if cfg.BedrockModelID == "" {
			return nil, fmt.Errorf("bootstrap: BEDROCK_MODEL_ID required for bedrock assistant")
		}
		return assistant.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil
	case ProviderGemini:
		return assistant.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("bootstrap: unknown assistant provider %q", provider)
	}
}
