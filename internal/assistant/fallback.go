package assistant

import (
	"context"

	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// FallbackLLMClient wraps a primary LLM client with an optional fallback provider.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *logging.Logger
}

// NewFallbackLLMClient returns primary unchanged when fallback is nil.
func NewFallbackLLMClient(primary, fallback LLMClient, logger *logging.Logger) LLMClient {
	if primary == nil {
		panic("assistant: primary llm client cannot be nil")
	}
	if fallback == nil {
		return primary
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{primary: primary, fallback: fallback, logger: logger}
}

func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}
	c.logger.Warn("primary llm failed, attempting fallback", "error", err)

	resp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback llm also failed", "primary_error", err, "fallback_error", fallbackErr)
		return LLMResponse{}, fallbackErr
	}
	c.logger.Info("fallback llm succeeded after primary failure")
	return resp, nil
}
