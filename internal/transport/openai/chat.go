package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nomadmatch/nomadmatch/internal/domain"
	"github.com/nomadmatch/nomadmatch/internal/metrics"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 500
)

// ChatClient is a chat-completion provider using the OpenAI-compatible API.
type ChatClient struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat provider. Model comes
// from Config.ChatModel when set.
func NewChatClient(cfg *Config, model string) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Complete implements advice.ChatCompleter.
func (c *ChatClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return "", fmt.Errorf("chat completion: %w", domain.ErrAdviceProviderError)
	}
	if len(resp.Choices) == 0 {
		metrics.ChatRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrAdviceProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	c.logger.Debug("chat completion served",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}
