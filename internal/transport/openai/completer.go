package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/metrics"
)

// CompletionOptions tunes generation.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// Completer is a chat completion provider using the OpenAI-compatible API.
type Completer struct {
	client   *openai.Client
	model    string
	user     string
	provider string
	opts     CompletionOptions
	logger   *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *Config, opts CompletionOptions) *Completer {
	return &Completer{
		client:   newClient(cfg),
		model:    cfg.Model,
		user:     cfg.User,
		provider: cfg.Provider,
		opts:     opts,
		logger:   loggerOrNop(cfg.Logger),
	}
}

// Complete implements domain.Completer: system prompt, prior turns, then the query.
func (c *Completer) Complete(
	ctx context.Context, systemPrompt string, history []domain.Message, query string,
) (string, error) {
	res, err := c.CompleteWithUsage(ctx, systemPrompt, history, query)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// CompleteWithUsage is Complete plus the token usage reported by the provider.
func (c *Completer) CompleteWithUsage(
	ctx context.Context, systemPrompt string, history []domain.Message, query string,
) (domain.Completion, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: query})

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		User:        c.user,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return domain.Completion{}, parseAPIError("completion", err, domain.ErrCompletionProviderError)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return domain.Completion{}, fmt.Errorf("empty completion response: %w", domain.ErrCompletionProviderError)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	c.logger.Debug("Completion generated",
		zap.String("model", c.model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration),
	)
	return domain.Completion{
		Text:        resp.Choices[0].Message.Content,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability.
func (c *Completer) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, c.client)
}
