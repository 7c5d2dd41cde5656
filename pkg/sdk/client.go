package lexroute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/app"
	"github.com/kailas-cloud/lexroute/internal/config"
	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	answeruc "github.com/kailas-cloud/lexroute/internal/usecase/answer"
	intentuc "github.com/kailas-cloud/lexroute/internal/usecase/intent"
)

// Internal interfaces, swapped for fakes in tests.
type answerUseCase interface {
	Route(ctx context.Context, query string) (intentuc.Decision, error)
	Search(ctx context.Context, query string, version corpus.Version, limit int) (answeruc.SearchResult, error)
	Ask(ctx context.Context, query string, history []domain.Message) (answeruc.Answer, error)
}

// Message is one prior conversation turn passed to Ask.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Client is the lexroute SDK entry point.
type Client struct {
	answers answerUseCase
	health  healthUseCase
	usage   usageUseCase
	closeFn func()
	obs     *observer
}

// New connects to the corpus index and the providers and loads the rule table.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	appCfg, err := cfg.toConfig()
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	a, err := app.Build(ctx, appCfg, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("lexroute: %w", err)
	}

	return &Client{
		answers: a.Answers,
		health:  a.Health,
		usage:   a.Usage,
		closeFn: a.Close,
		obs:     obs,
	}, nil
}

// toConfig maps options onto the service configuration.
func (c *clientConfig) toConfig() (config.Config, error) {
	if len(c.addrs) == 0 {
		return config.Config{}, errors.New("lexroute: database address required (use WithRedis)")
	}
	if c.older == "" || c.newer == "" {
		return config.Config{}, errors.New("lexroute: both editions required (use WithEditions)")
	}

	var cfg config.Config
	// The SDK serves no HTTP; the port only satisfies validation.
	cfg.HTTP.Port = 8080
	cfg.Database.Addrs = c.addrs
	cfg.Database.Password = c.password
	cfg.Corpus.Older.Version = c.older
	cfg.Corpus.Newer.Version = c.newer
	cfg.Corpus.RulesDir = c.rulesDir
	cfg.Corpus.Fallback.Cutoff = c.cutoff
	cfg.Embedding.BaseURL = c.embedding.baseURL
	cfg.Embedding.APIKey = c.embedding.apiKey
	cfg.Embedding.Model = c.embedding.model
	cfg.Embedding.Dimensions = c.dimensions
	cfg.Completion.BaseURL = c.completion.baseURL
	cfg.Completion.APIKey = c.completion.apiKey
	cfg.Completion.Model = c.completion.model
	cfg.Completion.SystemPrompt = c.systemPrompt
	cfg.Completion.ComparisonPrompt = c.comparisonPrompt

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("lexroute: %w", err)
	}
	return cfg, nil
}

// Close flushes pending cache writes and releases the database client.
func (c *Client) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

// Route decides which editions a query targets without retrieving anything.
func (c *Client) Route(ctx context.Context, query string) (_ Decision, err error) {
	start := time.Now()
	defer func() { c.obs.observe("route", start, err) }()

	d, err := c.answers.Route(ctx, query)
	if err != nil {
		return Decision{}, fmt.Errorf("route: %w", err)
	}
	return fromDecision(d), nil
}

// Search ranks provisions of one edition. An empty version lets the router pick it.
func (c *Client) Search(ctx context.Context, query, version string, limit int) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "version", version) }()

	res, err := c.answers.Search(ctx, query, corpus.Version(version), limit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return fromSearch(res), nil
}

// Ask answers a question with citations, comparing both editions when the
// question calls for it.
func (c *Client) Ask(ctx context.Context, query string, history ...Message) (_ Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	msgs := make([]domain.Message, len(history))
	for i, m := range history {
		msgs[i] = domain.Message{Role: domain.Role(m.Role), Content: m.Content}
	}

	ans, err := c.answers.Ask(ctx, query, msgs)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return fromAnswer(ans), nil
}
