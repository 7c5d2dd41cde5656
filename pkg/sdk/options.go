package lexroute

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type provider struct {
	baseURL string
	apiKey  string
	model   string
}

type clientConfig struct {
	addrs    []string
	password string

	older, newer string
	rulesDir     string
	cutoff       string

	embedding  provider
	dimensions int
	completion provider

	systemPrompt     string
	comparisonPrompt string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the Redis Stack / Valkey search node holding the corpus.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEditions names the older and newer corpus versions.
func WithEditions(older, newer string) Option {
	return optionFunc(func(c *clientConfig) {
		c.older = older
		c.newer = newer
	})
}

// WithRules sets the rule table directory. Default: "rules".
func WithRules(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.rulesDir = dir
	})
}

// WithFallbackCutoff sets the date (YYYY-MM-DD) before which undecided
// queries go to the older edition. Default: always the newer edition.
func WithFallbackCutoff(date string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cutoff = date
	})
}

// WithEmbedding configures the OpenAI-compatible embedding provider.
func WithEmbedding(baseURL, apiKey, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedding = provider{baseURL: baseURL, apiKey: apiKey, model: model}
		c.dimensions = dimensions
	})
}

// WithCompletion configures the OpenAI-compatible chat completion provider.
func WithCompletion(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.completion = provider{baseURL: baseURL, apiKey: apiKey, model: model}
	})
}

// WithPrompts overrides the answer and comparison system prompts.
func WithPrompts(system, comparison string) Option {
	return optionFunc(func(c *clientConfig) {
		c.systemPrompt = system
		c.comparisonPrompt = comparison
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
