// Package app is the composition root shared by the lexroute server and the
// lexctl operator CLI.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/config"
	dbredis "github.com/kailas-cloud/lexroute/internal/db/redis"
	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/metrics"
	"github.com/kailas-cloud/lexroute/internal/repository/articles"
	budgetrepo "github.com/kailas-cloud/lexroute/internal/repository/budget"
	"github.com/kailas-cloud/lexroute/internal/repository/embcache"
	"github.com/kailas-cloud/lexroute/internal/repository/rescache"
	"github.com/kailas-cloud/lexroute/internal/repository/vectorstore"
	"github.com/kailas-cloud/lexroute/internal/rules"
	chitransport "github.com/kailas-cloud/lexroute/internal/transport/chi"
	openaitransport "github.com/kailas-cloud/lexroute/internal/transport/openai"
	answeruc "github.com/kailas-cloud/lexroute/internal/usecase/answer"
	budgetuc "github.com/kailas-cloud/lexroute/internal/usecase/budget"
	healthuc "github.com/kailas-cloud/lexroute/internal/usecase/health"
	intentuc "github.com/kailas-cloud/lexroute/internal/usecase/intent"
	"github.com/kailas-cloud/lexroute/internal/usecase/keyword"
	"github.com/kailas-cloud/lexroute/internal/usecase/pipeline"
	usageuc "github.com/kailas-cloud/lexroute/internal/usecase/usage"
	"github.com/kailas-cloud/lexroute/internal/usecase/vector"
)

const (
	dailyBudgetTTL   = 48 * time.Hour
	monthlyBudgetTTL = 62 * 24 * time.Hour
)

// Offline is the part of the engine that needs no network: editions, rule
// tables, the keyword matcher and the intent router.
type Offline struct {
	Editions corpus.Editions
	Rules    rules.Bundle
	Matcher  *keyword.Matcher
	Router   *intentuc.Router
}

// LoadOffline validates the corpus configuration and loads the rule tables.
func LoadOffline(cfg config.Config) (*Offline, error) {
	editions, err := corpus.NewEditions(
		corpus.Edition{Version: corpus.Version(cfg.Corpus.Older.Version), Labels: cfg.Corpus.Older.Labels},
		corpus.Edition{Version: corpus.Version(cfg.Corpus.Newer.Version), Labels: cfg.Corpus.Newer.Labels},
	)
	if err != nil {
		return nil, fmt.Errorf("corpus editions: %w", err)
	}

	bundle, err := rules.Load(cfg.Corpus.RulesDir, editions)
	if err != nil {
		return nil, fmt.Errorf("load rules from %s: %w", cfg.Corpus.RulesDir, err)
	}

	cutoff, err := cfg.Corpus.FallbackCutoff()
	if err != nil {
		return nil, fmt.Errorf("fallback cutoff: %w", err)
	}
	router := intentuc.NewRouter(
		intentuc.NewAnalyzer(bundle.Intent),
		editions,
		intentuc.NewCutoffPolicy(editions, cutoff, nil),
	)

	return &Offline{
		Editions: editions,
		Rules:    bundle,
		Matcher:  keyword.New(cfg.Search.KeywordLimit),
		Router:   router,
	}, nil
}

// Lexical returns a retrieval pipeline that runs keyword matching, routing
// rules and fusion without the vector signal or article store.
func (o *Offline) Lexical() *pipeline.Service {
	return pipeline.New(o.Editions, o.Rules.Catalog, o.Matcher, nil, nil)
}

// App is the fully wired engine.
type App struct {
	*Offline

	cfg      config.Config
	store    *dbredis.Store
	cache    *rescache.Cache
	Pipeline *pipeline.Service
	Answers  *answeruc.Service
	Health   *healthuc.Service
	Usage    *usageuc.Service
	logger   *zap.Logger
}

// Build connects to Redis and the providers and wires every service.
// The caller owns the returned App and must Close it.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	offline, err := LoadOffline(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Rules loaded",
		zap.Int("rulesets", offline.Rules.Catalog.Count()),
		zap.String("older", string(offline.Editions.Older.Version)),
		zap.String("newer", string(offline.Editions.Newer.Version)),
	)

	metrics.Register()

	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	budgetStore := budgetrepo.New(store, dailyBudgetTTL, monthlyBudgetTTL)
	embBudget := newTracker(ctx, budgetuc.KindEmbedding, cfg.Storage.KeyPrefix, cfg.Embedding.Budget, budgetStore, logger)
	compBudget := newTracker(ctx, budgetuc.KindCompletion, cfg.Storage.KeyPrefix, cfg.Completion.Budget, budgetStore, logger)

	baseEmbedder := openaitransport.NewEmbedder(&openaitransport.Config{
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
		Provider: cfg.Embedding.Provider,
		Logger:   logger,
	}, cfg.Embedding.Dimensions)
	embedder := buildEmbedder(baseEmbedder, cfg, store, embBudget, logger)

	cache, err := rescache.New(store, rescache.Config{
		KeyPrefix: cfg.Storage.KeyPrefix,
		TTL:       cfg.Search.CacheTTL(),
		PrefixLen: cfg.Search.CachePrefixLen,
		Workers:   cfg.Search.CacheWorkers,
	},
		rescache.WithMetrics(metrics.ResultCacheTotal, metrics.ResultCacheWriteErrorsTotal),
		rescache.WithLogger(logger),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create result cache: %w", err)
	}

	vectorSvc := vector.New(
		embedder,
		vectorstore.New(store, cfg.Database.IndexName, cfg.Storage.KeyPrefix),
		cache,
		vector.Config{Threshold: cfg.Search.VectorThreshold, SlowThreshold: cfg.Search.SlowThreshold()},
	)
	pipelineSvc := pipeline.New(
		offline.Editions,
		offline.Rules.Catalog,
		offline.Matcher,
		vectorSvc,
		articles.New(store, cfg.Storage.KeyPrefix),
	)

	baseCompleter := openaitransport.NewCompleter(&openaitransport.Config{
		APIKey:   cfg.Completion.APIKey,
		BaseURL:  cfg.Completion.BaseURL,
		Model:    cfg.Completion.Model,
		Provider: cfg.Completion.Provider,
		Logger:   logger,
	}, openaitransport.CompletionOptions{
		Temperature: cfg.Completion.Temperature,
		MaxTokens:   cfg.Completion.MaxTokens,
	})
	completer := budgetuc.NewGuardedCompleter(baseCompleter, cfg.Completion.Model, compBudget, logger)

	answers := answeruc.New(offline.Router, pipelineSvc, completer, answeruc.Config{
		SystemPrompt:     cfg.Completion.SystemPrompt,
		ComparisonPrompt: cfg.Completion.ComparisonPrompt,
		Limit:            cfg.Search.DefaultLimit,
		MaxQueryLength:   cfg.HTTP.MaxQueryLength,
	})

	return &App{
		Offline:  offline,
		cfg:      cfg,
		store:    store,
		cache:    cache,
		Pipeline: pipelineSvc,
		Answers:  answers,
		Health:   healthuc.New(store, baseEmbedder, baseCompleter),
		Usage:    usageuc.New(embBudget, compBudget),
		logger:   logger,
	}, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	server := chitransport.NewServer(a.Answers, a.Health, a.Usage, a.cfg.Search.MaxLimit, a.logger)
	return chitransport.NewRouter(server, a.logger)
}

// Close flushes pending cache writes and releases the database client.
func (a *App) Close() {
	a.cache.Close()
	a.store.Close()
}

func newTracker(
	ctx context.Context, kind, prefix string, cfg config.BudgetConfig, store budgetuc.Store, logger *zap.Logger,
) *budgetuc.Tracker {
	action := budgetuc.ActionWarn
	if cfg.Action == string(budgetuc.ActionReject) {
		action = budgetuc.ActionReject
	}
	return budgetuc.NewTracker(kind, prefix, budgetuc.Limits{
		Daily:   cfg.DailyTokenLimit,
		Monthly: cfg.MonthlyTokenLimit,
		Action:  action,
	}, budgetuc.WithLogger(logger)).WithStore(ctx, store)
}

// buildEmbedder assembles the decorator chain: OpenAI -> Guarded -> Cached -> Instruction.
// The cache sits outside the budget so hits consume nothing.
func buildEmbedder(
	base domain.Embedder, cfg config.Config, store *dbredis.Store, budget *budgetuc.Tracker, logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = budgetuc.NewGuardedEmbedder(base, cfg.Embedding.Model, budget, logger)

	embedder = embcache.New(
		embedder, store,
		cfg.Storage.KeyPrefix, cfg.Embedding.Model, cfg.Embedding.CacheTTL(),
		metrics.EmbeddingCacheTotal, logger,
	)

	// Outermost: the cache key includes the instruction.
	if cfg.Embedding.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}
	return embedder
}
