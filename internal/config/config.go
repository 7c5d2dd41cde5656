package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the lexroute service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Search     SearchConfig     `yaml:"search"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxQueryLength  int `yaml:"max_query_length"`
}

// DatabaseConfig holds Redis / Valkey connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	IndexName        string   `yaml:"index_name"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding provider settings.
type EmbeddingConfig struct {
	Provider         string       `yaml:"provider"` // metrics label (default: openai)
	APIKey           string       `yaml:"api_key"`
	BaseURL          string       `yaml:"base_url"`
	Model            string       `yaml:"model"`
	Dimensions       int          `yaml:"dimensions"`
	QueryInstruction string       `yaml:"query_instruction"`
	CacheTTLSec      int          `yaml:"cache_ttl_sec"`
	Budget           BudgetConfig `yaml:"budget"`
}

// CacheTTL returns the embedding cache TTL.
func (e EmbeddingConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLSec) * time.Second
}

// BudgetConfig caps provider token usage. Zero limits mean unlimited.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"`
	Action            string `yaml:"action"` // "warn" (default) or "reject"
}

// CompletionConfig holds the chat completion provider settings.
type CompletionConfig struct {
	Provider         string       `yaml:"provider"`
	APIKey           string       `yaml:"api_key"`
	BaseURL          string       `yaml:"base_url"`
	Model            string       `yaml:"model"`
	Temperature      float32      `yaml:"temperature"`
	MaxTokens        int          `yaml:"max_tokens"`
	SystemPrompt     string       `yaml:"system_prompt"`
	ComparisonPrompt string       `yaml:"comparison_prompt"`
	Budget           BudgetConfig `yaml:"budget"`
}

// EditionConfig describes one corpus partition.
type EditionConfig struct {
	Version string   `yaml:"version"`
	Labels  []string `yaml:"labels"`
}

// FallbackConfig drives the version chosen when intent cues tie.
type FallbackConfig struct {
	// Cutoff is an RFC 3339 date; queries before it go to the older edition.
	Cutoff string `yaml:"cutoff"`
}

// CorpusConfig declares the two editions and where their rule tables live.
type CorpusConfig struct {
	Older    EditionConfig  `yaml:"older"`
	Newer    EditionConfig  `yaml:"newer"`
	Fallback FallbackConfig `yaml:"fallback"`
	RulesDir string         `yaml:"rules_dir"`
}

// SearchConfig holds retrieval tuning.
type SearchConfig struct {
	KeywordLimit    int     `yaml:"keyword_limit"`
	VectorThreshold float64 `yaml:"vector_threshold"`
	CacheTTLSec     int     `yaml:"cache_ttl_sec"`
	CachePrefixLen  int     `yaml:"cache_prefix_len"`
	SlowThresholdMs int     `yaml:"slow_threshold_ms"`
	DefaultLimit    int     `yaml:"default_limit"`
	MaxLimit        int     `yaml:"max_limit"`
	CacheWorkers    int     `yaml:"cache_workers"`
}

// CacheTTL returns the result cache TTL.
func (s SearchConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSec) * time.Second
}

// SlowThreshold returns the latency above which a search is reported as slow.
func (s SearchConfig) SlowThreshold() time.Duration {
	return time.Duration(s.SlowThresholdMs) * time.Millisecond
}

// StorageConfig holds key layout settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes raw YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60 // answers wait on completion providers
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxQueryLength <= 0 {
		c.HTTP.MaxQueryLength = 2000
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.IndexName == "" {
		c.Database.IndexName = "lexroute:articles"
	}
	if c.Completion.MaxTokens <= 0 {
		c.Completion.MaxTokens = 1024
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Completion.Provider == "" {
		c.Completion.Provider = "openai"
	}
	if c.Embedding.CacheTTLSec <= 0 {
		c.Embedding.CacheTTLSec = 7 * 24 * 3600
	}
	if c.Embedding.Budget.Action == "" {
		c.Embedding.Budget.Action = "warn"
	}
	if c.Completion.Budget.Action == "" {
		c.Completion.Budget.Action = "warn"
	}
	if c.Corpus.RulesDir == "" {
		c.Corpus.RulesDir = "rules"
	}
	if c.Search.KeywordLimit <= 0 {
		c.Search.KeywordLimit = 5
	}
	if c.Search.VectorThreshold <= 0 {
		c.Search.VectorThreshold = 0.7
	}
	if c.Search.CacheTTLSec <= 0 {
		c.Search.CacheTTLSec = 3600
	}
	if c.Search.CachePrefixLen <= 0 {
		c.Search.CachePrefixLen = 16
	}
	if c.Search.SlowThresholdMs <= 0 {
		c.Search.SlowThresholdMs = 500
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 50
	}
	if c.Search.CacheWorkers <= 0 {
		c.Search.CacheWorkers = 4
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "lexroute:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Corpus.Older.Version == "" || c.Corpus.Newer.Version == "" {
		return fmt.Errorf("corpus.older.version and corpus.newer.version are required")
	}
	if c.Corpus.Older.Version == c.Corpus.Newer.Version {
		return fmt.Errorf("corpus editions must differ, both are %q", c.Corpus.Older.Version)
	}
	if c.Corpus.Fallback.Cutoff != "" {
		if _, err := c.Corpus.FallbackCutoff(); err != nil {
			return fmt.Errorf("corpus.fallback.cutoff: %w", err)
		}
	}
	if err := c.Embedding.Budget.validate("embedding.budget"); err != nil {
		return err
	}
	if err := c.Completion.Budget.validate("completion.budget"); err != nil {
		return err
	}
	if c.Search.VectorThreshold > 1 {
		return fmt.Errorf("search.vector_threshold must be in (0, 1], got %g", c.Search.VectorThreshold)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit %d exceeds search.max_limit %d",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	return nil
}

func (b BudgetConfig) validate(path string) error {
	if b.Action != "warn" && b.Action != "reject" {
		return fmt.Errorf("%s.action must be warn or reject, got %q", path, b.Action)
	}
	if b.DailyTokenLimit < 0 || b.MonthlyTokenLimit < 0 {
		return fmt.Errorf("%s limits must not be negative", path)
	}
	return nil
}

// FallbackCutoff parses the cutoff date. A zero time means "always newer".
func (c CorpusConfig) FallbackCutoff() (time.Time, error) {
	if c.Fallback.Cutoff == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, c.Fallback.Cutoff); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, c.Fallback.Cutoff)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
