// Package rescache caches vector search results keyed by a fingerprint of the
// query embedding. Reads are synchronous; writes are handed to a bounded
// worker pool so a slow cache never adds latency to a search.
package rescache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/db"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
)

const (
	errorBuffer  = 64
	writeTimeout = 2 * time.Second
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config tunes the cache.
type Config struct {
	KeyPrefix string
	TTL       time.Duration
	PrefixLen int // vector components hashed into the key
	Workers   int
}

// Cache is the asynchronous result cache.
type Cache struct {
	store       store
	cfg         Config
	pool        *ants.Pool
	wg          sync.WaitGroup
	errs        chan error
	cacheTotal  *prometheus.CounterVec
	writeErrors prometheus.Counter
	logger      *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics sets the hit/miss counter (label "result") and write error counter.
func WithMetrics(cacheTotal *prometheus.CounterVec, writeErrors prometheus.Counter) Option {
	return func(c *Cache) {
		c.cacheTotal = cacheTotal
		c.writeErrors = writeErrors
	}
}

// WithLogger sets the logger. Default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cache with a writer pool of cfg.Workers goroutines.
func New(s store, cfg Config, opts ...Option) (*Cache, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.PrefixLen < 1 {
		return nil, fmt.Errorf("prefix length must be positive, got %d", cfg.PrefixLen)
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create cache writer pool: %w", err)
	}

	c := &Cache{
		store:  s,
		cfg:    cfg,
		pool:   pool,
		errs:   make(chan error, errorBuffer),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Key fingerprints a search: the first PrefixLen vector components, the
// limit and the version. Identical queries on the same model collide here.
func (c *Cache) Key(vector []float32, limit int, version corpus.Version) string {
	n := min(c.cfg.PrefixLen, len(vector))

	h := sha256.New()
	var buf [4]byte
	for _, f := range vector[:n] {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
		h.Write(buf[:])
	}
	fmt.Fprintf(h, "|%d|%s", limit, version)

	return c.cfg.KeyPrefix + "search_cache:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached results for key. Store errors and corrupt entries
// count as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]result.Result, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read result cache", zap.String("key", key), zap.Error(err))
		}
		c.inc("miss")
		return nil, false
	}

	results, err := decodeResults(data)
	if err != nil {
		c.logger.Warn("Failed to decode result cache entry", zap.String("key", key), zap.Error(err))
		c.inc("miss")
		return nil, false
	}

	c.inc("hit")
	return results, true
}

// PutAsync schedules a write of results under key. It never blocks: when the
// pool is saturated or closed the write is dropped and reported on Errors.
func (c *Cache) PutAsync(key string, results []result.Result) {
	data, err := encodeResults(results)
	if err != nil {
		c.report(fmt.Errorf("cache %s: %w", key, err))
		return
	}

	c.wg.Add(1)
	err = c.pool.Submit(func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := c.store.SetWithTTL(ctx, key, data, c.cfg.TTL); err != nil {
			c.report(fmt.Errorf("cache %s: %w", key, err))
		}
	})
	if err != nil {
		c.wg.Done()
		c.report(fmt.Errorf("cache %s: submit: %w", key, err))
	}
}

// Errors exposes failed writes. The channel is buffered; when nobody drains
// it, further errors are only logged and counted.
func (c *Cache) Errors() <-chan error {
	return c.errs
}

// Wait blocks until every scheduled write has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close waits for pending writes and releases the pool.
func (c *Cache) Close() {
	c.Wait()
	c.pool.Release()
}

func (c *Cache) report(err error) {
	if c.writeErrors != nil {
		c.writeErrors.Inc()
	}
	c.logger.Warn("Result cache write failed", zap.Error(err))
	select {
	case c.errs <- err:
	default:
	}
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
