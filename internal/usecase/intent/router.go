package intent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	domintent "github.com/kailas-cloud/lexroute/internal/domain/intent"
	"github.com/kailas-cloud/lexroute/internal/logger"
	"github.com/kailas-cloud/lexroute/internal/metrics"
)

// Decision reasons, also used as metric labels.
const (
	ReasonExclusive  = "exclusive"
	ReasonComparison = "comparison"
	ReasonCues       = "cues"
	ReasonFallback   = "fallback"
)

// FallbackPolicy picks a version when the analyzer cannot decide.
type FallbackPolicy interface {
	Version() corpus.Version
}

// CutoffPolicy targets the older edition before Cutoff and the newer one from then on.
type CutoffPolicy struct {
	editions corpus.Editions
	cutoff   time.Time
	now      func() time.Time
}

// NewCutoffPolicy creates a cutoff policy. now defaults to time.Now.
func NewCutoffPolicy(editions corpus.Editions, cutoff time.Time, now func() time.Time) *CutoffPolicy {
	if now == nil {
		now = time.Now
	}
	return &CutoffPolicy{editions: editions, cutoff: cutoff, now: now}
}

// Version returns the edition in force at the current time.
func (p *CutoffPolicy) Version() corpus.Version {
	if p.now().Before(p.cutoff) {
		return p.editions.Older.Version
	}
	return p.editions.Newer.Version
}

// Decision is a resolved routing decision.
type Decision struct {
	Intent domintent.Intent
	// Versions lists the editions to query: one, or both (older first) for a comparison.
	Versions []corpus.Version
	Reason   string
}

// Router combines the analyzer with a fallback policy.
type Router struct {
	analyzer *Analyzer
	editions corpus.Editions
	fallback FallbackPolicy
}

// NewRouter creates a router.
func NewRouter(analyzer *Analyzer, editions corpus.Editions, fallback FallbackPolicy) *Router {
	return &Router{analyzer: analyzer, editions: editions, fallback: fallback}
}

// Route analyzes query and resolves undecided intents with the fallback policy.
func (r *Router) Route(ctx context.Context, query string) Decision {
	in := r.analyzer.Analyze(query)

	d := Decision{Intent: in}
	switch {
	case in.IsComparison:
		d.Versions = r.editions.Versions()
		d.Reason = ReasonComparison
	case in.Exclusive:
		d.Versions = []corpus.Version{in.TargetVersion}
		d.Reason = ReasonExclusive
	case in.Undecided():
		d.Versions = []corpus.Version{r.fallback.Version()}
		d.Reason = ReasonFallback
	default:
		d.Versions = []corpus.Version{in.TargetVersion}
		d.Reason = ReasonCues
	}

	label := "both"
	if len(d.Versions) == 1 {
		label = string(d.Versions[0])
	}
	metrics.IntentDecisionsTotal.WithLabelValues(label, d.Reason).Inc()
	if in.Domain != "" {
		metrics.IntentDomainTotal.WithLabelValues(string(in.Domain)).Inc()
	}

	logger.FromContext(ctx).Debug("Intent routed",
		zap.String("version", label),
		zap.String("reason", d.Reason),
		zap.String("domain", string(in.Domain)),
		zap.Float64("confidence", in.Confidence),
		zap.Strings("cues", in.MatchedCues),
	)
	return d
}
