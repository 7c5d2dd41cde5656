package result

import "github.com/kailas-cloud/lexroute/internal/domain/article"

// MatchKind is the provenance of a search hit.
type MatchKind string

// Match kinds.
const (
	Keyword MatchKind = "keyword"
	Vector  MatchKind = "vector"
	Both    MatchKind = "both"
)

// IsValid checks if the kind is one of the supported values.
func (k MatchKind) IsValid() bool {
	return k == Keyword || k == Vector || k == Both
}

// Rank orders kinds for ranking ties: lexical evidence before pure similarity.
func (k MatchKind) Rank() int {
	if k == Vector {
		return 1
	}
	return 0
}

// Result is a single ranked provision.
type Result struct {
	articleID string
	score     float64
	kind      MatchKind
	priority  int
	typ       article.Type
	ruleID    string
	pinned    bool
}

// New creates a search result.
func New(articleID string, score float64, kind MatchKind, priority int, typ article.Type) Result {
	return Result{
		articleID: articleID, score: score, kind: kind,
		priority: priority, typ: typ,
	}
}

// ArticleID returns the canonical article identifier.
func (r *Result) ArticleID() string { return r.articleID }

// Score returns the relevance score in [0, 1].
func (r *Result) Score() float64 { return r.score }

// Kind returns the match provenance.
func (r *Result) Kind() MatchKind { return r.kind }

// Priority returns the editorial priority (lower is more authoritative).
func (r *Result) Priority() int { return r.priority }

// Type returns the semantic article type.
func (r *Result) Type() article.Type { return r.typ }

// RuleID returns the routing rule that pinned this result, if any.
func (r *Result) RuleID() string { return r.ruleID }

// Pinned reports whether a routing rule forced this result to rank 0.
func (r *Result) Pinned() bool { return r.pinned }

// WithScore returns a copy with a different score.
func (r Result) WithScore(score float64) Result {
	r.score = score
	return r
}

// WithKind returns a copy with a different match kind.
func (r Result) WithKind(kind MatchKind) Result {
	r.kind = kind
	return r
}

// WithPin returns a copy marked as forced by ruleID.
func (r Result) WithPin(ruleID string) Result {
	r.pinned = true
	r.ruleID = ruleID
	return r
}

// Restore rebuilds a result from its serialized form.
func Restore(
	articleID string, score float64, kind MatchKind,
	priority int, typ article.Type, ruleID string, pinned bool,
) Result {
	return Result{
		articleID: articleID, score: score, kind: kind,
		priority: priority, typ: typ, ruleID: ruleID, pinned: pinned,
	}
}
