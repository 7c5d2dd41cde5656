// Package routing evaluates direct mappings and contextual routing rules.
// A match overrides ranking: its article is pinned at rank 0.
package routing

import (
	"strings"

	"github.com/kailas-cloud/lexroute/internal/domain/ruleset"
	"github.com/kailas-cloud/lexroute/internal/domain/text"
)

// Kind says which table produced an override.
type Kind string

// Override kinds.
const (
	KindDirect     Kind = "direct"
	KindContextual Kind = "contextual"
)

// DirectBoost is the boost reported for direct mappings.
const DirectBoost = 1.0

// Override is a forced article.
type Override struct {
	ArticleID string
	Boost     float64
	RuleID    string
	Kind      Kind
}

// Evaluate returns the first direct mapping whose phrase occurs in query, or
// else the first contextual rule that fully matches. Declaration order across
// rulesets is precedence order.
func Evaluate(query string, sets []ruleset.Ruleset) (Override, bool) {
	q := text.Normalize(query)
	if q == "" {
		return Override{}, false
	}

	for _, rs := range sets {
		for _, d := range rs.Direct {
			if strings.Contains(q, d.Phrase) {
				return Override{
					ArticleID: d.Article,
					Boost:     DirectBoost,
					RuleID:    "direct:" + d.Phrase,
					Kind:      KindDirect,
				}, true
			}
		}
	}

	for _, rs := range sets {
		for _, r := range rs.Routing {
			if matches(q, r) {
				return Override{ArticleID: r.Article, Boost: r.Boost, RuleID: r.ID, Kind: KindContextual}, true
			}
		}
	}

	return Override{}, false
}

func matches(q string, r ruleset.RoutingRule) bool {
	if _, ok := text.ContainsAny(q, r.Required); !ok {
		return false
	}
	if len(r.Context) == 0 {
		return true
	}
	_, ok := text.ContainsAny(q, r.Context)
	return ok
}
