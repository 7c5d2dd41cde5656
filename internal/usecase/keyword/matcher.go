// Package keyword matches queries against the keyword and synonym tables of
// a version's rulesets.
package keyword

import (
	"strings"

	"github.com/kailas-cloud/lexroute/internal/domain/ruleset"
	"github.com/kailas-cloud/lexroute/internal/domain/text"
)

// Scores of the two matching passes.
const (
	DirectScore  = 1.0
	SynonymScore = 0.9
)

// DefaultLimit caps the number of matches when none is configured.
const DefaultLimit = 5

// Match is a candidate article found through the lexical tables.
type Match struct {
	ArticleID string
	Score     float64
}

// Matcher is stateless apart from its cap and safe for concurrent use.
type Matcher struct {
	limit int
}

// New creates a matcher returning at most limit matches.
func New(limit int) *Matcher {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Matcher{limit: limit}
}

// Match returns candidate articles in discovery order: keyword hits first,
// then hits reached through a synonym. An article found twice keeps its
// first position and its best score.
func (m *Matcher) Match(query string, sets []ruleset.Ruleset) []Match {
	q := text.Normalize(query)
	if q == "" {
		return nil
	}

	acc := newAccumulator()

	for _, rs := range sets {
		for _, kw := range rs.Keywords {
			if strings.Contains(q, kw.Phrase) {
				acc.addAll(kw.Articles, DirectScore)
			}
		}
	}

	for _, rs := range sets {
		for _, syn := range rs.Synonyms {
			if _, ok := text.ContainsAny(q, syn.Alternatives); !ok {
				continue
			}
			acc.addAll(lookup(sets, syn.Canonical), SynonymScore)
		}
	}

	out := acc.matches
	if len(out) > m.limit {
		out = out[:m.limit]
	}
	return out
}

// lookup returns the article ids of every keyword rule whose phrase equals
// canonical, across rulesets in order.
func lookup(sets []ruleset.Ruleset, canonical string) []string {
	var ids []string
	for _, rs := range sets {
		for _, kw := range rs.Keywords {
			if kw.Phrase == canonical {
				ids = append(ids, kw.Articles...)
			}
		}
	}
	return ids
}

type accumulator struct {
	matches []Match
	index   map[string]int
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[string]int)}
}

func (a *accumulator) addAll(ids []string, score float64) {
	for _, id := range ids {
		if i, ok := a.index[id]; ok {
			a.matches[i].Score = max(a.matches[i].Score, score)
			continue
		}
		a.index[id] = len(a.matches)
		a.matches = append(a.matches, Match{ArticleID: id, Score: score})
	}
}
