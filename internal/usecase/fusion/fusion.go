// Package fusion merges the lexical, routing and vector signals of one
// version into a single ranked list. It is a pure function of its inputs.
package fusion

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
	"github.com/kailas-cloud/lexroute/internal/usecase/keyword"
	"github.com/kailas-cloud/lexroute/internal/usecase/routing"
)

// PinnedScore is the score reported for an article forced by a routing override.
const PinnedScore = 1.0

// Fuse ranks the union of keyword matches and vector results.
//
// Keyword matches seed the list; a vector hit on the same article upgrades it
// to "both" with the higher score. An override pins its article at rank 0.
// Everything else is ordered by editorial priority, then type, then match
// kind, then score, then id. Rule-table metadata wins over stored fields.
// When limit > 0 the output holds at most limit entries and keeps every
// keyword-bearing entry that fits.
func Fuse(
	matches []keyword.Match,
	vector []result.Result,
	override *routing.Override,
	meta article.MetadataIndex,
	limit int,
) []result.Result {
	entries := make([]result.Result, 0, len(matches)+len(vector)+1)
	index := make(map[string]int, cap(entries))

	for _, m := range matches {
		if _, dup := index[m.ArticleID]; dup {
			continue
		}
		prio, typ := resolve(meta, m.ArticleID, nil)
		index[m.ArticleID] = len(entries)
		entries = append(entries, result.New(m.ArticleID, m.Score, result.Keyword, prio, typ))
	}

	for i := range vector {
		v := &vector[i]
		if at, ok := index[v.ArticleID()]; ok {
			existing := entries[at]
			prio, typ := resolve(meta, v.ArticleID(), v)
			entries[at] = result.New(v.ArticleID(), max(existing.Score(), v.Score()), result.Both, prio, typ)
			continue
		}
		prio, typ := resolve(meta, v.ArticleID(), v)
		index[v.ArticleID()] = len(entries)
		entries = append(entries, result.New(v.ArticleID(), v.Score(), result.Vector, prio, typ))
	}

	var pinned *result.Result
	if override != nil && override.ArticleID != "" {
		p := pin(entries, index, *override, meta)
		pinned = &p
		if at, ok := index[override.ArticleID]; ok {
			entries = slices.Delete(entries, at, at+1)
		}
	}

	slices.SortStableFunc(entries, compare)

	budget := -1
	if limit > 0 {
		budget = limit
		if pinned != nil {
			budget--
		}
	}
	entries = truncate(entries, budget)

	if pinned == nil {
		return entries
	}
	return append([]result.Result{*pinned}, entries...)
}

func pin(entries []result.Result, index map[string]int, o routing.Override, meta article.MetadataIndex) result.Result {
	if at, ok := index[o.ArticleID]; ok {
		return entries[at].WithScore(PinnedScore).WithPin(o.RuleID)
	}
	prio, typ := resolve(meta, o.ArticleID, nil)
	return result.New(o.ArticleID, PinnedScore, result.Keyword, prio, typ).WithPin(o.RuleID)
}

// resolve picks editorial metadata: the rule tables first, then the fields
// stored with a vector hit, then defaults.
func resolve(meta article.MetadataIndex, id string, stored *result.Result) (int, article.Type) {
	if m, ok := meta[id]; ok {
		return m.EffectivePriority(), m.EffectiveType()
	}
	if stored != nil {
		return stored.Priority(), stored.Type()
	}
	m := meta.Lookup(id)
	return m.EffectivePriority(), m.EffectiveType()
}

// compare is the total ranking order.
func compare(a, b result.Result) int {
	return cmp.Or(
		cmp.Compare(a.Priority(), b.Priority()),
		cmp.Compare(a.Type().Rank(), b.Type().Rank()),
		cmp.Compare(a.Kind().Rank(), b.Kind().Rank()),
		cmp.Compare(b.Score(), a.Score()),
		cmp.Compare(a.ArticleID(), b.ArticleID()),
	)
}

// truncate keeps at most budget sorted entries (all when budget < 0),
// reserving room for keyword-bearing entries before vector-only ones.
func truncate(sorted []result.Result, budget int) []result.Result {
	if budget < 0 || len(sorted) <= budget {
		return sorted
	}

	kept := make([]result.Result, 0, budget)
	taken := make([]bool, len(sorted))
	for i := range sorted {
		if len(kept) == budget {
			break
		}
		if sorted[i].Kind() != result.Vector {
			kept = append(kept, sorted[i])
			taken[i] = true
		}
	}
	for i := range sorted {
		if len(kept) == budget {
			break
		}
		if !taken[i] {
			kept = append(kept, sorted[i])
		}
	}

	slices.SortStableFunc(kept, compare)
	return kept
}
