// Package intent decides which corpus edition a query targets and whether it
// asks for a cross-version comparison. Misrouting is worse than asking the
// caller's fallback policy, so ties stay undecided.
package intent

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	domintent "github.com/kailas-cloud/lexroute/internal/domain/intent"
	"github.com/kailas-cloud/lexroute/internal/domain/text"
)

// Analyzer classifies queries with the static cue tables. It holds no
// mutable state and is safe for concurrent use.
type Analyzer struct {
	rules domintent.Rules
}

// NewAnalyzer creates an analyzer over normalized rules.
func NewAnalyzer(rules domintent.Rules) *Analyzer {
	return &Analyzer{rules: rules}
}

// Analyze returns the intent of query. TargetVersion is empty for
// comparisons and for ties, including queries with no cue at all.
func (a *Analyzer) Analyze(query string) domintent.Intent {
	q := text.Normalize(query)
	versions := a.rules.Editions.Versions()

	in := domintent.Intent{Domain: a.domain(q)}

	for _, v := range versions {
		if cue, ok := text.ContainsAny(q, a.rules.Exclusive[v]); ok {
			in.TargetVersion = v
			in.Exclusive = true
			in.Confidence = a.rules.Confidence.Exclusive
			in.MatchedCues = []string{cue}
			return in
		}
	}

	scores := make(map[corpus.Version]int, len(versions))
	labelled := 0
	for _, v := range versions {
		cues := matchAll(q, a.rules.Cues[v])
		labels := matchAll(q, a.rules.Labels[v])
		if len(labels) > 0 {
			labelled++
		}
		scores[v] = len(cues) + len(labels)
		in.MatchedCues = append(in.MatchedCues, cues...)
		in.MatchedCues = append(in.MatchedCues, labels...)
	}

	comparison := matchAll(q, a.rules.Comparison)
	in.MatchedCues = append(in.MatchedCues, comparison...)
	in.Confidence = a.rules.Confidence.For(len(in.MatchedCues))

	if len(comparison) > 0 || labelled == len(versions) {
		in.IsComparison = true
		return in
	}

	older, newer := versions[0], versions[1]
	switch {
	case scores[older] > scores[newer]:
		in.TargetVersion = older
	case scores[newer] > scores[older]:
		in.TargetVersion = newer
	}
	return in
}

func (a *Analyzer) domain(q string) domintent.Domain {
	for _, d := range a.rules.Domains {
		if _, ok := text.ContainsAny(q, d.Keywords); ok {
			return d.Name
		}
	}
	return ""
}

// matchAll returns every phrase occurring in q, without duplicates.
func matchAll(q string, phrases []string) []string {
	var out []string
	for _, p := range phrases {
		if p != "" && strings.Contains(q, p) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
