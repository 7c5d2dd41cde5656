// Package intent describes how a query should be routed across corpus editions.
package intent

import "github.com/kailas-cloud/lexroute/internal/domain/corpus"

// Domain is a coarse fiscal-domain tag ("tva", "irpp", ...). Analytics only.
type Domain string

// Intent is the routing decision for one query.
type Intent struct {
	// TargetVersion is empty when the query is a comparison or the cues tie.
	TargetVersion corpus.Version
	IsComparison  bool
	// Domain is empty when no domain keyword matched.
	Domain      Domain
	Confidence  float64
	MatchedCues []string
	// Exclusive is set when a version-exclusive theme decided the route.
	Exclusive bool
}

// Undecided reports whether the caller must apply a fallback policy.
func (i Intent) Undecided() bool {
	return !i.IsComparison && i.TargetVersion.IsZero()
}
