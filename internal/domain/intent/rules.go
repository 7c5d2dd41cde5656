package intent

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/text"
)

// Confidence parameterizes the cue-count confidence curve:
// min(Cap, Base + Step*cues). Exclusive is reported for exclusive themes.
type Confidence struct {
	Base      float64
	Step      float64
	Cap       float64
	Exclusive float64
}

// DefaultConfidence is the curve used when none is configured.
var DefaultConfidence = Confidence{Base: 0.5, Step: 0.1, Cap: 0.9, Exclusive: 0.95}

// For returns the confidence for n matched cues.
func (c Confidence) For(n int) float64 {
	return math.Min(c.Cap, c.Base+c.Step*float64(n))
}

// DomainRule tags queries containing one of Keywords with Name.
type DomainRule struct {
	Name     Domain
	Keywords []string
}

// Rules holds every normalized phrase list the analyzer consults.
type Rules struct {
	Editions   corpus.Editions
	Exclusive  map[corpus.Version][]string
	Cues       map[corpus.Version][]string
	Comparison []string
	Domains    []DomainRule
	Labels     map[corpus.Version][]string
	Confidence Confidence
}

// NewRules normalizes phrase lists and checks that every keyed version is configured.
func NewRules(
	editions corpus.Editions,
	exclusive, cues map[corpus.Version][]string,
	comparison []string,
	domains []DomainRule,
	confidence Confidence,
) (Rules, error) {
	r := Rules{
		Editions:   editions,
		Exclusive:  make(map[corpus.Version][]string, 2),
		Cues:       make(map[corpus.Version][]string, 2),
		Comparison: text.NormalizeAll(comparison),
		Labels:     make(map[corpus.Version][]string, 2),
		Confidence: confidence,
	}

	for v, phrases := range exclusive {
		if !editions.Has(v) {
			return Rules{}, fmt.Errorf("exclusive themes for unknown version %q", v)
		}
		r.Exclusive[v] = text.NormalizeAll(phrases)
	}
	for v, phrases := range cues {
		if !editions.Has(v) {
			return Rules{}, fmt.Errorf("cues for unknown version %q", v)
		}
		r.Cues[v] = text.NormalizeAll(phrases)
	}
	for _, d := range domains {
		if d.Name == "" {
			return Rules{}, fmt.Errorf("domain rule without name")
		}
		r.Domains = append(r.Domains, DomainRule{Name: d.Name, Keywords: text.NormalizeAll(d.Keywords)})
	}
	for _, e := range []corpus.Edition{editions.Older, editions.Newer} {
		r.Labels[e.Version] = text.NormalizeAll(e.Labels)
	}

	if r.Confidence == (Confidence{}) {
		r.Confidence = DefaultConfidence
	}
	c := r.Confidence
	if c.Base < 0 || c.Step < 0 || c.Cap <= 0 || c.Cap > 1 || c.Exclusive <= 0 || c.Exclusive > 1 {
		return Rules{}, fmt.Errorf("confidence parameters out of range: %+v", c)
	}
	return r, nil
}
