package intent

import (
	"testing"

	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
)

func editions(t *testing.T) corpus.Editions {
	t.Helper()
	e, err := corpus.NewEditions(
		corpus.Edition{Version: "2013", Labels: []string{"CGI 2013"}},
		corpus.Edition{Version: "2025", Labels: []string{"CGI 2025"}},
	)
	if err != nil {
		t.Fatalf("editions: %v", err)
	}
	return e
}

func TestIntent_Undecided(t *testing.T) {
	if !(Intent{}).Undecided() {
		t.Error("zero intent should be undecided")
	}
	if (Intent{IsComparison: true}).Undecided() {
		t.Error("comparison is a decision")
	}
	if (Intent{TargetVersion: "2025"}).Undecided() {
		t.Error("targeted intent is decided")
	}
}

func TestConfidence_For(t *testing.T) {
	c := DefaultConfidence
	tests := []struct {
		n    int
		want float64
	}{
		{0, 0.5},
		{1, 0.6},
		{3, 0.8},
		{4, 0.9},
		{12, 0.9},
	}
	for _, tc := range tests {
		if got := c.For(tc.n); got < tc.want-1e-9 || got > tc.want+1e-9 {
			t.Errorf("For(%d) = %g, want %g", tc.n, got, tc.want)
		}
	}
}

func TestNewRules_Normalizes(t *testing.T) {
	r, err := NewRules(editions(t),
		map[corpus.Version][]string{"2025": {"Taxe  Numérique"}},
		nil,
		[]string{"Différence"},
		[]DomainRule{{Name: "tva", Keywords: []string{"TVA"}}},
		Confidence{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Exclusive["2025"][0] != "taxe numerique" {
		t.Errorf("exclusive not normalized: %q", r.Exclusive["2025"][0])
	}
	if r.Comparison[0] != "difference" {
		t.Errorf("comparison not normalized: %q", r.Comparison[0])
	}
	if r.Labels["2013"][0] != "cgi 2013" {
		t.Errorf("labels not normalized: %v", r.Labels)
	}
	if r.Confidence != DefaultConfidence {
		t.Errorf("expected default confidence, got %+v", r.Confidence)
	}
}

func TestNewRules_UnknownVersion(t *testing.T) {
	_, err := NewRules(editions(t), map[corpus.Version][]string{"1999": {"x"}}, nil, nil, nil, Confidence{})
	if err == nil {
		t.Fatal("expected error for unknown version")
	}
}

func TestNewRules_BadConfidence(t *testing.T) {
	_, err := NewRules(editions(t), nil, nil, nil, nil, Confidence{Base: 0.5, Step: 0.1, Cap: 1.5, Exclusive: 0.95})
	if err == nil {
		t.Fatal("expected error for cap > 1")
	}
}
