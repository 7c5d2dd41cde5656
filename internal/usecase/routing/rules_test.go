package routing

import (
	"testing"

	"github.com/kailas-cloud/lexroute/internal/domain/ruleset"
)

func mustRuleset(t *testing.T, domain string, direct []ruleset.DirectMapping, rules []ruleset.RoutingRule) ruleset.Ruleset {
	t.Helper()
	rs, err := ruleset.New(domain, "2025", nil, nil, direct, rules, nil)
	if err != nil {
		t.Fatalf("ruleset: %v", err)
	}
	return rs
}

func TestEvaluate_DirectMapping(t *testing.T) {
	rs := mustRuleset(t, "irpp", []ruleset.DirectMapping{{Phrase: "22%", Article: "ART_X"}}, nil)

	o, ok := Evaluate("What is the 22% rate for non-residents?", []ruleset.Ruleset{rs})
	if !ok {
		t.Fatal("expected override")
	}
	if o.ArticleID != "ART_X" || o.Boost != DirectBoost || o.RuleID != "direct:22%" || o.Kind != KindDirect {
		t.Errorf("unexpected override %+v", o)
	}
}

func TestEvaluate_DirectShortCircuitsContextual(t *testing.T) {
	rs := mustRuleset(t, "x",
		[]ruleset.DirectMapping{{Phrase: "plus-value", Article: "D"}},
		[]ruleset.RoutingRule{{ID: "r1", Required: []string{"plus-value"}, Article: "R", Boost: 0.5}},
	)
	o, ok := Evaluate("plus-value immobiliere", []ruleset.Ruleset{rs})
	if !ok || o.ArticleID != "D" {
		t.Errorf("expected direct mapping to win, got %+v", o)
	}
}

func TestEvaluate_DirectDeclarationOrderAcrossRulesets(t *testing.T) {
	a := mustRuleset(t, "a", []ruleset.DirectMapping{{Phrase: "taux", Article: "A"}}, nil)
	b := mustRuleset(t, "b", []ruleset.DirectMapping{{Phrase: "taux reduit", Article: "B"}}, nil)
	o, _ := Evaluate("taux reduit", []ruleset.Ruleset{a, b})
	if o.ArticleID != "A" {
		t.Errorf("expected first declared mapping, got %q", o.ArticleID)
	}
}

func TestEvaluate_ContextualRule(t *testing.T) {
	rs := mustRuleset(t, "tva", nil, []ruleset.RoutingRule{
		{ID: "needs-context", Required: []string{"export"}, Context: []string{"tva"}, Article: "131", Boost: 0.5},
		{ID: "no-context", Required: []string{"export"}, Article: "900", Boost: 0.2},
	})

	tests := []struct {
		query string
		want  string
	}{
		{"TVA à l'export", "needs-context"},
		{"droits de douane à l'export", "no-context"},
	}
	for _, tc := range tests {
		o, ok := Evaluate(tc.query, []ruleset.Ruleset{rs})
		if !ok || o.RuleID != tc.want {
			t.Errorf("%q: expected rule %s, got %+v", tc.query, tc.want, o)
		}
		if o.Kind != KindContextual {
			t.Errorf("%q: expected contextual kind", tc.query)
		}
	}
}

func TestEvaluate_RequiredIsOr(t *testing.T) {
	rs := mustRuleset(t, "irpp", nil, []ruleset.RoutingRule{
		{ID: "r", Required: []string{"salaire", "traitement"}, Context: []string{"retenue", "prelevement"}, Article: "65", Boost: 0.4},
	})
	o, ok := Evaluate("prélèvement sur traitement", []ruleset.Ruleset{rs})
	if !ok || o.ArticleID != "65" || o.Boost != 0.4 {
		t.Errorf("unexpected override %+v", o)
	}
	if _, ok := Evaluate("salaire minimum", []ruleset.Ruleset{rs}); ok {
		t.Error("context phrase missing, rule must not fire")
	}
}

func TestEvaluate_NoMatch(t *testing.T) {
	rs := mustRuleset(t, "x", []ruleset.DirectMapping{{Phrase: "22%", Article: "X"}}, nil)
	if _, ok := Evaluate("droits d'enregistrement", []ruleset.Ruleset{rs}); ok {
		t.Error("expected no override")
	}
	if _, ok := Evaluate("", []ruleset.Ruleset{rs}); ok {
		t.Error("expected no override for empty query")
	}
}
