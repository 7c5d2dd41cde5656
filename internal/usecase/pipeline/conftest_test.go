package pipeline

import (
	"context"
	"testing"

	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/ruleset"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
)

var testEditions = corpus.Editions{
	Older: corpus.Edition{Version: "2013"},
	Newer: corpus.Edition{Version: "2025"},
}

type mockVector struct {
	hits     []result.Result
	calls    int
	lastV    corpus.Version
	lastSize int
}

func (m *mockVector) Search(_ context.Context, _ string, limit int, v corpus.Version) []result.Result {
	m.calls++
	m.lastV, m.lastSize = v, limit
	return m.hits
}

type mockArticles struct {
	records map[string]article.Article
	err     error
	lastIDs []string
}

func (m *mockArticles) GetMany(_ context.Context, _ corpus.Version, ids []string) (map[string]article.Article, error) {
	m.lastIDs = ids
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func prio(p int) *int { return &p }

// irppCatalog holds one 2025 ruleset with a "22%" direct mapping and a
// keyword table for non-residents.
func irppCatalog(t *testing.T) *ruleset.Catalog {
	t.Helper()
	rs, err := ruleset.New("irpp", "2025",
		[]ruleset.KeywordRule{{Phrase: "non-residents", Articles: []string{"412", "65"}}},
		nil,
		[]ruleset.DirectMapping{{Phrase: "22%", Article: "ART_X"}},
		nil,
		[]article.Metadata{
			{ID: "ART_X", Numero: "197 A", Title: "Retenue a la source", Priority: prio(5), Type: article.TypeCalculation},
			{ID: "412", Priority: prio(10)},
			{ID: "65", Priority: prio(20), Type: article.TypeProcedure},
		},
	)
	if err != nil {
		t.Fatalf("ruleset: %v", err)
	}
	c, err := ruleset.NewCatalog(testEditions, []ruleset.Ruleset{rs})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}
