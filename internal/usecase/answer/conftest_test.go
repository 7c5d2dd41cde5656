package answer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	domintent "github.com/kailas-cloud/lexroute/internal/domain/intent"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
	"github.com/kailas-cloud/lexroute/internal/usecase/intent"
	"github.com/kailas-cloud/lexroute/internal/usecase/pipeline"
)

type mockRouter struct {
	decision intent.Decision
	calls    int
}

func (m *mockRouter) Route(_ context.Context, _ string) intent.Decision {
	m.calls++
	return m.decision
}

func single(v corpus.Version) intent.Decision {
	return intent.Decision{
		Intent:   domintent.Intent{TargetVersion: v, Confidence: 0.6},
		Versions: []corpus.Version{v},
		Reason:   intent.ReasonCues,
	}
}

func comparison() intent.Decision {
	return intent.Decision{
		Intent:   domintent.Intent{IsComparison: true, Confidence: 0.6},
		Versions: []corpus.Version{"2013", "2025"},
		Reason:   intent.ReasonComparison,
	}
}

// mockRetriever returns one article per version, named after the version.
type mockRetriever struct {
	mu       sync.Mutex
	fail     map[corpus.Version]error
	versions []corpus.Version
	limits   []int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, v corpus.Version, limit int) (pipeline.Retrieval, error) {
	m.mu.Lock()
	m.versions = append(m.versions, v)
	m.limits = append(m.limits, limit)
	m.mu.Unlock()
	if err := m.fail[v]; err != nil {
		return pipeline.Retrieval{}, err
	}
	return pipeline.Retrieval{
		Version: v,
		Results: []result.Result{result.New("A-"+string(v), 0.9, result.Vector, 1, article.TypeDefinition)},
	}, nil
}

func (m *mockRetriever) Evidence(_ context.Context, r pipeline.Retrieval) []pipeline.Evidence {
	out := make([]pipeline.Evidence, len(r.Results))
	for i, res := range r.Results {
		out[i] = pipeline.Evidence{
			Result:   res,
			Article:  article.Article{ID: res.ArticleID(), Ref: article.Ref{Numero: res.ArticleID(), Version: r.Version}, Body: "body " + string(r.Version)},
			Resolved: true,
		}
	}
	return out
}

type completion struct {
	system string
	query  string
}

// mockCompleter answers "answer(<edition>)" based on the sources in the
// system prompt, and "synthesis" for the comparison prompt.
type mockCompleter struct {
	mu         sync.Mutex
	calls      []completion
	failOn     string
	failAlways bool
}

var errProvider = errors.New("provider down")

func (m *mockCompleter) Complete(_ context.Context, system string, _ []domain.Message, query string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, completion{system: system, query: query})
	m.mu.Unlock()

	if m.failAlways || (m.failOn != "" && strings.Contains(system+query, m.failOn)) {
		return "", errProvider
	}
	if system == testComparisonPrompt {
		return "synthesis", nil
	}
	for _, v := range []string{"2013", "2025"} {
		if strings.Contains(system, "Sources ("+v+")") {
			return "answer(" + v + ")", nil
		}
	}
	return "answer", nil
}

const (
	testSystemPrompt     = "SYSTEM"
	testComparisonPrompt = "COMPARE"
)

func newService(r Router, ret Retriever, c domain.Completer) *Service {
	return New(r, ret, c, Config{
		SystemPrompt:     testSystemPrompt,
		ComparisonPrompt: testComparisonPrompt,
		Limit:            5,
		MaxQueryLength:   20,
	})
}
