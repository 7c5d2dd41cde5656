package lexroute

import (
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
	answeruc "github.com/kailas-cloud/lexroute/internal/usecase/answer"
	intentuc "github.com/kailas-cloud/lexroute/internal/usecase/intent"
)

// Decision is where a query was routed and why.
type Decision struct {
	Versions    []string
	Reason      string // "exclusive", "comparison", "cues" or "fallback"
	Comparison  bool
	Domain      string
	Confidence  float64
	MatchedCues []string
}

// Result is one ranked provision.
type Result struct {
	ArticleID string
	Score     float64
	MatchKind string // "keyword", "vector" or "both"
	Priority  int
	Type      string
	RuleID    string
	Pinned    bool
}

// SearchResult is the ranked evidence of one edition.
type SearchResult struct {
	Version string
	Results []Result
	// Decision is set when the version was chosen by the router.
	Decision *Decision
}

// Citation is a provision an answer relied on.
type Citation struct {
	Version string
	Result
	Numero string
	Title  string
}

// Answer is generated prose with its citations.
type Answer struct {
	Text      string
	Decision  Decision
	Citations []Citation
	// Branches holds the per-edition answers of a comparison, older first.
	Branches map[string]string
	Degraded bool
}

func fromDecision(d intentuc.Decision) Decision {
	versions := make([]string, len(d.Versions))
	for i, v := range d.Versions {
		versions[i] = string(v)
	}
	return Decision{
		Versions:    versions,
		Reason:      d.Reason,
		Comparison:  d.Intent.IsComparison,
		Domain:      string(d.Intent.Domain),
		Confidence:  d.Intent.Confidence,
		MatchedCues: d.Intent.MatchedCues,
	}
}

func fromResult(r *result.Result) Result {
	return Result{
		ArticleID: r.ArticleID(),
		Score:     r.Score(),
		MatchKind: string(r.Kind()),
		Priority:  r.Priority(),
		Type:      string(r.Type()),
		RuleID:    r.RuleID(),
		Pinned:    r.Pinned(),
	}
}

func fromSearch(res answeruc.SearchResult) SearchResult {
	out := SearchResult{
		Version: string(res.Retrieval.Version),
		Results: make([]Result, len(res.Retrieval.Results)),
	}
	for i := range res.Retrieval.Results {
		out.Results[i] = fromResult(&res.Retrieval.Results[i])
	}
	if res.Decision != nil {
		d := fromDecision(*res.Decision)
		out.Decision = &d
	}
	return out
}

func fromAnswer(a answeruc.Answer) Answer {
	out := Answer{
		Text:      a.Text,
		Decision:  fromDecision(intentuc.Decision{Intent: a.Intent, Versions: a.Versions, Reason: a.Reason}),
		Citations: make([]Citation, len(a.Citations)),
		Degraded:  a.Degraded,
	}
	for i, c := range a.Citations {
		out.Citations[i] = Citation{
			Version: string(c.Version),
			Result:  fromResult(&c.Evidence.Result),
			Numero:  c.Evidence.Article.Ref.Numero,
			Title:   c.Evidence.Article.Title,
		}
	}
	if len(a.Branches) > 0 {
		out.Branches = make(map[string]string, len(a.Branches))
		for _, b := range a.Branches {
			out.Branches[string(b.Version)] = b.Text
		}
	}
	return out
}
