package chi

import (
	"time"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
	"github.com/kailas-cloud/lexroute/internal/domain/usage"
	answeruc "github.com/kailas-cloud/lexroute/internal/usecase/answer"
	intentuc "github.com/kailas-cloud/lexroute/internal/usecase/intent"
	"github.com/kailas-cloud/lexroute/internal/usecase/routing"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest              ErrorCode = "bad_request"
	ErrorCodeValidationFailed        ErrorCode = "validation_failed"
	ErrorCodeUnknownVersion          ErrorCode = "unknown_version"
	ErrorCodeComparisonFailed        ErrorCode = "comparison_failed"
	ErrorCodeBudgetExceeded          ErrorCode = "budget_exceeded"
	ErrorCodeEmbeddingProviderError  ErrorCode = "embedding_provider_error"
	ErrorCodeCompletionProviderError ErrorCode = "completion_provider_error"
	ErrorCodeNotFound                ErrorCode = "not_found"
	ErrorCodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// MessageDTO is one prior conversation turn.
type MessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Query   string       `json:"query"`
	History []MessageDTO `json:"history,omitempty"`
}

// IntentRequest is the body of POST /v1/intent.
type IntentRequest struct {
	Query string `json:"query"`
}

// IntentResponse describes a routing decision.
type IntentResponse struct {
	TargetVersion string   `json:"target_version,omitempty"`
	IsComparison  bool     `json:"is_comparison"`
	Exclusive     bool     `json:"exclusive"`
	Domain        string   `json:"domain,omitempty"`
	Confidence    float64  `json:"confidence"`
	MatchedCues   []string `json:"matched_cues"`
	Versions      []string `json:"versions"`
	Reason        string   `json:"reason"`
}

// ResultDTO is one ranked provision.
type ResultDTO struct {
	ArticleID string  `json:"article_id"`
	Score     float64 `json:"score"`
	MatchKind string  `json:"match_kind"`
	Priority  int     `json:"priority"`
	Type      string  `json:"type"`
	RuleID    string  `json:"rule_id,omitempty"`
	Pinned    bool    `json:"pinned,omitempty"`
}

// OverrideDTO is the routing rule that pinned a result.
type OverrideDTO struct {
	ArticleID string  `json:"article_id"`
	RuleID    string  `json:"rule_id"`
	Kind      string  `json:"kind"`
	Boost     float64 `json:"boost"`
}

// SearchResponse is the body of GET /v1/search.
type SearchResponse struct {
	Version  string          `json:"version"`
	Results  []ResultDTO     `json:"results"`
	Override *OverrideDTO    `json:"override,omitempty"`
	Intent   *IntentResponse `json:"intent,omitempty"`
}

// CitationDTO is a cited provision with its text reference.
type CitationDTO struct {
	ResultDTO
	Version string `json:"version"`
	Numero  string `json:"numero"`
	Tome    string `json:"tome,omitempty"`
	Title   string `json:"title,omitempty"`
	Section string `json:"section,omitempty"`
}

// BranchDTO is the answer of one edition in a comparison.
type BranchDTO struct {
	Version string `json:"version"`
	Answer  string `json:"answer"`
}

// AskResponse is the body of POST /v1/ask.
type AskResponse struct {
	Answer    string         `json:"answer"`
	Degraded  bool           `json:"degraded,omitempty"`
	Intent    IntentResponse `json:"intent"`
	Citations []CitationDTO  `json:"citations"`
	Branches  []BranchDTO    `json:"branches,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func historyFromDTO(in []MessageDTO) []domain.Message {
	out := make([]domain.Message, 0, len(in))
	for _, m := range in {
		role := domain.RoleUser
		if m.Role == string(domain.RoleAssistant) {
			role = domain.RoleAssistant
		}
		out = append(out, domain.Message{Role: role, Content: m.Content})
	}
	return out
}

func intentToDTO(d intentuc.Decision) IntentResponse {
	versions := make([]string, len(d.Versions))
	for i, v := range d.Versions {
		versions[i] = string(v)
	}
	cues := d.Intent.MatchedCues
	if cues == nil {
		cues = []string{}
	}
	return IntentResponse{
		TargetVersion: string(d.Intent.TargetVersion),
		IsComparison:  d.Intent.IsComparison,
		Exclusive:     d.Intent.Exclusive,
		Domain:        string(d.Intent.Domain),
		Confidence:    d.Intent.Confidence,
		MatchedCues:   cues,
		Versions:      versions,
		Reason:        d.Reason,
	}
}

func resultToDTO(r *result.Result) ResultDTO {
	return ResultDTO{
		ArticleID: r.ArticleID(),
		Score:     r.Score(),
		MatchKind: string(r.Kind()),
		Priority:  r.Priority(),
		Type:      string(r.Type()),
		RuleID:    r.RuleID(),
		Pinned:    r.Pinned(),
	}
}

func overrideToDTO(o *routing.Override) *OverrideDTO {
	if o == nil {
		return nil
	}
	return &OverrideDTO{ArticleID: o.ArticleID, RuleID: o.RuleID, Kind: string(o.Kind), Boost: o.Boost}
}

func searchToDTO(res answeruc.SearchResult) SearchResponse {
	r := res.Retrieval
	out := SearchResponse{
		Version:  string(r.Version),
		Results:  make([]ResultDTO, len(r.Results)),
		Override: overrideToDTO(r.Override),
	}
	for i := range r.Results {
		out.Results[i] = resultToDTO(&r.Results[i])
	}
	if res.Decision != nil {
		d := intentToDTO(*res.Decision)
		out.Intent = &d
	}
	return out
}

func citationToDTO(c answeruc.Citation) CitationDTO {
	e := c.Evidence
	return CitationDTO{
		ResultDTO: resultToDTO(&e.Result),
		Version:   string(c.Version),
		Numero:    e.Article.Ref.Numero,
		Tome:      e.Article.Ref.Tome,
		Title:     e.Article.Title,
		Section:   e.Article.Section,
	}
}

func askToDTO(a answeruc.Answer) AskResponse {
	out := AskResponse{
		Answer:   a.Text,
		Degraded: a.Degraded,
		Intent: intentToDTO(intentuc.Decision{
			Intent: a.Intent, Versions: a.Versions, Reason: a.Reason,
		}),
		Citations: make([]CitationDTO, len(a.Citations)),
	}
	for i, c := range a.Citations {
		out.Citations[i] = citationToDTO(c)
	}
	for _, b := range a.Branches {
		out.Branches = append(out.Branches, BranchDTO{Version: string(b.Version), Answer: b.Text})
	}
	return out
}

// BudgetDTO is the token usage of one provider kind.
type BudgetDTO struct {
	Kind            string `json:"kind"`
	PeriodStart     string `json:"period_start"`
	ResetsAt        string `json:"resets_at"`
	TokensUsed      int64  `json:"tokens_used"`
	TokensLimit     int64  `json:"tokens_limit"`
	TokensRemaining int64  `json:"tokens_remaining"`
	IsExhausted     bool   `json:"is_exhausted"`
}

// UsageResponse is the body of GET /v1/usage.
type UsageResponse struct {
	Period  string      `json:"period"`
	Budgets []BudgetDTO `json:"budgets"`
}

func usageToDTO(p usage.Period, reports []usage.Report) UsageResponse {
	out := UsageResponse{Period: string(p), Budgets: make([]BudgetDTO, len(reports))}
	for i, r := range reports {
		out.Budgets[i] = BudgetDTO{
			Kind:            r.Kind(),
			PeriodStart:     millisToISO(r.PeriodStart()),
			ResetsAt:        millisToISO(r.PeriodEnd()),
			TokensUsed:      r.TokensUsed(),
			TokensLimit:     r.TokensLimit(),
			TokensRemaining: r.TokensRemaining(),
			IsExhausted:     r.IsExhausted(),
		}
	}
	return out
}

func millisToISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
