package rescache

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
)

// resultRow is the JSON-serializable form of one cached search result.
type resultRow struct {
	ArticleID string  `json:"article_id"`
	Score     float64 `json:"score"`
	Kind      string  `json:"match_kind"`
	Priority  int     `json:"priority"`
	Type      string  `json:"type"`
	RuleID    string  `json:"rule_id,omitempty"`
	Pinned    bool    `json:"pinned,omitempty"`
}

func encodeResults(results []result.Result) ([]byte, error) {
	rows := make([]resultRow, len(results))
	for i := range results {
		r := &results[i]
		rows[i] = resultRow{
			ArticleID: r.ArticleID(),
			Score:     r.Score(),
			Kind:      string(r.Kind()),
			Priority:  r.Priority(),
			Type:      string(r.Type()),
			RuleID:    r.RuleID(),
			Pinned:    r.Pinned(),
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	return data, nil
}

func decodeResults(data []byte) ([]result.Result, error) {
	var rows []resultRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	out := make([]result.Result, len(rows))
	for i, row := range rows {
		kind := result.MatchKind(row.Kind)
		if !kind.IsValid() {
			return nil, fmt.Errorf("result %d: invalid match kind %q", i, row.Kind)
		}
		out[i] = result.Restore(
			row.ArticleID, row.Score, kind,
			row.Priority, article.Type(row.Type), row.RuleID, row.Pinned,
		)
	}
	return out, nil
}
