package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/lexroute/internal/app"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/search/result"
	intentuc "github.com/kailas-cloud/lexroute/internal/usecase/intent"
)

func queryArg(args []string) string {
	return strings.Join(args, " ")
}

func (o *options) offline() (*app.Offline, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.LoadOffline(cfg)
}

// online builds the full engine; the returned func releases it.
func (o *options) online(ctx context.Context) (*app.App, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := o.logger()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, func() {
		a.Close()
		_ = logger.Sync()
	}, nil
}

type decisionView struct {
	Versions    []corpus.Version `json:"versions"`
	Reason      string           `json:"reason"`
	Comparison  bool             `json:"comparison"`
	Exclusive   bool             `json:"exclusive"`
	Domain      string           `json:"domain,omitempty"`
	Confidence  float64          `json:"confidence"`
	MatchedCues []string         `json:"matched_cues,omitempty"`
}

func viewDecision(d intentuc.Decision) decisionView {
	return decisionView{
		Versions:    d.Versions,
		Reason:      d.Reason,
		Comparison:  d.Intent.IsComparison,
		Exclusive:   d.Intent.Exclusive,
		Domain:      string(d.Intent.Domain),
		Confidence:  d.Intent.Confidence,
		MatchedCues: d.Intent.MatchedCues,
	}
}

func printDecision(w io.Writer, d decisionView) {
	versions := make([]string, len(d.Versions))
	for i, v := range d.Versions {
		versions[i] = string(v)
	}
	fmt.Fprintf(w, "versions:   %s\n", strings.Join(versions, ", "))
	fmt.Fprintf(w, "reason:     %s\n", d.Reason)
	fmt.Fprintf(w, "confidence: %.2f\n", d.Confidence)
	if d.Domain != "" {
		fmt.Fprintf(w, "domain:     %s\n", d.Domain)
	}
	if len(d.MatchedCues) > 0 {
		fmt.Fprintf(w, "cues:       %s\n", strings.Join(d.MatchedCues, ", "))
	}
}

type resultView struct {
	Rank      int     `json:"rank"`
	ArticleID string  `json:"article_id"`
	Score     float64 `json:"score"`
	MatchKind string  `json:"match_kind"`
	Priority  int     `json:"priority"`
	Type      string  `json:"type"`
	RuleID    string  `json:"rule_id,omitempty"`
	Pinned    bool    `json:"pinned,omitempty"`
}

func viewResults(rs []result.Result) []resultView {
	out := make([]resultView, len(rs))
	for i := range rs {
		r := &rs[i]
		out[i] = resultView{
			Rank:      i + 1,
			ArticleID: r.ArticleID(),
			Score:     r.Score(),
			MatchKind: string(r.Kind()),
			Priority:  r.Priority(),
			Type:      string(r.Type()),
			RuleID:    r.RuleID(),
			Pinned:    r.Pinned(),
		}
	}
	return out
}

func printResults(w io.Writer, version corpus.Version, rs []resultView) {
	fmt.Fprintf(w, "[%s] %d result(s)\n", version, len(rs))
	for _, r := range rs {
		line := fmt.Sprintf("%3d. %-10s score=%.3f kind=%-7s priority=%d type=%s",
			r.Rank, r.ArticleID, r.Score, r.MatchKind, r.Priority, r.Type)
		if r.Pinned {
			line += " pinned by " + r.RuleID
		}
		fmt.Fprintln(w, line)
	}
}

func newIntentCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "intent <query>",
		Short: "Show which edition(s) a query routes to (offline)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			off, err := opts.offline()
			if err != nil {
				return err
			}
			d := viewDecision(off.Router.Route(cmd.Context(), queryArg(args)))
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), d)
			}
			printDecision(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func newMatchCmd(opts *options) *cobra.Command {
	var (
		version string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "match <query>",
		Short: "Rank provisions from keyword and routing rules only (offline)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			off, err := opts.offline()
			if err != nil {
				return err
			}
			query := queryArg(args)

			versions := []corpus.Version{corpus.Version(version)}
			if version == "" {
				versions = off.Router.Route(cmd.Context(), query).Versions
			}

			lexical := off.Lexical()
			views := make(map[corpus.Version][]resultView, len(versions))
			for _, v := range versions {
				r, err := lexical.Retrieve(cmd.Context(), query, v, limit)
				if err != nil {
					return err
				}
				views[v] = viewResults(r.Results)
			}

			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), views)
			}
			for _, v := range versions {
				printResults(cmd.OutOrStdout(), v, views[v])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "corpus version (default: routed)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results per version")
	return cmd
}

func newRulesValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load every rule table and report configuration errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			off, err := opts.offline()
			if err != nil {
				return err
			}
			counts := map[string]int{}
			for _, v := range off.Editions.Versions() {
				counts[string(v)] = len(off.Rules.Catalog.Rulesets(v))
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"valid": true, "rulesets": counts})
			}
			for _, v := range off.Editions.Versions() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d ruleset(s)\n", v, counts[string(v)])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "rules OK")
			return nil
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	var (
		version string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run hybrid retrieval against Redis and the embedding provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := opts.online(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			res, err := a.Answers.Search(cmd.Context(), queryArg(args), corpus.Version(version), limit)
			if err != nil {
				return err
			}
			views := viewResults(res.Retrieval.Results)
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"version": res.Retrieval.Version,
					"results": views,
				})
			}
			if res.Decision != nil {
				printDecision(cmd.OutOrStdout(), viewDecision(*res.Decision))
			}
			printResults(cmd.OutOrStdout(), res.Retrieval.Version, views)
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "corpus version (default: routed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default: search.default_limit)")
	return cmd
}

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question with citations, comparing editions when asked",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := opts.online(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			ans, err := a.Answers.Ask(cmd.Context(), queryArg(args), nil)
			if err != nil {
				return err
			}

			cites := make([]string, len(ans.Citations))
			for i, c := range ans.Citations {
				cites[i] = fmt.Sprintf("%s/%s", c.Version, c.Evidence.Result.ArticleID())
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"answer":    ans.Text,
					"versions":  ans.Versions,
					"reason":    ans.Reason,
					"citations": cites,
					"degraded":  ans.Degraded,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "sources: %s\n", strings.Join(cites, ", "))
			if ans.Degraded {
				fmt.Fprintln(cmd.OutOrStdout(), "warning: answer generation degraded")
			}
			return nil
		},
	}
}
