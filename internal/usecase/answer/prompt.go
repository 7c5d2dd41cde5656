package answer

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/usecase/pipeline"
)

// sourcesPrompt appends the ranked sources of one edition to the system prompt.
func sourcesPrompt(system string, version corpus.Version, evidence []pipeline.Evidence) string {
	var b strings.Builder
	b.WriteString(system)
	fmt.Fprintf(&b, "\n\nSources (%s):\n", version)
	if len(evidence) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}
	for i, e := range evidence {
		a := e.Article
		fmt.Fprintf(&b, "\n[%d] %s", i+1, a.Ref)
		if a.Title != "" {
			fmt.Fprintf(&b, " - %s", a.Title)
		}
		b.WriteByte('\n')
		if a.Body != "" {
			b.WriteString(strings.TrimSpace(a.Body))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// synthesisQuery asks the provider to contrast two per-edition answers.
func synthesisQuery(query string, a, b Branch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\n", query)
	fmt.Fprintf(&sb, "Answer under the %s edition:\n%s\n\n", a.Version, strings.TrimSpace(a.Text))
	fmt.Fprintf(&sb, "Answer under the %s edition:\n%s\n", b.Version, strings.TrimSpace(b.Text))
	return sb.String()
}
