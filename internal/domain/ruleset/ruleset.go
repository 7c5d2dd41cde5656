// Package ruleset holds the static per-domain lookup tables that drive the
// lexical signals: keywords, synonyms, direct mappings, contextual routing
// rules and editorial article metadata. All phrases are stored normalized.
package ruleset

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/text"
)

// ErrConfiguration signals a malformed rule table. It is only ever returned
// at load time.
var ErrConfiguration = errors.New("rule configuration error")

// KeywordRule maps a phrase to candidate article ids; the first is the primary source.
type KeywordRule struct {
	Phrase   string
	Articles []string
}

// SynonymRule lists phrasings that count as an occurrence of Canonical.
type SynonymRule struct {
	Canonical    string
	Alternatives []string
}

// DirectMapping forces Article to the top whenever Phrase occurs.
type DirectMapping struct {
	Phrase  string
	Article string
}

// RoutingRule fires when one Required phrase occurs and, if Context is
// non-empty, one Context phrase occurs too.
type RoutingRule struct {
	ID       string
	Required []string
	Context  []string
	Article  string
	Boost    float64
}

// Ruleset is the complete table set for one fiscal domain of one edition.
type Ruleset struct {
	Domain   string
	Version  corpus.Version
	Keywords []KeywordRule
	Synonyms []SynonymRule
	Direct   []DirectMapping
	Routing  []RoutingRule
	Metadata article.MetadataIndex
}

// New normalizes every phrase and validates the tables.
func New(
	domain string, version corpus.Version,
	keywords []KeywordRule, synonyms []SynonymRule,
	direct []DirectMapping, routing []RoutingRule,
	metadata []article.Metadata,
) (Ruleset, error) {
	if domain == "" {
		return Ruleset{}, fmt.Errorf("%w: domain is required", ErrConfiguration)
	}
	if version.IsZero() {
		return Ruleset{}, fmt.Errorf("%w: %s: version is required", ErrConfiguration, domain)
	}

	rs := Ruleset{Domain: domain, Version: version, Metadata: make(article.MetadataIndex, len(metadata))}

	for i, k := range keywords {
		phrase := text.Normalize(k.Phrase)
		if phrase == "" {
			return Ruleset{}, fmt.Errorf("%w: %s: keyword %d has an empty phrase", ErrConfiguration, domain, i)
		}
		if len(k.Articles) == 0 || hasEmpty(k.Articles) {
			return Ruleset{}, fmt.Errorf("%w: %s: keyword %q needs non-empty article ids", ErrConfiguration, domain, k.Phrase)
		}
		rs.Keywords = append(rs.Keywords, KeywordRule{Phrase: phrase, Articles: k.Articles})
	}

	for _, s := range synonyms {
		canonical := text.Normalize(s.Canonical)
		if canonical == "" {
			return Ruleset{}, fmt.Errorf("%w: %s: synonym with empty canonical phrase", ErrConfiguration, domain)
		}
		alts := text.NormalizeAll(s.Alternatives)
		if len(alts) == 0 {
			return Ruleset{}, fmt.Errorf("%w: %s: synonym %q has no alternatives", ErrConfiguration, domain, s.Canonical)
		}
		rs.Synonyms = append(rs.Synonyms, SynonymRule{Canonical: canonical, Alternatives: alts})
	}

	for _, d := range direct {
		phrase := text.Normalize(d.Phrase)
		if phrase == "" || d.Article == "" {
			return Ruleset{}, fmt.Errorf("%w: %s: direct mapping needs a phrase and an article", ErrConfiguration, domain)
		}
		rs.Direct = append(rs.Direct, DirectMapping{Phrase: phrase, Article: d.Article})
	}

	seen := make(map[string]struct{}, len(routing))
	for _, r := range routing {
		if r.ID == "" {
			return Ruleset{}, fmt.Errorf("%w: %s: routing rule id is required", ErrConfiguration, domain)
		}
		if _, dup := seen[r.ID]; dup {
			return Ruleset{}, fmt.Errorf("%w: %s: duplicate routing rule %q", ErrConfiguration, domain, r.ID)
		}
		seen[r.ID] = struct{}{}

		required := text.NormalizeAll(r.Required)
		if len(required) == 0 {
			return Ruleset{}, fmt.Errorf("%w: %s: rule %q has no required phrases", ErrConfiguration, domain, r.ID)
		}
		if r.Article == "" {
			return Ruleset{}, fmt.Errorf("%w: %s: rule %q has no target article", ErrConfiguration, domain, r.ID)
		}
		if r.Boost < 0 {
			return Ruleset{}, fmt.Errorf("%w: %s: rule %q has negative boost", ErrConfiguration, domain, r.ID)
		}
		rs.Routing = append(rs.Routing, RoutingRule{
			ID:       r.ID,
			Required: required,
			Context:  text.NormalizeAll(r.Context),
			Article:  r.Article,
			Boost:    r.Boost,
		})
	}

	refs := make(map[article.Ref]string, len(metadata))
	for _, m := range metadata {
		if m.ID == "" {
			return Ruleset{}, fmt.Errorf("%w: %s: article metadata without id", ErrConfiguration, domain)
		}
		if m.Type != "" && !m.Type.IsValid() {
			return Ruleset{}, fmt.Errorf("%w: %s: article %q has invalid type %q", ErrConfiguration, domain, m.ID, m.Type)
		}
		if m.Priority != nil && *m.Priority < 0 {
			return Ruleset{}, fmt.Errorf("%w: %s: article %q has negative priority", ErrConfiguration, domain, m.ID)
		}
		if _, dup := rs.Metadata[m.ID]; dup {
			return Ruleset{}, fmt.Errorf("%w: %s: duplicate article id %q", ErrConfiguration, domain, m.ID)
		}
		if m.Numero != "" {
			ref := article.Ref{Numero: m.Numero, Version: version, Tome: m.Tome}
			if other, dup := refs[ref]; dup {
				return Ruleset{}, fmt.Errorf("%w: %s: articles %q and %q share %s", ErrConfiguration, domain, other, m.ID, ref)
			}
			refs[ref] = m.ID
		}
		rs.Metadata[m.ID] = m
	}

	return rs, nil
}

func hasEmpty(ids []string) bool {
	for _, id := range ids {
		if id == "" {
			return true
		}
	}
	return false
}
