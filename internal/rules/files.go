package rules

import (
	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/intent"
	"github.com/kailas-cloud/lexroute/internal/domain/ruleset"
)

type rulesetFile struct {
	Domain   string        `yaml:"domain"`
	Version  string        `yaml:"version"`
	Keywords []keywordDTO  `yaml:"keywords"`
	Synonyms []synonymDTO  `yaml:"synonyms"`
	Direct   []directDTO   `yaml:"direct"`
	Routing  []routingDTO  `yaml:"routing"`
	Articles []metadataDTO `yaml:"articles"`
}

type keywordDTO struct {
	Phrase   string   `yaml:"phrase"`
	Articles []string `yaml:"articles"`
}

type synonymDTO struct {
	Canonical    string   `yaml:"canonical"`
	Alternatives []string `yaml:"alternatives"`
}

type directDTO struct {
	Phrase  string `yaml:"phrase"`
	Article string `yaml:"article"`
}

type routingDTO struct {
	ID       string   `yaml:"id"`
	Required []string `yaml:"required"`
	Context  []string `yaml:"context"`
	Article  string   `yaml:"article"`
	Boost    float64  `yaml:"boost"`
}

type metadataDTO struct {
	ID       string `yaml:"id"`
	Numero   string `yaml:"numero"`
	Tome     string `yaml:"tome"`
	Title    string `yaml:"title"`
	Section  string `yaml:"section"`
	Priority *int   `yaml:"priority"`
	Type     string `yaml:"type"`
}

func (f rulesetFile) keywords() []ruleset.KeywordRule {
	out := make([]ruleset.KeywordRule, len(f.Keywords))
	for i, k := range f.Keywords {
		out[i] = ruleset.KeywordRule{Phrase: k.Phrase, Articles: k.Articles}
	}
	return out
}

func (f rulesetFile) synonyms() []ruleset.SynonymRule {
	out := make([]ruleset.SynonymRule, len(f.Synonyms))
	for i, s := range f.Synonyms {
		out[i] = ruleset.SynonymRule{Canonical: s.Canonical, Alternatives: s.Alternatives}
	}
	return out
}

func (f rulesetFile) direct() []ruleset.DirectMapping {
	out := make([]ruleset.DirectMapping, len(f.Direct))
	for i, d := range f.Direct {
		out[i] = ruleset.DirectMapping{Phrase: d.Phrase, Article: d.Article}
	}
	return out
}

func (f rulesetFile) routing() []ruleset.RoutingRule {
	out := make([]ruleset.RoutingRule, len(f.Routing))
	for i, r := range f.Routing {
		out[i] = ruleset.RoutingRule{
			ID: r.ID, Required: r.Required, Context: r.Context,
			Article: r.Article, Boost: r.Boost,
		}
	}
	return out
}

func (f rulesetFile) metadata() []article.Metadata {
	out := make([]article.Metadata, len(f.Articles))
	for i, a := range f.Articles {
		numero := a.Numero
		if numero == "" && a.Tome == "" {
			numero = a.ID
		}
		out[i] = article.Metadata{
			ID: a.ID, Numero: numero, Tome: a.Tome,
			Title: a.Title, Section: a.Section,
			Priority: a.Priority, Type: article.Type(a.Type),
		}
	}
	return out
}

type intentFile struct {
	Exclusive  map[string][]string `yaml:"exclusive"`
	Cues       map[string][]string `yaml:"cues"`
	Comparison []string            `yaml:"comparison"`
	Domains    []domainDTO         `yaml:"domains"`
	Confidence *confidenceDTO      `yaml:"confidence"`
}

type domainDTO struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type confidenceDTO struct {
	Base      float64 `yaml:"base"`
	Step      float64 `yaml:"step"`
	Cap       float64 `yaml:"cap"`
	Exclusive float64 `yaml:"exclusive"`
}

func (f intentFile) exclusive() map[corpus.Version][]string { return byVersion(f.Exclusive) }
func (f intentFile) cues() map[corpus.Version][]string      { return byVersion(f.Cues) }

func (f intentFile) domains() []intent.DomainRule {
	out := make([]intent.DomainRule, len(f.Domains))
	for i, d := range f.Domains {
		out[i] = intent.DomainRule{Name: intent.Domain(d.Name), Keywords: d.Keywords}
	}
	return out
}

func (f intentFile) confidence() intent.Confidence {
	if f.Confidence == nil {
		return intent.Confidence{}
	}
	return intent.Confidence(*f.Confidence)
}

func byVersion(m map[string][]string) map[corpus.Version][]string {
	out := make(map[corpus.Version][]string, len(m))
	for k, v := range m {
		out[corpus.Version(k)] = v
	}
	return out
}
