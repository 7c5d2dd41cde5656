package ruleset

import (
	"fmt"

	"github.com/kailas-cloud/lexroute/internal/domain/article"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
)

// Catalog groups rulesets by corpus version, keeping load order.
type Catalog struct {
	byVersion map[corpus.Version][]Ruleset
	metadata  map[corpus.Version]article.MetadataIndex
}

// NewCatalog indexes rulesets by version and merges their metadata tables.
// Every ruleset must target one of the configured editions.
func NewCatalog(editions corpus.Editions, sets []Ruleset) (*Catalog, error) {
	c := &Catalog{
		byVersion: make(map[corpus.Version][]Ruleset, 2),
		metadata:  make(map[corpus.Version]article.MetadataIndex, 2),
	}
	for _, v := range editions.Versions() {
		c.metadata[v] = make(article.MetadataIndex)
	}

	for _, rs := range sets {
		if !editions.Has(rs.Version) {
			return nil, fmt.Errorf("%w: ruleset %s targets unknown version %q", ErrConfiguration, rs.Domain, rs.Version)
		}
		if err := c.metadata[rs.Version].Merge(rs.Metadata); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %w", ErrConfiguration, rs.Version, rs.Domain, err)
		}
		c.byVersion[rs.Version] = append(c.byVersion[rs.Version], rs)
	}
	return c, nil
}

// Rulesets returns the rulesets of version v in load order.
func (c *Catalog) Rulesets(v corpus.Version) []Ruleset {
	return c.byVersion[v]
}

// Metadata returns the merged metadata index of version v.
func (c *Catalog) Metadata(v corpus.Version) article.MetadataIndex {
	if idx, ok := c.metadata[v]; ok {
		return idx
	}
	return article.MetadataIndex{}
}

// Count returns the number of loaded rulesets.
func (c *Catalog) Count() int {
	n := 0
	for _, sets := range c.byVersion {
		n += len(sets)
	}
	return n
}
