// Package corpus describes the parallel editions of the legal corpus.
package corpus

import (
	"fmt"
	"slices"
)

// Version identifies one edition of the corpus, e.g. "2013" or "2025".
// The zero value means "no edition decided".
type Version string

// IsZero reports whether no edition is set.
func (v Version) IsZero() bool { return v == "" }

// Edition is a configured corpus partition and the literal labels users
// write when they refer to it ("cgi 2013", "ancien code").
type Edition struct {
	Version Version
	Labels  []string
}

// Editions is the ordered pair of configured partitions: Older first, Newer second.
type Editions struct {
	Older Edition
	Newer Edition
}

// NewEditions validates that both editions are set and distinct.
func NewEditions(older, newer Edition) (Editions, error) {
	if older.Version.IsZero() || newer.Version.IsZero() {
		return Editions{}, fmt.Errorf("both corpus editions are required")
	}
	if older.Version == newer.Version {
		return Editions{}, fmt.Errorf("corpus editions must differ, both are %q", older.Version)
	}
	return Editions{Older: older, Newer: newer}, nil
}

// Versions returns both versions, older first.
func (e Editions) Versions() []Version {
	return []Version{e.Older.Version, e.Newer.Version}
}

// Has reports whether v is one of the configured versions.
func (e Editions) Has(v Version) bool {
	return slices.Contains(e.Versions(), v)
}

// Other returns the edition that is not v.
func (e Editions) Other(v Version) Version {
	if v == e.Older.Version {
		return e.Newer.Version
	}
	return e.Older.Version
}
