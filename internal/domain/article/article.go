// Package article models provisions of the legal corpus and their editorial metadata.
package article

import (
	"fmt"

	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
)

// Type is the semantic role of a provision.
type Type string

// Provision types, in the order in which they should be cited.
const (
	TypeDefinition  Type = "definition"
	TypeExemption   Type = "exemption"
	TypeCalculation Type = "calculation"
	TypeProcedure   Type = "procedure"
	TypeApplication Type = "application"
	TypeSanction    Type = "sanction"
)

// DefaultPriority is assigned to articles without editorial metadata.
const DefaultPriority = 100

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	switch t {
	case TypeDefinition, TypeExemption, TypeCalculation,
		TypeProcedure, TypeApplication, TypeSanction:
		return true
	}
	return false
}

// Rank orders types for citation: provisions that define, exempt or compute
// come first, then procedure, then generic application, then sanctions.
// Unknown types rank as generic application.
func (t Type) Rank() int {
	switch t {
	case TypeDefinition, TypeExemption, TypeCalculation:
		return 0
	case TypeProcedure:
		return 1
	case TypeSanction:
		return 3
	default:
		return 2
	}
}

// Ref is the natural key of an article.
type Ref struct {
	Numero  string
	Version corpus.Version
	Tome    string
}

func (r Ref) String() string {
	if r.Tome == "" {
		return fmt.Sprintf("%s/%s", r.Version, r.Numero)
	}
	return fmt.Sprintf("%s/%s/%s", r.Version, r.Tome, r.Numero)
}

// Article is a single provision as stored in the corpus.
type Article struct {
	ID       string
	Ref      Ref
	Title    string
	Body     string
	Section  string
	Keywords []string
	Priority int
	Type     Type
}
