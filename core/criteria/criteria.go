// Package criteria describes which relations become edges of an entity graph.
//
// Edge criteria form a closed set of variants (IncludeAny, IncludeByLabel,
// And, Or, Not, TargetEntity). Consumers dispatch over them with Visit instead
// of methods on the variants, so a new consumer never touches the variant
// definitions. Criteria are pure descriptions and never reach a store.
package criteria

import (
	"errors"

	"github.com/siherrmann/ontograph/model"
)

// ErrInvalidCriteria indicates a malformed criteria tree, for example a nil
// child or an unknown variant. It is reported before any traversal starts.
var ErrInvalidCriteria = errors.New("invalid criteria")

// EdgeCriteria is an edge acceptance predicate.
// The interface is sealed: only the variants of this package implement it.
type EdgeCriteria interface {
	edgeCriteria()
}

// IncludeAny accepts every relation.
type IncludeAny struct{}

// IncludeByLabel accepts relations whose label is in Labels.
// Labels is a set; order and duplicates do not matter.
type IncludeByLabel struct {
	Labels []model.RelationLabel
}

// And accepts relations accepted by every child. An empty And accepts everything.
type And struct {
	Children []EdgeCriteria
}

// Or accepts relations accepted by at least one child. An empty Or accepts nothing.
type Or struct {
	Children []EdgeCriteria
}

// Not inverts its child.
type Not struct {
	Child EdgeCriteria
}

// TargetEntity accepts relations whose target satisfies Predicate.
type TargetEntity struct {
	Predicate EntityCriteria
}

func (IncludeAny) edgeCriteria()     {}
func (IncludeByLabel) edgeCriteria() {}
func (And) edgeCriteria()            {}
func (Or) edgeCriteria()             {}
func (Not) edgeCriteria()            {}
func (TargetEntity) edgeCriteria()   {}

// NewIncludeByLabel creates an IncludeByLabel criteria from labels.
func NewIncludeByLabel(labels ...model.RelationLabel) IncludeByLabel {
	return IncludeByLabel{Labels: labels}
}

// NewAnd creates an And criteria over children.
func NewAnd(children ...EdgeCriteria) And {
	return And{Children: children}
}

// NewOr creates an Or criteria over children.
func NewOr(children ...EdgeCriteria) Or {
	return Or{Children: children}
}

// NewNot creates a Not criteria.
func NewNot(child EdgeCriteria) Not {
	return Not{Child: child}
}

// NewTargetEntity creates a TargetEntity criteria.
func NewTargetEntity(predicate EntityCriteria) TargetEntity {
	return TargetEntity{Predicate: predicate}
}

// Visitor handles each edge criteria variant and produces an R.
type Visitor[R any] interface {
	VisitIncludeAny(c IncludeAny) (R, error)
	VisitIncludeByLabel(c IncludeByLabel) (R, error)
	VisitAnd(c And) (R, error)
	VisitOr(c Or) (R, error)
	VisitNot(c Not) (R, error)
	VisitTargetEntity(c TargetEntity) (R, error)
}

// Visit dispatches c to the matching method of v.
// Pointers to variants are accepted as well. A nil or foreign value is ErrInvalidCriteria.
func Visit[R any](c EdgeCriteria, v Visitor[R]) (R, error) {
	switch c := c.(type) {
	case IncludeAny:
		return v.VisitIncludeAny(c)
	case *IncludeAny:
		if c != nil {
			return v.VisitIncludeAny(*c)
		}
	case IncludeByLabel:
		return v.VisitIncludeByLabel(c)
	case *IncludeByLabel:
		if c != nil {
			return v.VisitIncludeByLabel(*c)
		}
	case And:
		return v.VisitAnd(c)
	case *And:
		if c != nil {
			return v.VisitAnd(*c)
		}
	case Or:
		return v.VisitOr(c)
	case *Or:
		if c != nil {
			return v.VisitOr(*c)
		}
	case Not:
		return v.VisitNot(c)
	case *Not:
		if c != nil {
			return v.VisitNot(*c)
		}
	case TargetEntity:
		return v.VisitTargetEntity(c)
	case *TargetEntity:
		if c != nil {
			return v.VisitTargetEntity(*c)
		}
	}

	var zero R
	return zero, unknownVariant("edge criteria", c)
}
