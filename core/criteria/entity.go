package criteria

import (
	"fmt"

	"github.com/siherrmann/ontograph/model"
)

// EntityCriteria is a predicate over the metadata of a single entity.
// It is sealed like EdgeCriteria.
type EntityCriteria interface {
	entityCriteria()
}

// AnyEntity matches every entity.
type AnyEntity struct{}

// EntityTypeIs matches entities whose type is in Types.
type EntityTypeIs struct {
	Types []model.EntityType
}

// HasAnnotation matches entities annotated with Property. An empty Value matches any value.
type HasAnnotation struct {
	Property string
	Value    string
}

// IRIPrefix matches entities whose IRI starts with Prefix.
type IRIPrefix struct {
	Prefix string
}

// AllEntities matches when every child matches. Empty matches everything.
type AllEntities struct {
	Children []EntityCriteria
}

// AnyOfEntities matches when some child matches. Empty matches nothing.
type AnyOfEntities struct {
	Children []EntityCriteria
}

// NotEntity inverts its child.
type NotEntity struct {
	Child EntityCriteria
}

func (AnyEntity) entityCriteria()     {}
func (EntityTypeIs) entityCriteria()  {}
func (HasAnnotation) entityCriteria() {}
func (IRIPrefix) entityCriteria()     {}
func (AllEntities) entityCriteria()   {}
func (AnyOfEntities) entityCriteria() {}
func (NotEntity) entityCriteria()     {}

// NewEntityTypeIs creates an EntityTypeIs predicate.
func NewEntityTypeIs(types ...model.EntityType) EntityTypeIs {
	return EntityTypeIs{Types: types}
}

// EntityVisitor handles each entity criteria variant and produces an R.
type EntityVisitor[R any] interface {
	VisitAnyEntity(c AnyEntity) (R, error)
	VisitEntityTypeIs(c EntityTypeIs) (R, error)
	VisitHasAnnotation(c HasAnnotation) (R, error)
	VisitIRIPrefix(c IRIPrefix) (R, error)
	VisitAllEntities(c AllEntities) (R, error)
	VisitAnyOfEntities(c AnyOfEntities) (R, error)
	VisitNotEntity(c NotEntity) (R, error)
}

// VisitEntity dispatches c to the matching method of v.
func VisitEntity[R any](c EntityCriteria, v EntityVisitor[R]) (R, error) {
	switch c := c.(type) {
	case AnyEntity:
		return v.VisitAnyEntity(c)
	case *AnyEntity:
		if c != nil {
			return v.VisitAnyEntity(*c)
		}
	case EntityTypeIs:
		return v.VisitEntityTypeIs(c)
	case *EntityTypeIs:
		if c != nil {
			return v.VisitEntityTypeIs(*c)
		}
	case HasAnnotation:
		return v.VisitHasAnnotation(c)
	case *HasAnnotation:
		if c != nil {
			return v.VisitHasAnnotation(*c)
		}
	case IRIPrefix:
		return v.VisitIRIPrefix(c)
	case *IRIPrefix:
		if c != nil {
			return v.VisitIRIPrefix(*c)
		}
	case AllEntities:
		return v.VisitAllEntities(c)
	case *AllEntities:
		if c != nil {
			return v.VisitAllEntities(*c)
		}
	case AnyOfEntities:
		return v.VisitAnyOfEntities(c)
	case *AnyOfEntities:
		if c != nil {
			return v.VisitAnyOfEntities(*c)
		}
	case NotEntity:
		return v.VisitNotEntity(c)
	case *NotEntity:
		if c != nil {
			return v.VisitNotEntity(*c)
		}
	}

	var zero R
	return zero, unknownVariant("entity criteria", c)
}

func unknownVariant(kind string, value any) error {
	if value == nil {
		return fmt.Errorf("%w: missing %s", ErrInvalidCriteria, kind)
	}
	return fmt.Errorf("%w: unknown %s %T", ErrInvalidCriteria, kind, value)
}
