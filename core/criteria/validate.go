package criteria

import (
	"fmt"
)

// Validate checks that c is a well formed criteria tree.
// Every problem is reported as ErrInvalidCriteria.
func Validate(c EdgeCriteria) error {
	_, err := Visit[struct{}](c, validator{})
	return err
}

type validator struct{}

func (validator) VisitIncludeAny(IncludeAny) (struct{}, error) {
	return struct{}{}, nil
}

func (validator) VisitIncludeByLabel(c IncludeByLabel) (struct{}, error) {
	for i, l := range c.Labels {
		if l == "" {
			return struct{}{}, fmt.Errorf("%w: empty label at position %d", ErrInvalidCriteria, i)
		}
	}
	return struct{}{}, nil
}

func (v validator) VisitAnd(c And) (struct{}, error) {
	return v.children(c.Children)
}

func (v validator) VisitOr(c Or) (struct{}, error) {
	return v.children(c.Children)
}

func (v validator) VisitNot(c Not) (struct{}, error) {
	return Visit[struct{}](c.Child, v)
}

func (v validator) VisitTargetEntity(c TargetEntity) (struct{}, error) {
	return VisitEntity[struct{}](c.Predicate, v)
}

func (v validator) children(children []EdgeCriteria) (struct{}, error) {
	for _, child := range children {
		_, err := Visit[struct{}](child, v)
		if err != nil {
			return struct{}{}, err
		}
	}
	return struct{}{}, nil
}

func (validator) VisitAnyEntity(AnyEntity) (struct{}, error) {
	return struct{}{}, nil
}

func (validator) VisitEntityTypeIs(c EntityTypeIs) (struct{}, error) {
	for _, t := range c.Types {
		if !t.Valid() {
			return struct{}{}, fmt.Errorf("%w: unknown entity type %q", ErrInvalidCriteria, t)
		}
	}
	return struct{}{}, nil
}

func (validator) VisitHasAnnotation(c HasAnnotation) (struct{}, error) {
	if c.Property == "" {
		return struct{}{}, fmt.Errorf("%w: annotation property must not be empty", ErrInvalidCriteria)
	}
	return struct{}{}, nil
}

func (validator) VisitIRIPrefix(IRIPrefix) (struct{}, error) {
	return struct{}{}, nil
}

func (v validator) VisitAllEntities(c AllEntities) (struct{}, error) {
	return v.entityChildren(c.Children)
}

func (v validator) VisitAnyOfEntities(c AnyOfEntities) (struct{}, error) {
	return v.entityChildren(c.Children)
}

func (v validator) VisitNotEntity(c NotEntity) (struct{}, error) {
	return VisitEntity[struct{}](c.Child, v)
}

func (v validator) entityChildren(children []EntityCriteria) (struct{}, error) {
	for _, child := range children {
		_, err := VisitEntity[struct{}](child, v)
		if err != nil {
			return struct{}{}, err
		}
	}
	return struct{}{}, nil
}
