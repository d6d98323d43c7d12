package matcher

import (
	"strings"

	"github.com/siherrmann/ontograph/core/criteria"
	"github.com/siherrmann/ontograph/model"
)

// predicate is either a constant (fn == nil) or a function of T.
type predicate[T any] struct {
	fn    func(T) bool
	value bool
}

func constant[T any](value bool) predicate[T] {
	return predicate[T]{value: value}
}

func dynamic[T any](fn func(T) bool) predicate[T] {
	return predicate[T]{fn: fn}
}

func (p predicate[T]) isConstant() bool {
	return p.fn == nil
}

func (p predicate[T]) eval(v T) bool {
	if p.fn == nil {
		return p.value
	}
	return p.fn(v)
}

// allOf folds constants: true children are dropped, a false child makes the whole conjunction false.
func allOf[T any](children []predicate[T]) predicate[T] {
	fns := make([]func(T) bool, 0, len(children))
	for _, c := range children {
		if c.isConstant() {
			if !c.value {
				return constant[T](false)
			}
			continue
		}
		fns = append(fns, c.fn)
	}

	switch len(fns) {
	case 0:
		return constant[T](true)
	case 1:
		return dynamic(fns[0])
	}
	return dynamic(func(v T) bool {
		for _, fn := range fns {
			if !fn(v) {
				return false
			}
		}
		return true
	})
}

// anyOf is the dual of allOf.
func anyOf[T any](children []predicate[T]) predicate[T] {
	fns := make([]func(T) bool, 0, len(children))
	for _, c := range children {
		if c.isConstant() {
			if c.value {
				return constant[T](true)
			}
			continue
		}
		fns = append(fns, c.fn)
	}

	switch len(fns) {
	case 0:
		return constant[T](false)
	case 1:
		return dynamic(fns[0])
	}
	return dynamic(func(v T) bool {
		for _, fn := range fns {
			if fn(v) {
				return true
			}
		}
		return false
	})
}

func not[T any](child predicate[T]) predicate[T] {
	if child.isConstant() {
		return constant[T](!child.value)
	}
	fn := child.fn
	return dynamic(func(v T) bool {
		return !fn(v)
	})
}

// target is the part of a relation an entity predicate may look at.
type target struct {
	iri  model.Entity
	data *model.EntityData
}

type compiler struct{}

func (compiler) VisitIncludeAny(criteria.IncludeAny) (predicate[*model.Relation], error) {
	return constant[*model.Relation](true), nil
}

func (compiler) VisitIncludeByLabel(c criteria.IncludeByLabel) (predicate[*model.Relation], error) {
	if len(c.Labels) == 0 {
		return constant[*model.Relation](false), nil
	}
	if len(c.Labels) == 1 {
		label := c.Labels[0]
		return dynamic(func(rel *model.Relation) bool {
			return rel.Label == label
		}), nil
	}

	labels := make(map[model.RelationLabel]struct{}, len(c.Labels))
	for _, l := range c.Labels {
		labels[l] = struct{}{}
	}
	return dynamic(func(rel *model.Relation) bool {
		_, ok := labels[rel.Label]
		return ok
	}), nil
}

func (cp compiler) VisitAnd(c criteria.And) (predicate[*model.Relation], error) {
	children, err := cp.children(c.Children)
	if err != nil {
		return predicate[*model.Relation]{}, err
	}
	return allOf(children), nil
}

func (cp compiler) VisitOr(c criteria.Or) (predicate[*model.Relation], error) {
	children, err := cp.children(c.Children)
	if err != nil {
		return predicate[*model.Relation]{}, err
	}
	return anyOf(children), nil
}

func (cp compiler) VisitNot(c criteria.Not) (predicate[*model.Relation], error) {
	child, err := criteria.Visit[predicate[*model.Relation]](c.Child, cp)
	if err != nil {
		return predicate[*model.Relation]{}, err
	}
	return not(child), nil
}

func (cp compiler) VisitTargetEntity(c criteria.TargetEntity) (predicate[*model.Relation], error) {
	p, err := criteria.VisitEntity[predicate[target]](c.Predicate, cp)
	if err != nil {
		return predicate[*model.Relation]{}, err
	}
	if p.isConstant() {
		return constant[*model.Relation](p.value), nil
	}
	fn := p.fn
	return dynamic(func(rel *model.Relation) bool {
		return fn(target{iri: rel.Target, data: rel.TargetData})
	}), nil
}

func (cp compiler) children(children []criteria.EdgeCriteria) ([]predicate[*model.Relation], error) {
	compiled := make([]predicate[*model.Relation], 0, len(children))
	for _, child := range children {
		p, err := criteria.Visit[predicate[*model.Relation]](child, cp)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, p)
	}
	return compiled, nil
}

func (compiler) VisitAnyEntity(criteria.AnyEntity) (predicate[target], error) {
	return constant[target](true), nil
}

func (compiler) VisitEntityTypeIs(c criteria.EntityTypeIs) (predicate[target], error) {
	if len(c.Types) == 0 {
		return constant[target](false), nil
	}
	types := make(map[model.EntityType]struct{}, len(c.Types))
	for _, t := range c.Types {
		types[t] = struct{}{}
	}
	return dynamic(func(t target) bool {
		if t.data == nil {
			return false
		}
		_, ok := types[t.data.Type]
		return ok
	}), nil
}

func (compiler) VisitHasAnnotation(c criteria.HasAnnotation) (predicate[target], error) {
	property, value := c.Property, c.Value
	return dynamic(func(t target) bool {
		return t.data.HasAnnotation(property, value)
	}), nil
}

func (compiler) VisitIRIPrefix(c criteria.IRIPrefix) (predicate[target], error) {
	if c.Prefix == "" {
		return constant[target](true), nil
	}
	prefix := c.Prefix
	return dynamic(func(t target) bool {
		return strings.HasPrefix(string(t.iri), prefix)
	}), nil
}

func (cp compiler) VisitAllEntities(c criteria.AllEntities) (predicate[target], error) {
	children, err := cp.entityChildren(c.Children)
	if err != nil {
		return predicate[target]{}, err
	}
	return allOf(children), nil
}

func (cp compiler) VisitAnyOfEntities(c criteria.AnyOfEntities) (predicate[target], error) {
	children, err := cp.entityChildren(c.Children)
	if err != nil {
		return predicate[target]{}, err
	}
	return anyOf(children), nil
}

func (cp compiler) VisitNotEntity(c criteria.NotEntity) (predicate[target], error) {
	child, err := criteria.VisitEntity[predicate[target]](c.Child, cp)
	if err != nil {
		return predicate[target]{}, err
	}
	return not(child), nil
}

func (cp compiler) entityChildren(children []criteria.EntityCriteria) ([]predicate[target], error) {
	compiled := make([]predicate[target], 0, len(children))
	for _, child := range children {
		p, err := criteria.VisitEntity[predicate[target]](child, cp)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, p)
	}
	return compiled, nil
}
