package criteria

import (
	"slices"

	"github.com/siherrmann/ontograph/model"
)

// Evaluate interprets c directly against rel. It is the reference semantics
// that compiled matchers must agree with. A nil criteria rejects every relation.
func Evaluate(c EdgeCriteria, rel *model.Relation) (bool, error) {
	if c == nil || rel == nil {
		return false, nil
	}
	return Visit[bool](c, evaluator{rel: rel})
}

// EvaluateEntity interprets an entity predicate against the entity iri and its
// optional metadata.
func EvaluateEntity(c EntityCriteria, iri model.Entity, data *model.EntityData) (bool, error) {
	return VisitEntity[bool](c, entityEvaluator{iri: iri, data: data})
}

type evaluator struct {
	rel *model.Relation
}

func (evaluator) VisitIncludeAny(IncludeAny) (bool, error) {
	return true, nil
}

func (e evaluator) VisitIncludeByLabel(c IncludeByLabel) (bool, error) {
	return slices.Contains(c.Labels, e.rel.Label), nil
}

func (e evaluator) VisitAnd(c And) (bool, error) {
	result := true
	for _, child := range c.Children {
		ok, err := Visit[bool](child, e)
		if err != nil {
			return false, err
		}
		result = result && ok
	}
	return result, nil
}

func (e evaluator) VisitOr(c Or) (bool, error) {
	result := false
	for _, child := range c.Children {
		ok, err := Visit[bool](child, e)
		if err != nil {
			return false, err
		}
		result = result || ok
	}
	return result, nil
}

func (e evaluator) VisitNot(c Not) (bool, error) {
	ok, err := Visit[bool](c.Child, e)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (e evaluator) VisitTargetEntity(c TargetEntity) (bool, error) {
	return EvaluateEntity(c.Predicate, e.rel.Target, e.rel.TargetData)
}

type entityEvaluator struct {
	iri  model.Entity
	data *model.EntityData
}

func (entityEvaluator) VisitAnyEntity(AnyEntity) (bool, error) {
	return true, nil
}

func (e entityEvaluator) VisitEntityTypeIs(c EntityTypeIs) (bool, error) {
	if e.data == nil {
		return false, nil
	}
	return slices.Contains(c.Types, e.data.Type), nil
}

func (e entityEvaluator) VisitHasAnnotation(c HasAnnotation) (bool, error) {
	return e.data.HasAnnotation(c.Property, c.Value), nil
}

func (e entityEvaluator) VisitIRIPrefix(c IRIPrefix) (bool, error) {
	return e.iri.HasPrefix(c.Prefix), nil
}

func (e entityEvaluator) VisitAllEntities(c AllEntities) (bool, error) {
	result := true
	for _, child := range c.Children {
		ok, err := VisitEntity[bool](child, e)
		if err != nil {
			return false, err
		}
		result = result && ok
	}
	return result, nil
}

func (e entityEvaluator) VisitAnyOfEntities(c AnyOfEntities) (bool, error) {
	result := false
	for _, child := range c.Children {
		ok, err := VisitEntity[bool](child, e)
		if err != nil {
			return false, err
		}
		result = result || ok
	}
	return result, nil
}

func (e entityEvaluator) VisitNotEntity(c NotEntity) (bool, error) {
	ok, err := VisitEntity[bool](c.Child, e)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
