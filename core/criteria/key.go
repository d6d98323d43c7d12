package criteria

import (
	"slices"
	"strconv"
	"strings"
)

// Key returns a canonical string for c. Two criteria have the same key exactly
// when they have the same variant shape and leaf values, with label and type
// sets compared as sets.
func Key(c EdgeCriteria) (string, error) {
	return Visit[string](c, keyVisitor{})
}

// Equal reports whether a and b are structurally equal.
// Two nil criteria are equal; malformed criteria are never equal.
func Equal(a, b EdgeCriteria) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	keyA, err := Key(a)
	if err != nil {
		return false
	}
	keyB, err := Key(b)
	if err != nil {
		return false
	}
	return keyA == keyB
}

// EntityKey is Key for entity criteria.
func EntityKey(c EntityCriteria) (string, error) {
	return VisitEntity[string](c, keyVisitor{})
}

type keyVisitor struct{}

func (keyVisitor) VisitIncludeAny(IncludeAny) (string, error) {
	return "any", nil
}

func (keyVisitor) VisitIncludeByLabel(c IncludeByLabel) (string, error) {
	return "labels(" + canonicalSet(c.Labels) + ")", nil
}

func (k keyVisitor) VisitAnd(c And) (string, error) {
	return k.children("and", c.Children)
}

func (k keyVisitor) VisitOr(c Or) (string, error) {
	return k.children("or", c.Children)
}

func (k keyVisitor) VisitNot(c Not) (string, error) {
	child, err := Visit[string](c.Child, k)
	if err != nil {
		return "", err
	}
	return "not(" + child + ")", nil
}

func (k keyVisitor) VisitTargetEntity(c TargetEntity) (string, error) {
	predicate, err := VisitEntity[string](c.Predicate, k)
	if err != nil {
		return "", err
	}
	return "target(" + predicate + ")", nil
}

func (k keyVisitor) children(name string, children []EdgeCriteria) (string, error) {
	keys := make([]string, 0, len(children))
	for _, child := range children {
		key, err := Visit[string](child, k)
		if err != nil {
			return "", err
		}
		keys = append(keys, key)
	}
	return name + "(" + strings.Join(keys, ",") + ")", nil
}

func (keyVisitor) VisitAnyEntity(AnyEntity) (string, error) {
	return "any-entity", nil
}

func (keyVisitor) VisitEntityTypeIs(c EntityTypeIs) (string, error) {
	return "types(" + canonicalSet(c.Types) + ")", nil
}

func (keyVisitor) VisitHasAnnotation(c HasAnnotation) (string, error) {
	return "annotation(" + strconv.Quote(c.Property) + "," + strconv.Quote(c.Value) + ")", nil
}

func (keyVisitor) VisitIRIPrefix(c IRIPrefix) (string, error) {
	return "prefix(" + strconv.Quote(c.Prefix) + ")", nil
}

func (k keyVisitor) VisitAllEntities(c AllEntities) (string, error) {
	return k.entityChildren("all-entities", c.Children)
}

func (k keyVisitor) VisitAnyOfEntities(c AnyOfEntities) (string, error) {
	return k.entityChildren("any-of-entities", c.Children)
}

func (k keyVisitor) VisitNotEntity(c NotEntity) (string, error) {
	child, err := VisitEntity[string](c.Child, k)
	if err != nil {
		return "", err
	}
	return "not-entity(" + child + ")", nil
}

func (k keyVisitor) entityChildren(name string, children []EntityCriteria) (string, error) {
	keys := make([]string, 0, len(children))
	for _, child := range children {
		key, err := VisitEntity[string](child, k)
		if err != nil {
			return "", err
		}
		keys = append(keys, key)
	}
	return name + "(" + strings.Join(keys, ",") + ")", nil
}

// canonicalSet quotes, sorts and deduplicates the values.
func canonicalSet[S ~string](values []S) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(string(v)))
	}
	slices.Sort(quoted)
	quoted = slices.Compact(quoted)
	return strings.Join(quoted, ",")
}
