package criteria

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/siherrmann/ontograph/helper"
	"github.com/siherrmann/ontograph/model"
	"gopkg.in/yaml.v3"
)

// Discriminators of the serialized form.
const (
	TypeIncludeAny     = "IncludeAny"
	TypeIncludeByLabel = "IncludeByLabel"
	TypeAnd            = "And"
	TypeOr             = "Or"
	TypeNot            = "Not"
	TypeTargetEntity   = "TargetEntity"

	TypeAnyEntity     = "AnyEntity"
	TypeEntityTypeIs  = "EntityTypeIs"
	TypeHasAnnotation = "HasAnnotation"
	TypeIRIPrefix     = "IRIPrefix"
	TypeAllEntities   = "AllEntities"
	TypeAnyOfEntities = "AnyOfEntities"
	TypeNotEntity     = "NotEntity"
)

// wireCriteria is the serialized form shared by edge and entity criteria.
// Composite variants use Criteria (n-ary) or Criterion (unary).
type wireCriteria struct {
	Type      string         `json:"type" yaml:"type"`
	Labels    []string       `json:"labels,omitempty" yaml:"labels,omitempty"`
	Types     []string       `json:"types,omitempty" yaml:"types,omitempty"`
	Property  string         `json:"property,omitempty" yaml:"property,omitempty"`
	Value     string         `json:"value,omitempty" yaml:"value,omitempty"`
	Prefix    string         `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Criteria  []wireCriteria `json:"criteria,omitempty" yaml:"criteria,omitempty"`
	Criterion *wireCriteria  `json:"criterion,omitempty" yaml:"criterion,omitempty"`
	Predicate *wireCriteria  `json:"predicate,omitempty" yaml:"predicate,omitempty"`
}

// Marshal encodes c as JSON with a "type" discriminator on every node.
// A nil criteria encodes as null.
func Marshal(c EdgeCriteria) ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	w, err := Visit[wireCriteria](c, encoder{})
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Unmarshal decodes JSON produced by Marshal. The decoded tree is validated;
// unknown discriminators and malformed nodes are ErrInvalidCriteria.
func Unmarshal(data []byte) (EdgeCriteria, error) {
	var w *wireCriteria
	err := json.Unmarshal(data, &w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	if w == nil {
		return nil, nil
	}
	return decodeValidated(*w)
}

// LoadFile reads saved criteria from a .json, .yaml or .yml file.
func LoadFile(path string) (EdgeCriteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read criteria file", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var w wireCriteria
		err = yaml.Unmarshal(data, &w)
		if err != nil {
			return nil, helper.NewError("parse criteria file", fmt.Errorf("%w: %v", ErrInvalidCriteria, err))
		}
		c, err := decodeValidated(w)
		if err != nil {
			return nil, helper.NewError("parse criteria file", err)
		}
		return c, nil
	default:
		c, err := Unmarshal(data)
		if err != nil {
			return nil, helper.NewError("parse criteria file", err)
		}
		return c, nil
	}
}

func decodeValidated(w wireCriteria) (EdgeCriteria, error) {
	c, err := decodeEdge(w)
	if err != nil {
		return nil, err
	}
	err = Validate(c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func decodeEdge(w wireCriteria) (EdgeCriteria, error) {
	switch w.Type {
	case TypeIncludeAny:
		return IncludeAny{}, nil
	case TypeIncludeByLabel:
		labels := make([]model.RelationLabel, 0, len(w.Labels))
		for _, l := range w.Labels {
			labels = append(labels, model.RelationLabel(l))
		}
		return IncludeByLabel{Labels: labels}, nil
	case TypeAnd, TypeOr:
		children := make([]EdgeCriteria, 0, len(w.Criteria))
		for _, child := range w.Criteria {
			c, err := decodeEdge(child)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		if w.Type == TypeAnd {
			return And{Children: children}, nil
		}
		return Or{Children: children}, nil
	case TypeNot:
		if w.Criterion == nil {
			return nil, fmt.Errorf("%w: %s without criterion", ErrInvalidCriteria, TypeNot)
		}
		child, err := decodeEdge(*w.Criterion)
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil
	case TypeTargetEntity:
		if w.Predicate == nil {
			return nil, fmt.Errorf("%w: %s without predicate", ErrInvalidCriteria, TypeTargetEntity)
		}
		predicate, err := decodeEntity(*w.Predicate)
		if err != nil {
			return nil, err
		}
		return TargetEntity{Predicate: predicate}, nil
	}
	return nil, fmt.Errorf("%w: unknown edge criteria type %q", ErrInvalidCriteria, w.Type)
}

func decodeEntity(w wireCriteria) (EntityCriteria, error) {
	switch w.Type {
	case TypeAnyEntity:
		return AnyEntity{}, nil
	case TypeEntityTypeIs:
		types := make([]model.EntityType, 0, len(w.Types))
		for _, t := range w.Types {
			types = append(types, model.EntityType(t))
		}
		return EntityTypeIs{Types: types}, nil
	case TypeHasAnnotation:
		return HasAnnotation{Property: w.Property, Value: w.Value}, nil
	case TypeIRIPrefix:
		return IRIPrefix{Prefix: w.Prefix}, nil
	case TypeAllEntities, TypeAnyOfEntities:
		children := make([]EntityCriteria, 0, len(w.Criteria))
		for _, child := range w.Criteria {
			c, err := decodeEntity(child)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		if w.Type == TypeAllEntities {
			return AllEntities{Children: children}, nil
		}
		return AnyOfEntities{Children: children}, nil
	case TypeNotEntity:
		if w.Criterion == nil {
			return nil, fmt.Errorf("%w: %s without criterion", ErrInvalidCriteria, TypeNotEntity)
		}
		child, err := decodeEntity(*w.Criterion)
		if err != nil {
			return nil, err
		}
		return NotEntity{Child: child}, nil
	}
	return nil, fmt.Errorf("%w: unknown entity criteria type %q", ErrInvalidCriteria, w.Type)
}

type encoder struct{}

func (encoder) VisitIncludeAny(IncludeAny) (wireCriteria, error) {
	return wireCriteria{Type: TypeIncludeAny}, nil
}

func (encoder) VisitIncludeByLabel(c IncludeByLabel) (wireCriteria, error) {
	labels := make([]string, 0, len(c.Labels))
	for _, l := range c.Labels {
		labels = append(labels, string(l))
	}
	return wireCriteria{Type: TypeIncludeByLabel, Labels: labels}, nil
}

func (e encoder) VisitAnd(c And) (wireCriteria, error) {
	return e.children(TypeAnd, c.Children)
}

func (e encoder) VisitOr(c Or) (wireCriteria, error) {
	return e.children(TypeOr, c.Children)
}

func (e encoder) VisitNot(c Not) (wireCriteria, error) {
	child, err := Visit[wireCriteria](c.Child, e)
	if err != nil {
		return wireCriteria{}, err
	}
	return wireCriteria{Type: TypeNot, Criterion: &child}, nil
}

func (e encoder) VisitTargetEntity(c TargetEntity) (wireCriteria, error) {
	predicate, err := VisitEntity[wireCriteria](c.Predicate, e)
	if err != nil {
		return wireCriteria{}, err
	}
	return wireCriteria{Type: TypeTargetEntity, Predicate: &predicate}, nil
}

func (e encoder) children(typ string, children []EdgeCriteria) (wireCriteria, error) {
	w := wireCriteria{Type: typ}
	for _, child := range children {
		encoded, err := Visit[wireCriteria](child, e)
		if err != nil {
			return wireCriteria{}, err
		}
		w.Criteria = append(w.Criteria, encoded)
	}
	return w, nil
}

func (encoder) VisitAnyEntity(AnyEntity) (wireCriteria, error) {
	return wireCriteria{Type: TypeAnyEntity}, nil
}

func (encoder) VisitEntityTypeIs(c EntityTypeIs) (wireCriteria, error) {
	types := make([]string, 0, len(c.Types))
	for _, t := range c.Types {
		types = append(types, string(t))
	}
	return wireCriteria{Type: TypeEntityTypeIs, Types: types}, nil
}

func (encoder) VisitHasAnnotation(c HasAnnotation) (wireCriteria, error) {
	return wireCriteria{Type: TypeHasAnnotation, Property: c.Property, Value: c.Value}, nil
}

func (encoder) VisitIRIPrefix(c IRIPrefix) (wireCriteria, error) {
	return wireCriteria{Type: TypeIRIPrefix, Prefix: c.Prefix}, nil
}

func (e encoder) VisitAllEntities(c AllEntities) (wireCriteria, error) {
	return e.entityChildren(TypeAllEntities, c.Children)
}

func (e encoder) VisitAnyOfEntities(c AnyOfEntities) (wireCriteria, error) {
	return e.entityChildren(TypeAnyOfEntities, c.Children)
}

func (e encoder) VisitNotEntity(c NotEntity) (wireCriteria, error) {
	child, err := VisitEntity[wireCriteria](c.Child, e)
	if err != nil {
		return wireCriteria{}, err
	}
	return wireCriteria{Type: TypeNotEntity, Criterion: &child}, nil
}

func (e encoder) entityChildren(typ string, children []EntityCriteria) (wireCriteria, error) {
	w := wireCriteria{Type: typ}
	for _, child := range children {
		encoded, err := VisitEntity[wireCriteria](child, e)
		if err != nil {
			return wireCriteria{}, err
		}
		w.Criteria = append(w.Criteria, encoded)
	}
	return w, nil
}
