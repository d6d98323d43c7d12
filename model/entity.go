package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity is the IRI of a class, property or individual in an ontology.
// Entities are compared and hashed by their IRI.
type Entity string

// String returns the IRI.
func (e Entity) String() string {
	return string(e)
}

// HasPrefix reports whether the IRI starts with prefix.
func (e Entity) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(e), prefix)
}

// EntityType is the OWL entity kind.
type EntityType string

const (
	EntityTypeClass              EntityType = "Class"
	EntityTypeObjectProperty     EntityType = "ObjectProperty"
	EntityTypeDataProperty       EntityType = "DataProperty"
	EntityTypeAnnotationProperty EntityType = "AnnotationProperty"
	EntityTypeNamedIndividual    EntityType = "NamedIndividual"
	EntityTypeDatatype           EntityType = "Datatype"
)

// EntityTypes lists every known entity type.
var EntityTypes = []EntityType{
	EntityTypeClass,
	EntityTypeObjectProperty,
	EntityTypeDataProperty,
	EntityTypeAnnotationProperty,
	EntityTypeNamedIndividual,
	EntityTypeDatatype,
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EntityData is the metadata of an entity as stored in a project.
// Target entity predicates are evaluated against this value only.
type EntityData struct {
	IRI         Entity      `json:"iri"`
	ProjectID   uuid.UUID   `json:"project_id"`
	Type        EntityType  `json:"entity_type,omitempty"`
	Annotations Annotations `json:"annotations,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// HasAnnotation reports whether the entity carries the annotation property.
// An empty value matches any value of the property.
func (d *EntityData) HasAnnotation(property, value string) bool {
	if d == nil {
		return false
	}
	values, ok := d.Annotations[property]
	if !ok {
		return false
	}
	if value == "" {
		return true
	}
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
