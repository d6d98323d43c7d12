package model

import (
	"time"

	"github.com/google/uuid"
)

// RelationLabel names the kind of a relation, either a well-known axiom kind
// or the IRI of an object/annotation property.
type RelationLabel string

const (
	RelationLabelSubClassOf    RelationLabel = "subClassOf"
	RelationLabelInstanceOf    RelationLabel = "instanceOf"
	RelationLabelSubPropertyOf RelationLabel = "subPropertyOf"
	RelationLabelDomain        RelationLabel = "domain"
	RelationLabelRange         RelationLabel = "range"
)

// Relation is one directed, labeled edge candidate as returned by a relation source.
// TargetData is optional and not part of the relation's identity.
type Relation struct {
	ID         uuid.UUID     `json:"id"`
	ProjectID  uuid.UUID     `json:"project_id"`
	Source     Entity        `json:"source"`
	Label      RelationLabel `json:"label"`
	Target     Entity        `json:"target"`
	TargetData *EntityData   `json:"target_data,omitempty"`
	Metadata   Metadata      `json:"metadata,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewRelation creates a relation without any stored attributes.
func NewRelation(source Entity, label RelationLabel, target Entity) *Relation {
	return &Relation{
		Source: source,
		Label:  label,
		Target: target,
	}
}

// WithTargetData attaches target metadata and returns the relation for chaining.
func (r *Relation) WithTargetData(data *EntityData) *Relation {
	r.TargetData = data
	return r
}

// Edge returns the identity triple of the relation.
func (r *Relation) Edge() Edge {
	return Edge{
		Source: r.Source,
		Label:  r.Label,
		Target: r.Target,
	}
}

// Edge is the identity of a relation instance and the edge type of a Graph.
// It is comparable and used directly as a set key.
type Edge struct {
	Source Entity        `json:"source"`
	Label  RelationLabel `json:"label"`
	Target Entity        `json:"target"`
}
