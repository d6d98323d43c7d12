package entitygraph

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/siherrmann/ontograph/core/criteria"
	"github.com/siherrmann/ontograph/helper"
	"github.com/siherrmann/ontograph/model"
)

// GetEntityGraphRequest asks for the graph reachable from Entity within a project.
// Caller is set by the transport from the authenticated identity and is not serialized.
type GetEntityGraphRequest struct {
	Caller       string                `json:"-"`
	ProjectID    uuid.UUID             `json:"project_id"`
	Entity       model.Entity          `json:"entity"`
	EdgeCriteria criteria.EdgeCriteria `json:"edge_criteria"`
}

type wireRequest struct {
	ProjectID    uuid.UUID       `json:"project_id"`
	Entity       model.Entity    `json:"entity"`
	EdgeCriteria json.RawMessage `json:"edge_criteria"`
}

// MarshalJSON encodes the request with the criteria codec.
func (r GetEntityGraphRequest) MarshalJSON() ([]byte, error) {
	c, err := criteria.Marshal(r.EdgeCriteria)
	if err != nil {
		return nil, helper.NewError("marshal edge criteria", err)
	}
	return json.Marshal(wireRequest{
		ProjectID:    r.ProjectID,
		Entity:       r.Entity,
		EdgeCriteria: c,
	})
}

// UnmarshalJSON decodes the request. A malformed criteria tree is criteria.ErrInvalidCriteria.
func (r *GetEntityGraphRequest) UnmarshalJSON(data []byte) error {
	var w wireRequest
	err := json.Unmarshal(data, &w)
	if err != nil {
		return helper.NewError("unmarshal request", err)
	}

	var c criteria.EdgeCriteria
	if len(w.EdgeCriteria) > 0 {
		c, err = criteria.Unmarshal(w.EdgeCriteria)
		if err != nil {
			return helper.NewError("unmarshal edge criteria", err)
		}
	}

	r.ProjectID = w.ProjectID
	r.Entity = w.Entity
	r.EdgeCriteria = c
	return nil
}

// GetEntityGraphResult carries the built graph.
type GetEntityGraphResult struct {
	Graph *model.Graph `json:"graph"`
}
