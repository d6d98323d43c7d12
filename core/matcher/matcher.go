// Package matcher compiles edge criteria into matchers that are cheap to
// evaluate inside a traversal loop.
package matcher

import (
	"github.com/siherrmann/ontograph/core/criteria"
	"github.com/siherrmann/ontograph/helper"
	"github.com/siherrmann/ontograph/model"
)

// EdgeMatcher decides whether a relation becomes an edge of the graph.
// Implementations are deterministic, side effect free and safe for concurrent use.
type EdgeMatcher interface {
	Accepts(rel *model.Relation) bool
}

// Factory compiles edge criteria. It holds no state; one Factory can serve
// any number of concurrent requests.
type Factory struct{}

// NewFactory creates a matcher factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateMatcher validates c and compiles it into an EdgeMatcher.
//
// A nil criteria is the empty tree and compiles to a matcher that rejects
// every relation. Malformed criteria return criteria.ErrInvalidCriteria.
// The compiled matcher accepts exactly the relations criteria.Evaluate accepts.
func (f *Factory) CreateMatcher(c criteria.EdgeCriteria) (EdgeMatcher, error) {
	if c == nil {
		return &compiledMatcher{key: "empty", predicate: constant[*model.Relation](false)}, nil
	}

	err := criteria.Validate(c)
	if err != nil {
		return nil, helper.NewError("validate criteria", err)
	}

	key, err := criteria.Key(c)
	if err != nil {
		return nil, helper.NewError("criteria key", err)
	}

	p, err := criteria.Visit[predicate[*model.Relation]](c, compiler{})
	if err != nil {
		return nil, helper.NewError("compile criteria", err)
	}

	return &compiledMatcher{key: key, predicate: p}, nil
}

type compiledMatcher struct {
	key       string
	predicate predicate[*model.Relation]
}

// Accepts reports whether rel is accepted. A nil relation is never accepted.
func (m *compiledMatcher) Accepts(rel *model.Relation) bool {
	if rel == nil {
		return false
	}
	return m.predicate.eval(rel)
}

// String returns the canonical criteria key the matcher was compiled from.
func (m *compiledMatcher) String() string {
	return m.key
}
