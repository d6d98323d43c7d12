package graph

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/siherrmann/ontograph/core/criteria"
	"github.com/siherrmann/ontograph/core/matcher"
	"github.com/siherrmann/ontograph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sub  model.RelationLabel = model.RelationLabelSubClassOf
	prop model.RelationLabel = "http://example.org#partOf"
)

// MockRelationSource is a mock implementation of RelationSource for testing
type MockRelationSource struct {
	mu        sync.Mutex
	relations map[model.Entity][]*model.Relation
	failing   map[model.Entity]error
	calls     map[model.Entity]int
	onCall    func(entity model.Entity)
}

func NewMockRelationSource() *MockRelationSource {
	return &MockRelationSource{
		relations: make(map[model.Entity][]*model.Relation),
		failing:   make(map[model.Entity]error),
		calls:     make(map[model.Entity]int),
	}
}

func (m *MockRelationSource) Add(source model.Entity, label model.RelationLabel, target model.Entity) *MockRelationSource {
	m.relations[source] = append(m.relations[source], model.NewRelation(source, label, target))
	return m
}

func (m *MockRelationSource) GetOutgoingRelations(ctx context.Context, entity model.Entity) ([]*model.Relation, error) {
	m.mu.Lock()
	m.calls[entity]++
	onCall := m.onCall
	err := m.failing[entity]
	m.mu.Unlock()

	if onCall != nil {
		onCall(entity)
	}
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return m.relations[entity], nil
}

func (m *MockRelationSource) Calls(entity model.Entity) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[entity]
}

// cancellingSource cancels the traversal while fetching one entity,
// after the relations of another entity were returned
type cancellingSource struct {
	*MockRelationSource
	after      model.Entity
	cancelling model.Entity
	done       chan struct{}
	cancel     context.CancelFunc
}

func (s *cancellingSource) GetOutgoingRelations(ctx context.Context, entity model.Entity) ([]*model.Relation, error) {
	if entity == s.cancelling {
		<-s.done
		s.cancel()
		return nil, context.Canceled
	}
	relations, err := s.MockRelationSource.GetOutgoingRelations(ctx, entity)
	if entity == s.after {
		close(s.done)
	}
	return relations, err
}

func createBuilder(t *testing.T, source RelationSource, config model.GraphConfig, c criteria.EdgeCriteria) *Builder {
	t.Helper()
	factory, err := NewBuilderFactory(source, config, nil)
	require.NoError(t, err, "Expected NewBuilderFactory to not return an error")

	m, err := matcher.NewFactory().CreateMatcher(c)
	require.NoError(t, err, "Expected CreateMatcher to not return an error")
	return factory.Create(m)
}

func edge(source model.Entity, label model.RelationLabel, target model.Entity) model.Edge {
	return model.Edge{Source: source, Label: label, Target: target}
}

func TestNewBuilderFactory(t *testing.T) {
	t.Run("Nil source", func(t *testing.T) {
		factory, err := NewBuilderFactory(nil, model.DefaultGraphConfig(), nil)
		assert.Error(t, err, "Expected an error for a nil source")
		assert.Nil(t, factory)
	})

	t.Run("Valid source", func(t *testing.T) {
		factory, err := NewBuilderFactory(NewMockRelationSource(), model.DefaultGraphConfig(), nil)
		require.NoError(t, err)
		assert.Equal(t, 500, factory.Config().MaxNodes)
		assert.NotNil(t, factory.Create(nil))
	})

	t.Run("Zero config uses the default bounds", func(t *testing.T) {
		factory, err := NewBuilderFactory(NewMockRelationSource(), model.GraphConfig{}, nil)
		require.NoError(t, err)
		assert.Equal(t, model.DefaultGraphConfig(), factory.Config())
	})

	t.Run("Nil matcher fails on build", func(t *testing.T) {
		factory, err := NewBuilderFactory(NewMockRelationSource(), model.DefaultGraphConfig(), nil)
		require.NoError(t, err)
		graph, err := factory.Create(nil).CreateGraph(context.Background(), "A")
		assert.Error(t, err)
		assert.Nil(t, graph)
	})
}

func TestCreateGraph(t *testing.T) {
	ctx := context.Background()

	t.Run("Cycle terminates", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B").Add("B", sub, "A")
		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err, "Expected CreateGraph to not return an error")
		assert.Equal(t, []model.Entity{"A", "B"}, graph.Nodes)
		assert.ElementsMatch(t, []model.Edge{edge("A", sub, "B"), edge("B", sub, "A")}, graph.Edges)
		assert.False(t, graph.Truncated)
		assert.Equal(t, 1, source.Calls("A"), "Expected A to be expanded once")
		assert.Equal(t, 1, source.Calls("B"), "Expected B to be expanded once")
	})

	t.Run("Label filter excludes edges and nodes", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B").Add("A", prop, "C")
		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.NewIncludeByLabel(sub)).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, []model.Entity{"A", "B"}, graph.Nodes)
		assert.Equal(t, []model.Edge{edge("A", sub, "B")}, graph.Edges)
		assert.False(t, graph.ContainsNode("C"))
		assert.Equal(t, 0, source.Calls("C"), "Expected C to never be queried")
	})

	t.Run("Node bound truncates", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B").Add("B", sub, "C").Add("C", sub, "D")
		config := model.GraphConfig{MaxNodes: 2}
		graph, err := createBuilder(t, source, config, criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err, "Expected truncation to not be an error")
		assert.Equal(t, 2, graph.NodeCount())
		assert.Equal(t, []model.Entity{"A", "B"}, graph.Nodes)
		assert.Equal(t, []model.Edge{edge("A", sub, "B")}, graph.Edges)
		assert.True(t, graph.Truncated)
		assert.Equal(t, model.TruncationNodeLimit, graph.TruncationReason)
	})

	t.Run("Node bound equal to graph size does not truncate", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B").Add("B", sub, "A")
		graph, err := createBuilder(t, source, model.GraphConfig{MaxNodes: 2}, criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, 2, graph.EdgeCount(), "Expected edges between admitted nodes to be kept")
		assert.False(t, graph.Truncated)
	})

	t.Run("Isolated root", func(t *testing.T) {
		graph, err := createBuilder(t, NewMockRelationSource(), model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, model.Entity("A"), graph.Root)
		assert.Equal(t, []model.Entity{"A"}, graph.Nodes)
		assert.Empty(t, graph.Edges)
		assert.NotNil(t, graph.Edges, "Expected an empty, non nil edge list")
		assert.False(t, graph.Truncated)
	})

	t.Run("Reject all criteria returns only the root", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B")
		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), nil).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, []model.Entity{"A"}, graph.Nodes)
		assert.Empty(t, graph.Edges)
	})

	t.Run("Diamond expands shared node once", func(t *testing.T) {
		source := NewMockRelationSource().
			Add("A", sub, "B").Add("A", sub, "C").
			Add("B", sub, "D").Add("C", sub, "D")
		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, []model.Entity{"A", "B", "C", "D"}, graph.Nodes)
		assert.Equal(t, 4, graph.EdgeCount())
		assert.True(t, graph.ContainsEdge(edge("C", sub, "D")))
		assert.Equal(t, 1, source.Calls("D"))
	})

	t.Run("Duplicate relations become one edge", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B").Add("A", sub, "B").Add("A", prop, "B")
		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, []model.Edge{edge("A", sub, "B"), edge("A", prop, "B")}, graph.Edges)
	})

	t.Run("Self loop", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "A")
		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, []model.Entity{"A"}, graph.Nodes)
		assert.Equal(t, []model.Edge{edge("A", sub, "A")}, graph.Edges)
	})

	t.Run("Nil relations are skipped", func(t *testing.T) {
		source := NewMockRelationSource()
		source.relations["A"] = []*model.Relation{nil, model.NewRelation("A", sub, "B")}
		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, 1, graph.EdgeCount())
	})

	t.Run("Depth bound", func(t *testing.T) {
		source := NewMockRelationSource().
			Add("A", sub, "B").Add("B", sub, "C").Add("C", sub, "D").
			Add("B", prop, "A")
		graph, err := createBuilder(t, source, model.GraphConfig{MaxDepth: 1}, criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, []model.Entity{"A", "B"}, graph.Nodes)
		assert.ElementsMatch(t, []model.Edge{edge("A", sub, "B"), edge("B", prop, "A")}, graph.Edges, "Expected edges back to known nodes to be kept")
		assert.True(t, graph.Truncated)
		assert.Equal(t, model.TruncationDepthLimit, graph.TruncationReason)
		assert.Equal(t, 0, source.Calls("C"))
	})

	t.Run("Depth bound without new nodes does not truncate", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B").Add("B", sub, "A")
		graph, err := createBuilder(t, source, model.GraphConfig{MaxDepth: 1}, criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.False(t, graph.Truncated)
		assert.Equal(t, 2, graph.EdgeCount())
	})

	t.Run("Store failure discards the graph", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B").Add("B", sub, "C")
		source.failing["B"] = fmt.Errorf("connection refused")
		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(ctx, "A")

		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.ErrorContains(t, err, "connection refused")
		assert.Nil(t, graph, "Expected no partial graph on store failure")
	})

	t.Run("Store failure on root", func(t *testing.T) {
		source := NewMockRelationSource()
		source.failing["A"] = assert.AnError
		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(ctx, "A")

		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, graph)
	})

	t.Run("Relations of another source are skipped", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B")
		source.relations["A"] = append(source.relations["A"], model.NewRelation("X", sub, "Y"))

		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(ctx, "A")

		require.NoError(t, err)
		assert.Equal(t, []model.Entity{"A", "B"}, graph.Nodes)
		assert.Equal(t, []model.Edge{edge("A", sub, "B")}, graph.Edges)
	})

	t.Run("Cancelled context returns the root", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B")
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(cancelled, "A")

		require.NoError(t, err, "Expected cancellation to not be an error")
		assert.Equal(t, []model.Entity{"A"}, graph.Nodes)
		assert.True(t, graph.Truncated)
		assert.Equal(t, model.TruncationCancelled, graph.TruncationReason)
		assert.Equal(t, 0, source.Calls("A"))
	})

	t.Run("Cancellation during traversal returns the partial graph", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B").Add("B", sub, "C").Add("C", sub, "D")
		cancelled, cancel := context.WithCancel(ctx)
		defer cancel()
		source.onCall = func(entity model.Entity) {
			if entity == "B" {
				cancel()
			}
		}

		graph, err := createBuilder(t, source, model.DefaultGraphConfig(), criteria.IncludeAny{}).CreateGraph(cancelled, "A")

		require.NoError(t, err)
		assert.Equal(t, []model.Entity{"A", "B"}, graph.Nodes)
		assert.True(t, graph.Truncated)
		assert.Equal(t, model.TruncationCancelled, graph.TruncationReason)
		assert.Equal(t, 0, source.Calls("C"))
	})
}

func TestCreateGraphPrefetch(t *testing.T) {
	ctx := context.Background()

	wide := NewMockRelationSource()
	for i := 0; i < 6; i++ {
		child := model.Entity(fmt.Sprintf("C%d", i))
		wide.Add("A", sub, child)
		wide.Add(child, prop, model.Entity(fmt.Sprintf("G%d", i)))
		wide.Add(child, sub, "A")
		if i > 0 {
			wide.Add(child, prop, model.Entity(fmt.Sprintf("G%d", i-1)))
		}
	}

	t.Run("Prefetch matches sequential traversal", func(t *testing.T) {
		sequential, err := createBuilder(t, wide, model.GraphConfig{MaxNodes: 100, PrefetchWorkers: 1}, criteria.IncludeAny{}).CreateGraph(ctx, "A")
		require.NoError(t, err)

		for _, workers := range []int{2, 3, 8} {
			prefetched, err := createBuilder(t, wide, model.GraphConfig{MaxNodes: 100, PrefetchWorkers: workers}, criteria.IncludeAny{}).CreateGraph(ctx, "A")
			require.NoError(t, err)
			assert.Equal(t, sequential, prefetched, "Expected %d workers to produce the sequential graph", workers)
		}
	})

	t.Run("Prefetch respects the node bound", func(t *testing.T) {
		sequential, err := createBuilder(t, wide, model.GraphConfig{MaxNodes: 9}, criteria.IncludeAny{}).CreateGraph(ctx, "A")
		require.NoError(t, err)

		prefetched, err := createBuilder(t, wide, model.GraphConfig{MaxNodes: 9, PrefetchWorkers: 4}, criteria.IncludeAny{}).CreateGraph(ctx, "A")
		require.NoError(t, err)

		assert.Equal(t, 9, prefetched.NodeCount())
		assert.True(t, prefetched.Truncated)
		assert.Equal(t, sequential, prefetched)
	})

	t.Run("Prefetch surfaces store failures", func(t *testing.T) {
		source := NewMockRelationSource().Add("A", sub, "B").Add("A", sub, "C")
		source.failing["C"] = assert.AnError

		graph, err := createBuilder(t, source, model.GraphConfig{PrefetchWorkers: 4}, criteria.IncludeAny{}).CreateGraph(ctx, "A")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Nil(t, graph)
	})

	t.Run("Failure past the node bound is ignored like in a sequential run", func(t *testing.T) {
		newSource := func() *MockRelationSource {
			source := NewMockRelationSource().Add("A", sub, "B").Add("A", sub, "C").Add("B", sub, "D")
			source.failing["C"] = assert.AnError
			return source
		}

		sequentialSource := newSource()
		sequential, err := createBuilder(t, sequentialSource, model.GraphConfig{MaxNodes: 3}, criteria.IncludeAny{}).CreateGraph(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, []model.Entity{"A", "B", "C"}, sequential.Nodes)
		assert.Equal(t, model.TruncationNodeLimit, sequential.TruncationReason)
		assert.Equal(t, 0, sequentialSource.Calls("C"))

		prefetched, err := createBuilder(t, newSource(), model.GraphConfig{MaxNodes: 3, PrefetchWorkers: 2}, criteria.IncludeAny{}).CreateGraph(ctx, "A")
		require.NoError(t, err, "Expected the failure of C to not surface before C is expanded")
		assert.Equal(t, sequential, prefetched)
	})

	t.Run("Fetched relations are expanded before a later failure", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		defer cancel()
		source := &cancellingSource{
			MockRelationSource: NewMockRelationSource().Add("A", sub, "B").Add("A", sub, "C").Add("B", sub, "D"),
			after:              "B",
			cancelling:         "C",
			done:               make(chan struct{}),
			cancel:             cancel,
		}

		graph, err := createBuilder(t, source, model.GraphConfig{PrefetchWorkers: 2}, criteria.IncludeAny{}).CreateGraph(cancelled, "A")

		require.NoError(t, err)
		assert.Equal(t, []model.Entity{"A", "B", "C", "D"}, graph.Nodes, "Expected the relations of B to be expanded")
		assert.True(t, graph.Truncated)
		assert.Equal(t, model.TruncationCancelled, graph.TruncationReason)
	})
}
