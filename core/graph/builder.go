package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/siherrmann/ontograph/helper"
	"github.com/siherrmann/ontograph/model"
	"golang.org/x/sync/errgroup"
)

// ErrStoreUnavailable is returned when the relation source fails during a traversal.
// The partial graph is discarded in that case.
var ErrStoreUnavailable = errors.New("relation store unavailable")

// RelationSource defines the interface for reading relations of an entity
type RelationSource interface {
	GetOutgoingRelations(ctx context.Context, entity model.Entity) ([]*model.Relation, error)
}

// EdgeMatcher decides which relations become edges.
type EdgeMatcher interface {
	Accepts(rel *model.Relation) bool
}

// BuilderFactory creates builders that share a relation source and traversal bounds
type BuilderFactory struct {
	source RelationSource
	config model.GraphConfig
	log    *slog.Logger
}

// NewBuilderFactory creates a new builder factory. A nil logger discards all output.
func NewBuilderFactory(source RelationSource, config model.GraphConfig, logger *slog.Logger) (*BuilderFactory, error) {
	if source == nil {
		return nil, fmt.Errorf("relation source is nil")
	}
	if logger == nil {
		logger = helper.DiscardLogger()
	}

	return &BuilderFactory{
		source: source,
		config: config.WithDefaults(),
		log:    logger,
	}, nil
}

// Config returns the traversal bounds of builders created by the factory.
func (f *BuilderFactory) Config() model.GraphConfig {
	return f.config
}

// Create returns a builder using the given matcher
func (f *BuilderFactory) Create(m EdgeMatcher) *Builder {
	return &Builder{
		source:  f.source,
		matcher: m,
		config:  f.config,
		log:     f.log,
	}
}

// Builder builds the graph reachable from a root entity over accepted relations.
// A Builder holds no traversal state and can be reused.
type Builder struct {
	source  RelationSource
	matcher EdgeMatcher
	config  model.GraphConfig
	log     *slog.Logger
}

// frontierItem is an entity waiting for expansion and its hop distance from the root
type frontierItem struct {
	entity model.Entity
	depth  int
}

// traversal accumulates the graph of a single CreateGraph call
type traversal struct {
	graph   *model.Graph
	visited map[model.Entity]struct{}
	edges   map[model.Edge]struct{}
	queue   []frontierItem
}

func newTraversal(root model.Entity) *traversal {
	return &traversal{
		graph: &model.Graph{
			Root:  root,
			Nodes: []model.Entity{root},
			Edges: []model.Edge{},
		},
		visited: map[model.Entity]struct{}{root: {}},
		edges:   map[model.Edge]struct{}{},
		queue:   []frontierItem{{entity: root}},
	}
}

// truncate marks the graph as partial. The first reason is kept.
func (t *traversal) truncate(reason model.TruncationReason) {
	if t.graph.Truncated {
		return
	}
	t.graph.Truncated = true
	t.graph.TruncationReason = reason
}

// CreateGraph runs a breadth first traversal from root.
//
// Entities are marked visited before they are enqueued, so cycles and diamonds
// expand every entity once. Reaching a bound or a cancelled context returns
// the partial graph with Truncated set and a nil error. A failing relation
// source returns ErrStoreUnavailable and no graph.
func (b *Builder) CreateGraph(ctx context.Context, root model.Entity) (*model.Graph, error) {
	if b.matcher == nil {
		return nil, fmt.Errorf("edge matcher is nil")
	}

	b.log.Debug("Starting entity graph traversal", slog.String("root", root.String()), slog.Int("max_nodes", b.config.MaxNodes), slog.Int("max_depth", b.config.MaxDepth))

	t := newTraversal(root)
	for len(t.queue) > 0 {
		if ctx.Err() != nil {
			t.truncate(model.TruncationCancelled)
			break
		}

		batch := t.queue[:min(len(t.queue), b.batchSize())]
		t.queue = t.queue[len(batch):]

		results := b.fetch(ctx, batch)

		stop := false
		for i, item := range batch {
			if results[i].err != nil {
				if ctx.Err() != nil {
					t.truncate(model.TruncationCancelled)
					stop = true
					break
				}
				return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, results[i].err)
			}
			if !b.expand(t, item, results[i].relations) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
	}

	if t.graph.Truncated {
		b.log.Debug("Truncated entity graph", slog.String("root", root.String()), slog.String("reason", string(t.graph.TruncationReason)), slog.Int("node_count", t.graph.NodeCount()))
	}

	return t.graph, nil
}

// expand adds the accepted relations of item to the graph.
// It returns false when the node bound stops the traversal.
func (b *Builder) expand(t *traversal, item frontierItem, relations []*model.Relation) bool {
	for _, rel := range relations {
		if rel == nil || rel.Source != item.entity || !b.matcher.Accepts(rel) {
			continue
		}

		edge := rel.Edge()
		if _, ok := t.edges[edge]; ok {
			continue
		}

		if _, ok := t.visited[rel.Target]; !ok {
			if b.config.MaxDepth > 0 && item.depth >= b.config.MaxDepth {
				t.truncate(model.TruncationDepthLimit)
				continue
			}
			if b.config.MaxNodes > 0 && len(t.graph.Nodes) >= b.config.MaxNodes {
				t.truncate(model.TruncationNodeLimit)
				return false
			}

			t.visited[rel.Target] = struct{}{}
			t.graph.Nodes = append(t.graph.Nodes, rel.Target)
			t.queue = append(t.queue, frontierItem{entity: rel.Target, depth: item.depth + 1})
		}

		t.edges[edge] = struct{}{}
		t.graph.Edges = append(t.graph.Edges, edge)
	}
	return true
}

func (b *Builder) batchSize() int {
	if b.config.PrefetchWorkers > 1 {
		return b.config.PrefetchWorkers
	}
	return 1
}

// fetchResult holds the relations of one batch entity or the error of fetching them
type fetchResult struct {
	relations []*model.Relation
	err       error
}

// fetch loads the relations of every batch entity. Results keep batch order and
// errors stay with their entity, so an error only surfaces when the traversal
// reaches that entity, as it would in a sequential run.
func (b *Builder) fetch(ctx context.Context, batch []frontierItem) []fetchResult {
	results := make([]fetchResult, len(batch))
	if len(batch) == 1 {
		results[0] = b.fetchOne(ctx, batch[0].entity)
		return results
	}

	var g errgroup.Group
	g.SetLimit(b.batchSize())
	for i, item := range batch {
		g.Go(func() error {
			results[i] = b.fetchOne(ctx, item.entity)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (b *Builder) fetchOne(ctx context.Context, entity model.Entity) fetchResult {
	relations, err := b.source.GetOutgoingRelations(ctx, entity)
	if err != nil {
		return fetchResult{err: helper.NewError(fmt.Sprintf("get relations of %s", entity), err)}
	}
	return fetchResult{relations: relations}
}
