// Package entitygraph serves entity graph requests: it authorizes the caller,
// compiles the edge criteria, runs the graph builder and reports the result.
package entitygraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/ontograph/core/criteria"
	"github.com/siherrmann/ontograph/core/graph"
	"github.com/siherrmann/ontograph/core/matcher"
	"github.com/siherrmann/ontograph/helper"
	"github.com/siherrmann/ontograph/metrics"
	"github.com/siherrmann/ontograph/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidRequest is returned for requests without a root entity.
var ErrInvalidRequest = errors.New("invalid request")

// SourceProvider returns the relation source of a project.
type SourceProvider interface {
	RelationSource(projectID uuid.UUID) graph.RelationSource
}

// SourceProviderFunc adapts a function to a SourceProvider.
type SourceProviderFunc func(projectID uuid.UUID) graph.RelationSource

// RelationSource calls f.
func (f SourceProviderFunc) RelationSource(projectID uuid.UUID) graph.RelationSource {
	return f(projectID)
}

// Handler builds entity graphs for authorized requests.
// It is safe for concurrent use as long as the setters are not called concurrently.
type Handler struct {
	sources  SourceProvider
	access   AccessChecker
	matchers *matcher.Factory
	config   model.GraphConfig
	tracer   trace.Tracer
	log      *slog.Logger
}

// NewHandler creates a handler that allows every caller. A nil logger discards all output.
func NewHandler(sources SourceProvider, config model.GraphConfig, logger *slog.Logger) (*Handler, error) {
	if sources == nil {
		return nil, fmt.Errorf("source provider is nil")
	}
	if logger == nil {
		logger = helper.DiscardLogger()
	}

	return &Handler{
		sources:  sources,
		access:   AllowAll{},
		matchers: matcher.NewFactory(),
		config:   config.WithDefaults(),
		tracer:   otel.Tracer("github.com/siherrmann/ontograph"),
		log:      logger,
	}, nil
}

// SetAccessChecker replaces the access checker. Nil restores AllowAll.
func (h *Handler) SetAccessChecker(access AccessChecker) {
	if access == nil {
		access = AllowAll{}
	}
	h.access = access
}

// SetTracer replaces the tracer used for request spans.
func (h *Handler) SetTracer(tracer trace.Tracer) {
	if tracer != nil {
		h.tracer = tracer
	}
}

// GetEntityGraph builds the graph reachable from req.Entity.
//
// A rejected access check is ErrPermissionDenied, malformed criteria are
// criteria.ErrInvalidCriteria and a failing store is graph.ErrStoreUnavailable.
// A truncated graph is a successful result with Graph.Truncated set.
func (h *Handler) GetEntityGraph(ctx context.Context, req GetEntityGraphRequest) (*GetEntityGraphResult, error) {
	ctx, span := h.tracer.Start(ctx, "GetEntityGraph")
	defer span.End()

	span.SetAttributes(
		attribute.String("project_id", req.ProjectID.String()),
		attribute.String("entity", req.Entity.String()),
	)

	result, err := h.getEntityGraph(ctx, req, span)
	if err != nil {
		metrics.GraphBuildsTotal.WithLabelValues(outcome(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "Created entity graph")
	return result, nil
}

func (h *Handler) getEntityGraph(ctx context.Context, req GetEntityGraphRequest, span trace.Span) (*GetEntityGraphResult, error) {
	if req.Entity == "" {
		return nil, fmt.Errorf("%w: entity is empty", ErrInvalidRequest)
	}

	err := h.access.CheckAccess(ctx, req.Caller, req.ProjectID)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return nil, helper.NewError("check access", err)
		}
		return nil, helper.NewError("check access", fmt.Errorf("%w: %w", ErrPermissionDenied, err))
	}

	factory, err := graph.NewBuilderFactory(h.sources.RelationSource(req.ProjectID), h.config, h.log)
	if err != nil {
		return nil, helper.NewError("create builder factory", err)
	}

	start := time.Now()

	m, err := h.matchers.CreateMatcher(req.EdgeCriteria)
	if err != nil {
		return nil, helper.NewError("create matcher", err)
	}

	g, err := factory.Create(m).CreateGraph(ctx, req.Entity)
	if err != nil {
		return nil, helper.NewError("create graph", err)
	}

	elapsed := time.Since(start)

	h.log.Debug(
		"Created entity graph",
		slog.Int("node_count", g.NodeCount()),
		slog.Int("edge_count", g.EdgeCount()),
		slog.Int64("elapsed_ms", elapsed.Milliseconds()),
		slog.Bool("truncated", g.Truncated),
	)

	span.SetAttributes(
		attribute.Int("node_count", g.NodeCount()),
		attribute.Int("edge_count", g.EdgeCount()),
		attribute.Int64("elapsed_ms", elapsed.Milliseconds()),
		attribute.Bool("truncated", g.Truncated),
	)

	metrics.GraphBuildDuration.Observe(elapsed.Seconds())
	metrics.GraphNodes.Observe(float64(g.NodeCount()))
	if g.Truncated {
		metrics.GraphBuildsTotal.WithLabelValues(metrics.OutcomeTruncated).Inc()
		metrics.GraphTruncationsTotal.WithLabelValues(string(g.TruncationReason)).Inc()
	} else {
		metrics.GraphBuildsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}

	return &GetEntityGraphResult{Graph: g}, nil
}

// outcome maps an error to its GraphBuildsTotal label
func outcome(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return metrics.OutcomePermissionDenied
	case errors.Is(err, ErrInvalidRequest):
		return metrics.OutcomeInvalidRequest
	case errors.Is(err, criteria.ErrInvalidCriteria):
		return metrics.OutcomeInvalidCriteria
	case errors.Is(err, graph.ErrStoreUnavailable):
		return metrics.OutcomeStoreUnavailable
	default:
		return metrics.OutcomeError
	}
}
