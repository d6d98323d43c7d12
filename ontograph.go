// Package ontograph builds bounded graphs of ontology entities and the
// relations between them from a Postgres relation store.
package ontograph

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/ontograph/core/entitygraph"
	"github.com/siherrmann/ontograph/database"
	"github.com/siherrmann/ontograph/helper"
	"github.com/siherrmann/ontograph/model"
	loadSql "github.com/siherrmann/ontograph/sql"
	"go.opentelemetry.io/otel/trace"
)

type (
	// AccessChecker authorizes a caller for a project.
	AccessChecker = entitygraph.AccessChecker
	// AllowAll grants every caller access to every project.
	AllowAll = entitygraph.AllowAll
	// ProjectMembers grants access to the listed callers of each project.
	ProjectMembers = entitygraph.ProjectMembers
	// GetEntityGraphRequest asks for the graph reachable from an entity.
	GetEntityGraphRequest = entitygraph.GetEntityGraphRequest
	// GetEntityGraphResult carries the built graph.
	GetEntityGraphResult = entitygraph.GetEntityGraphResult
)

// ErrPermissionDenied is returned when the access checker rejects a request.
var ErrPermissionDenied = entitygraph.ErrPermissionDenied

// OntoGraph provides a unified interface to the entity and relation stores
// and the entity graph handler
type OntoGraph struct {
	DB        *helper.Database
	Entities  *database.EntitiesDBHandler
	Relations *database.RelationsDBHandler
	Handler   *entitygraph.Handler
	// Logging
	log *slog.Logger
}

// NewOntoGraph creates a new OntoGraph instance with all handlers initialized.
// A zero graph configuration uses the default traversal bounds.
func NewOntoGraph(dbConfig *helper.DatabaseConfiguration, config model.Config) (*OntoGraph, error) {
	// Logger
	logger := helper.NewLogger(os.Stdout, helper.ParseLogLevel(config.LogLevel))

	// Initialize database
	db, err := helper.NewDatabase("ontograph", dbConfig, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}

	err = loadSql.Init(db.Instance)
	if err != nil {
		db.Close()
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		db.Close()
		return nil, helper.NewError("create entities handler", err)
	}

	relations, err := database.NewRelationsDBHandler(db, false)
	if err != nil {
		db.Close()
		return nil, helper.NewError("create relations handler", err)
	}

	handler, err := entitygraph.NewHandler(relations, config.Graph, logger)
	if err != nil {
		db.Close()
		return nil, helper.NewError("create entity graph handler", err)
	}

	return &OntoGraph{
		DB:        db,
		Entities:  entities,
		Relations: relations,
		Handler:   handler,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (o *OntoGraph) Close() error {
	return o.DB.Close()
}

// SetAccessChecker sets the checker run before every graph request. Nil allows all callers.
func (o *OntoGraph) SetAccessChecker(access AccessChecker) {
	o.Handler.SetAccessChecker(access)
}

// SetTracer sets the tracer for request spans
func (o *OntoGraph) SetTracer(tracer trace.Tracer) {
	o.Handler.SetTracer(tracer)
}

// GetEntityGraph builds the graph reachable from req.Entity in req.ProjectID
func (o *OntoGraph) GetEntityGraph(ctx context.Context, req GetEntityGraphRequest) (*GetEntityGraphResult, error) {
	return o.Handler.GetEntityGraph(ctx, req)
}

// ImportEntities inserts entity metadata into a project.
// Returns the number of entities inserted before the first error.
func (o *OntoGraph) ImportEntities(ctx context.Context, projectID uuid.UUID, entities []*model.EntityData) (int, error) {
	for i, entity := range entities {
		entity.ProjectID = projectID
		err := o.Entities.InsertEntity(ctx, entity)
		if err != nil {
			return i, helper.NewError(fmt.Sprintf("insert entity %s", entity.IRI), err)
		}
	}

	o.log.Info("Imported entities", slog.Int("num_entities", len(entities)), slog.String("project_id", projectID.String()))

	return len(entities), nil
}

// ImportRelations inserts relations into a project.
// Returns the number of relations inserted before the first error.
func (o *OntoGraph) ImportRelations(ctx context.Context, projectID uuid.UUID, relations []*model.Relation) (int, error) {
	for i, relation := range relations {
		relation.ProjectID = projectID
		err := o.Relations.InsertRelation(ctx, relation)
		if err != nil {
			return i, helper.NewError(fmt.Sprintf("insert relation %d", i), err)
		}
	}

	o.log.Info("Imported relations", slog.Int("num_relations", len(relations)), slog.String("project_id", projectID.String()))

	return len(relations), nil
}
