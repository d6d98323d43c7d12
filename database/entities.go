package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/ontograph/helper"
	"github.com/siherrmann/ontograph/model"
	"github.com/siherrmann/ontograph/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(ctx context.Context, entity *model.EntityData) error
	SelectEntity(ctx context.Context, projectID uuid.UUID, iri model.Entity) (*model.EntityData, error)
	SelectEntitiesByType(ctx context.Context, projectID uuid.UUID, entityType model.EntityType) ([]*model.EntityData, error)
	DeleteEntity(ctx context.Context, projectID uuid.UUID, iri model.Entity) error
}

// EntitiesDBHandler handles entity-related database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := sql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// InsertEntity inserts an entity or replaces the type and annotations of an existing one
func (h *EntitiesDBHandler) InsertEntity(ctx context.Context, entity *model.EntityData) error {
	if !entity.Type.Valid() {
		return helper.NewError("entity type validation", fmt.Errorf("unknown entity type %q", entity.Type))
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_entity($1, $2, $3, $4)`,
		entity.ProjectID,
		entity.IRI,
		entity.Type,
		entity.Annotations,
	)

	err := row.Scan(
		&entity.ProjectID,
		&entity.IRI,
		&entity.Type,
		&entity.Annotations,
		&entity.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectEntity retrieves an entity of a project by IRI
func (h *EntitiesDBHandler) SelectEntity(ctx context.Context, projectID uuid.UUID, iri model.Entity) (*model.EntityData, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_entity($1, $2)`,
		projectID,
		iri,
	)

	entity := &model.EntityData{}
	err := row.Scan(
		&entity.ProjectID,
		&entity.IRI,
		&entity.Type,
		&entity.Annotations,
		&entity.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntitiesByType retrieves all entities of a type ordered by IRI
func (h *EntitiesDBHandler) SelectEntitiesByType(ctx context.Context, projectID uuid.UUID, entityType model.EntityType) ([]*model.EntityData, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entities_by_type($1, $2)`,
		projectID,
		entityType,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.EntityData
	for rows.Next() {
		entity := &model.EntityData{}
		err := rows.Scan(
			&entity.ProjectID,
			&entity.IRI,
			&entity.Type,
			&entity.Annotations,
			&entity.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}

// DeleteEntity deletes an entity together with the relations that mention it
func (h *EntitiesDBHandler) DeleteEntity(ctx context.Context, projectID uuid.UUID, iri model.Entity) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_entity($1, $2)`,
		projectID,
		iri,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
