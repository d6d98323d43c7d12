package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/ontograph/core/graph"
	"github.com/siherrmann/ontograph/helper"
	"github.com/siherrmann/ontograph/model"
	loadSql "github.com/siherrmann/ontograph/sql"
)

// RelationsDBHandlerFunctions defines the interface for Relations database operations.
type RelationsDBHandlerFunctions interface {
	InsertRelation(ctx context.Context, relation *model.Relation) error
	SelectRelation(ctx context.Context, id uuid.UUID) (*model.Relation, error)
	SelectRelationsFromEntity(ctx context.Context, projectID uuid.UUID, source model.Entity) ([]*model.Relation, error)
	SelectRelationLabels(ctx context.Context, projectID uuid.UUID) (map[model.RelationLabel]int, error)
	DeleteRelation(ctx context.Context, id uuid.UUID) error
	RelationSource(projectID uuid.UUID) graph.RelationSource
}

// RelationsDBHandler handles relation-related database operations
type RelationsDBHandler struct {
	db *helper.Database
}

// NewRelationsDBHandler creates a new relations database handler.
// It initializes the database connection and loads relation-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRelationsDBHandler(db *helper.Database, force bool) (*RelationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationsDbHandler := &RelationsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationsSql(relationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relations sql", err)
	}

	err = relationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationsDBHandler")

	return relationsDbHandler, nil
}

// CreateTable creates the 'relations' table in the database.
// If the table already exists, it does not create it again.
// It also creates the source and target indexes.
func (h *RelationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relations();`)
	if err != nil {
		log.Panicf("error initializing relations table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table relations")

	return nil
}

// InsertRelation inserts a relation. Inserting an existing triple replaces its metadata.
func (h *RelationsDBHandler) InsertRelation(ctx context.Context, relation *model.Relation) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_relation($1, $2, $3, $4, $5)`,
		relation.ProjectID,
		relation.Source,
		relation.Label,
		relation.Target,
		relation.Metadata,
	)

	err := row.Scan(
		&relation.ID,
		&relation.ProjectID,
		&relation.Source,
		&relation.Label,
		&relation.Target,
		&relation.Metadata,
		&relation.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectRelation retrieves a relation by ID
func (h *RelationsDBHandler) SelectRelation(ctx context.Context, id uuid.UUID) (*model.Relation, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_relation($1)`,
		id,
	)

	relation := &model.Relation{}
	err := row.Scan(
		&relation.ID,
		&relation.ProjectID,
		&relation.Source,
		&relation.Label,
		&relation.Target,
		&relation.Metadata,
		&relation.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return relation, nil
}

// SelectRelationsFromEntity retrieves the outgoing relations of an entity ordered by label and target.
// TargetData is set when the target has an entities row in the same project.
func (h *RelationsDBHandler) SelectRelationsFromEntity(ctx context.Context, projectID uuid.UUID, source model.Entity) ([]*model.Relation, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relations_from_entity($1, $2)`,
		projectID,
		source,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	relations := []*model.Relation{}
	for rows.Next() {
		relation := &model.Relation{}
		var targetType sql.NullString
		var targetAnnotations []byte

		err := rows.Scan(
			&relation.ID,
			&relation.ProjectID,
			&relation.Source,
			&relation.Label,
			&relation.Target,
			&relation.Metadata,
			&relation.CreatedAt,
			&targetType,
			&targetAnnotations,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		if targetType.Valid {
			data := &model.EntityData{
				IRI:       relation.Target,
				ProjectID: relation.ProjectID,
				Type:      model.EntityType(targetType.String),
			}
			err = data.Annotations.Scan(targetAnnotations)
			if err != nil {
				return nil, helper.NewError("scan annotations", err)
			}
			relation.TargetData = data
		}

		relations = append(relations, relation)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return relations, nil
}

// SelectRelationLabels counts the relations of a project per label
func (h *RelationsDBHandler) SelectRelationLabels(ctx context.Context, projectID uuid.UUID) (map[model.RelationLabel]int, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relation_labels($1)`,
		projectID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	labels := map[model.RelationLabel]int{}
	for rows.Next() {
		var label model.RelationLabel
		var count int
		err := rows.Scan(&label, &count)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		labels[label] = count
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return labels, nil
}

// DeleteRelation deletes a relation by ID
func (h *RelationsDBHandler) DeleteRelation(ctx context.Context, id uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_relation($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// RelationSource returns the relations of one project as a graph.RelationSource
func (h *RelationsDBHandler) RelationSource(projectID uuid.UUID) graph.RelationSource {
	return &projectRelations{handler: h, projectID: projectID}
}

type projectRelations struct {
	handler   *RelationsDBHandler
	projectID uuid.UUID
}

// GetOutgoingRelations implements graph.RelationSource
func (p *projectRelations) GetOutgoingRelations(ctx context.Context, entity model.Entity) ([]*model.Relation, error) {
	return p.handler.SelectRelationsFromEntity(ctx, p.projectID, entity)
}
