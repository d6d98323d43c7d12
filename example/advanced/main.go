package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/siherrmann/ontograph"
	"github.com/siherrmann/ontograph/core/criteria"
	"github.com/siherrmann/ontograph/helper"
	"github.com/siherrmann/ontograph/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// Traversal bounds and log level come from a YAML file
	config, err := model.LoadConfig("example/advanced/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	o, err := ontograph.NewOntoGraph(dbConfig, config)
	if err != nil {
		log.Fatalf("Failed to create ontograph: %v", err)
	}
	defer o.Close()

	ctx := context.Background()
	projectID := uuid.New()

	// Only members of the project may read its graph
	o.SetAccessChecker(ontograph.ProjectMembers{projectID: {"alice"}})

	_, err = o.ImportEntities(ctx, projectID, []*model.EntityData{
		{IRI: "urn:pizza:Pizza", Type: model.EntityTypeClass, Annotations: model.Annotations{"rdfs:label": {"Pizza"}}},
		{IRI: "urn:pizza:Margherita", Type: model.EntityTypeClass},
		{IRI: "urn:pizza:Food", Type: model.EntityTypeClass},
		{IRI: "urn:pizza:Thing", Type: model.EntityTypeClass},
		{IRI: "urn:pizza:Mozzarella", Type: model.EntityTypeNamedIndividual},
		{IRI: "urn:pizza:Cheese", Type: model.EntityTypeClass},
	})
	if err != nil {
		log.Fatalf("Failed to import entities: %v", err)
	}

	_, err = o.ImportRelations(ctx, projectID, []*model.Relation{
		model.NewRelation("urn:pizza:Margherita", model.RelationLabelSubClassOf, "urn:pizza:Pizza"),
		model.NewRelation("urn:pizza:Margherita", "urn:pizza:hasTopping", "urn:pizza:Mozzarella"),
		model.NewRelation("urn:pizza:Pizza", model.RelationLabelSubClassOf, "urn:pizza:Food"),
		model.NewRelation("urn:pizza:Food", model.RelationLabelSubClassOf, "urn:pizza:Thing"),
		model.NewRelation("urn:pizza:Mozzarella", model.RelationLabelInstanceOf, "urn:pizza:Cheese"),
	})
	if err != nil {
		log.Fatalf("Failed to import relations: %v", err)
	}

	// Composite criteria saved as YAML
	edgeCriteria, err := criteria.LoadFile("example/advanced/criteria.yaml")
	if err != nil {
		log.Fatalf("Failed to load criteria: %v", err)
	}

	// A request as it would arrive over the wire
	body, err := json.Marshal(ontograph.GetEntityGraphRequest{
		ProjectID:    projectID,
		Entity:       "urn:pizza:Margherita",
		EdgeCriteria: edgeCriteria,
	})
	if err != nil {
		log.Fatalf("Failed to encode request: %v", err)
	}
	fmt.Printf("Request: %s\n", body)

	var req ontograph.GetEntityGraphRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		log.Fatalf("Failed to decode request: %v", err)
	}

	// An unknown caller is rejected
	req.Caller = "mallory"
	_, err = o.GetEntityGraph(ctx, req)
	fmt.Printf("\nRequest as mallory: %v\n", err)

	req.Caller = "alice"
	result, err := o.GetEntityGraph(ctx, req)
	if err != nil {
		log.Fatalf("Failed to build entity graph: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Printf("\nRequest as alice:\n%s\n", out)

	if result.Graph.Truncated {
		fmt.Printf("\nGraph is incomplete (%s), raise graph.max_nodes to see more\n", result.Graph.TruncationReason)
	}

	fmt.Println("\nAdvanced example completed successfully!")
}
