package main

import (
	"context"
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

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	o, err := ontograph.NewOntoGraph(dbConfig, model.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to create ontograph: %v", err)
	}
	defer o.Close()

	ctx := context.Background()
	projectID := uuid.New()

	// A small class hierarchy with a cycle between Animal and LivingBeing
	relations := []*model.Relation{
		model.NewRelation("http://example.org/zoo#Dog", model.RelationLabelSubClassOf, "http://example.org/zoo#Mammal"),
		model.NewRelation("http://example.org/zoo#Mammal", model.RelationLabelSubClassOf, "http://example.org/zoo#Animal"),
		model.NewRelation("http://example.org/zoo#Animal", model.RelationLabelSubClassOf, "http://example.org/zoo#LivingBeing"),
		model.NewRelation("http://example.org/zoo#LivingBeing", model.RelationLabelSubClassOf, "http://example.org/zoo#Animal"),
		model.NewRelation("http://example.org/zoo#Rex", model.RelationLabelInstanceOf, "http://example.org/zoo#Dog"),
	}

	fmt.Println("Importing relations...")
	n, err := o.ImportRelations(ctx, projectID, relations)
	if err != nil {
		log.Fatalf("Failed to import relations: %v", err)
	}
	fmt.Printf("Imported %d relations into project %s\n", n, projectID)

	// Build the graph reachable from Rex over every relation
	result, err := o.GetEntityGraph(ctx, ontograph.GetEntityGraphRequest{
		ProjectID:    projectID,
		Entity:       "http://example.org/zoo#Rex",
		EdgeCriteria: criteria.IncludeAny{},
	})
	if err != nil {
		log.Fatalf("Failed to build entity graph: %v", err)
	}

	// Display results
	fmt.Printf("\nGraph from %s: %d nodes, %d edges\n", result.Graph.Root, result.Graph.NodeCount(), result.Graph.EdgeCount())
	for _, node := range result.Graph.Nodes {
		fmt.Printf("  node %s\n", node)
	}
	for _, edge := range result.Graph.Edges {
		fmt.Printf("  %s -%s-> %s\n", edge.Source, edge.Label, edge.Target)
	}

	fmt.Println("\nBasic example completed successfully!")
}
