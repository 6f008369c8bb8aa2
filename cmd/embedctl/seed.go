package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"embedgraph-backend/infrastructure/graph"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the graph database with demonstration data",
	Long: `Seed loads a small social graph into Neo4j so freshly issued embeds
have something to show. Safe to run repeatedly; it merges on name.`,
	RunE: runSeed,
}

var seedStatements = []string{
	`MERGE (ada:Person {name: 'Ada'}) SET ada.role = 'engineer'
	 MERGE (grace:Person {name: 'Grace'}) SET grace.role = 'engineer'
	 MERGE (alan:Person {name: 'Alan'}) SET alan.role = 'researcher'
	 MERGE (lin:Person {name: 'Lin'}) SET lin.role = 'designer'
	 MERGE (ada)-[:KNOWS]->(grace)
	 MERGE (grace)-[:KNOWS]->(alan)
	 MERGE (alan)-[:KNOWS]->(ada)
	 MERGE (lin)-[:KNOWS]->(ada)`,
	`MERGE (viz:Project {name: 'Visualizer'})
	 MERGE (api:Project {name: 'Query API'})
	 WITH viz, api
	 MATCH (ada:Person {name: 'Ada'}), (grace:Person {name: 'Grace'}), (lin:Person {name: 'Lin'})
	 MERGE (ada)-[:WORKS_ON]->(api)
	 MERGE (grace)-[:WORKS_ON]->(api)
	 MERGE (lin)-[:WORKS_ON]->(viz)`,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	driver, err := graph.Connect(ctx, graph.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	})
	if err != nil {
		return fmt.Errorf("connect to neo4j: %w", err)
	}
	defer driver.Close(ctx)

	writer := graph.NewWriter(driver, cfg.Neo4jDatabase)
	for _, statement := range seedStatements {
		if err := writer.Run(ctx, statement, nil); err != nil {
			return fmt.Errorf("seed graph: %w", err)
		}
	}

	fmt.Println("Demonstration graph seeded")
	return nil
}
