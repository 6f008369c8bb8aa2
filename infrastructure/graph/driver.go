// Package graph runs read-only Cypher queries against Neo4j and normalizes
// their results into a JSON-safe node/relationship payload.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds Neo4j connection configuration
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Connect creates the process-wide Neo4j driver and verifies connectivity.
// One driver owns the connection pool; callers share it by reference and the
// entry point owns its lifecycle.
func Connect(ctx context.Context, cfg Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}

	return driver, nil
}

// VerifyConnectivity reports whether the graph database is reachable.
func VerifyConnectivity(ctx context.Context, driver neo4j.DriverWithContext) bool {
	return driver.VerifyConnectivity(ctx) == nil
}
