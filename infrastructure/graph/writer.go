package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Writer runs write-mode Cypher for administrative tooling (seeding demo
// data). It is never reachable from the embed flow: the public path only ever
// sees the read-only Executor.
type Writer struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewWriter creates a write-capable helper for administrative use.
func NewWriter(driver neo4j.DriverWithContext, database string) *Writer {
	return &Writer{driver: driver, database: database}
}

// Run executes one write query inside a managed transaction.
func (w *Writer) Run(ctx context.Context, cypher string, params map[string]any) error {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: w.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, cypher, params)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("write query: %w", err)
	}
	return nil
}
