package graph

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	apperrors "embedgraph-backend/pkg/errors"
)

// ErrWriteModeRefused is returned when an executor is requested with write
// access. Bound queries originate from callers without database credentials,
// so the public execution path is read-only, full stop.
var ErrWriteModeRefused = errors.New("graph executor only runs in read access mode")

// Executor runs a single Cypher query per call against a session-scoped
// connection. Sessions are never held across calls; the driver's pool handles
// connection acquisition (and retries acquisition, not queries).
type Executor struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewExecutor creates a read-only query executor. Any access mode other than
// read is refused outright.
func NewExecutor(driver neo4j.DriverWithContext, database string, mode neo4j.AccessMode) (*Executor, error) {
	if mode != neo4j.AccessModeRead {
		return nil, ErrWriteModeRefused
	}
	return &Executor{driver: driver, database: database}, nil
}

// Execute runs one Cypher query and returns its normalized graph payload.
// The session is released on every exit path. Failed queries are not retried:
// a bound query is fixed and deterministic, so a retry cannot change the
// outcome.
func (e *Executor) Execute(ctx context.Context, cypher string, params map[string]any) (*GraphData, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: e.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, apperrors.NewQueryExecutionError(err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, apperrors.NewQueryExecutionError(err)
	}

	return Normalize(records), nil
}
