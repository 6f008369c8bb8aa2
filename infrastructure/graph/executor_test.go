package graph

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutorRefusesWriteMode(t *testing.T) {
	_, err := NewExecutor(nil, "neo4j", neo4j.AccessModeWrite)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteModeRefused)
}

func TestNewExecutorAcceptsReadMode(t *testing.T) {
	executor, err := NewExecutor(nil, "neo4j", neo4j.AccessModeRead)
	require.NoError(t, err)
	assert.NotNil(t, executor)
}
