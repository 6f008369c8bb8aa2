package graph

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func testNode(id string, labels []string, props map[string]any) dbtype.Node {
	return dbtype.Node{ElementId: id, Labels: labels, Props: props}
}

func testRel(id, relType, start, end string, props map[string]any) dbtype.Relationship {
	return dbtype.Relationship{
		ElementId:      id,
		Type:           relType,
		StartElementId: start,
		EndElementId:   end,
		Props:          props,
	}
}

func TestNormalizeDeduplicatesNodes(t *testing.T) {
	alice := testNode("4:abc:1", []string{"Person"}, map[string]any{"name": "Alice"})
	bob := testNode("4:abc:2", []string{"Person"}, map[string]any{"name": "Bob"})

	// The same node returned across several records and columns must appear
	// exactly once.
	data := Normalize([]*neo4j.Record{
		record([]string{"a", "b"}, alice, bob),
		record([]string{"a", "b"}, alice, alice),
		record([]string{"a", "b"}, bob, alice),
	})

	require.Len(t, data.Nodes, 2)
	assert.Equal(t, "4:abc:1", data.Nodes[0].ID)
	assert.Equal(t, "4:abc:2", data.Nodes[1].ID)
	assert.Empty(t, data.Relationships)
}

func TestNormalizeFirstSeenNodeWins(t *testing.T) {
	first := testNode("4:abc:1", []string{"Person"}, map[string]any{"name": "Alice"})
	second := testNode("4:abc:1", []string{"Person"}, map[string]any{"name": "Overwritten"})

	data := Normalize([]*neo4j.Record{
		record([]string{"n"}, first),
		record([]string{"n"}, second),
	})

	require.Len(t, data.Nodes, 1)
	assert.Equal(t, "Alice", data.Nodes[0].Properties["name"])
}

func TestNormalizeDoesNotDeduplicateRelationships(t *testing.T) {
	knows := testRel("5:abc:7", "KNOWS", "4:abc:1", "4:abc:2", nil)

	// Unlike nodes, every relationship occurrence produces an entry.
	data := Normalize([]*neo4j.Record{
		record([]string{"r"}, knows),
		record([]string{"r"}, knows),
		record([]string{"r"}, knows),
	})

	assert.Empty(t, data.Nodes)
	require.Len(t, data.Relationships, 3)
	for _, rel := range data.Relationships {
		assert.Equal(t, "KNOWS", rel.Type)
		assert.Equal(t, "4:abc:1", rel.StartNode)
		assert.Equal(t, "4:abc:2", rel.EndNode)
	}
}

func TestNormalizePathMaterializesEndpoints(t *testing.T) {
	alice := testNode("4:abc:1", []string{"Person"}, map[string]any{"name": "Alice"})
	bob := testNode("4:abc:2", []string{"Person"}, map[string]any{"name": "Bob"})
	carol := testNode("4:abc:3", []string{"Person"}, map[string]any{"name": "Carol"})

	path := dbtype.Path{
		Nodes: []dbtype.Node{alice, bob, carol},
		Relationships: []dbtype.Relationship{
			testRel("5:abc:1", "KNOWS", "4:abc:1", "4:abc:2", nil),
			testRel("5:abc:2", "KNOWS", "4:abc:2", "4:abc:3", nil),
		},
	}

	// A query returning only the path still yields its nodes, discovered in
	// segment traversal order.
	data := Normalize([]*neo4j.Record{record([]string{"p"}, path)})

	require.Len(t, data.Nodes, 3)
	assert.Equal(t, "4:abc:1", data.Nodes[0].ID)
	assert.Equal(t, "4:abc:2", data.Nodes[1].ID)
	assert.Equal(t, "4:abc:3", data.Nodes[2].ID)

	require.Len(t, data.Relationships, 2)
	assert.Equal(t, "5:abc:1", data.Relationships[0].ID)
	assert.Equal(t, "5:abc:2", data.Relationships[1].ID)
}

func TestNormalizeRepeatedPathTraversal(t *testing.T) {
	alice := testNode("4:abc:1", nil, nil)
	bob := testNode("4:abc:2", nil, nil)
	knows := testRel("5:abc:1", "KNOWS", "4:abc:1", "4:abc:2", nil)

	path := dbtype.Path{
		Nodes:         []dbtype.Node{alice, bob},
		Relationships: []dbtype.Relationship{knows},
	}

	// Two paths over the same segment: endpoint nodes dedup, the
	// relationship does not.
	data := Normalize([]*neo4j.Record{
		record([]string{"p"}, path),
		record([]string{"p"}, path),
	})

	assert.Len(t, data.Nodes, 2)
	assert.Len(t, data.Relationships, 2)
}

func TestNormalizeSingleNodePath(t *testing.T) {
	only := testNode("4:abc:9", []string{"Person"}, nil)

	data := Normalize([]*neo4j.Record{
		record([]string{"p"}, dbtype.Path{Nodes: []dbtype.Node{only}}),
	})

	require.Len(t, data.Nodes, 1)
	assert.Equal(t, "4:abc:9", data.Nodes[0].ID)
	assert.Empty(t, data.Relationships)
}

func TestNormalizeNodeSharedBetweenColumnAndPath(t *testing.T) {
	alice := testNode("4:abc:1", []string{"Person"}, map[string]any{"name": "Alice"})
	bob := testNode("4:abc:2", []string{"Person"}, map[string]any{"name": "Bob"})

	path := dbtype.Path{
		Nodes: []dbtype.Node{alice, bob},
		Relationships: []dbtype.Relationship{
			testRel("5:abc:1", "KNOWS", "4:abc:1", "4:abc:2", nil),
		},
	}

	data := Normalize([]*neo4j.Record{
		record([]string{"n", "p"}, alice, path),
	})

	assert.Len(t, data.Nodes, 2)
	assert.Len(t, data.Relationships, 1)
}

func TestNormalizeScalarOnlyResultIsEmptyGraph(t *testing.T) {
	// RETURN 1 AS n: scalar columns are dropped, not an error.
	data := Normalize([]*neo4j.Record{
		record([]string{"n"}, int64(1)),
		record([]string{"n"}, "hello"),
		record([]string{"n"}, nil),
	})

	assert.Empty(t, data.Nodes)
	assert.Empty(t, data.Relationships)

	// The envelope must encode as [], never null.
	encoded, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"relationships":[]}`, string(encoded))
}

func TestNormalizeEmptyResult(t *testing.T) {
	data := Normalize(nil)
	assert.NotNil(t, data.Nodes)
	assert.NotNil(t, data.Relationships)
	assert.Empty(t, data.Nodes)
	assert.Empty(t, data.Relationships)
}

func TestCoerceIntegerSafeRange(t *testing.T) {
	node := testNode("4:abc:1", nil, map[string]any{
		"inRange":        int64(42),
		"atUpperBound":   int64(9007199254740991),
		"aboveUpper":     int64(9007199254740993),
		"atLowerBound":   int64(-9007199254740991),
		"belowLower":     int64(-9007199254740993),
	})

	data := Normalize([]*neo4j.Record{record([]string{"n"}, node)})
	require.Len(t, data.Nodes, 1)
	props := data.Nodes[0].Properties

	// Within the IEEE 754 exact range integers stay numeric; beyond it they
	// become decimal strings instead of silently losing precision.
	assert.Equal(t, int64(42), props["inRange"])
	assert.Equal(t, int64(9007199254740991), props["atUpperBound"])
	assert.Equal(t, "9007199254740993", props["aboveUpper"])
	assert.Equal(t, int64(-9007199254740991), props["atLowerBound"])
	assert.Equal(t, "-9007199254740993", props["belowLower"])
}

func TestCoerceTemporalValues(t *testing.T) {
	instant := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	node := testNode("4:abc:1", nil, map[string]any{
		"datetime":  instant,
		"date":      dbtype.Date(instant),
		"localtime": dbtype.LocalTime(instant),
	})

	data := Normalize([]*neo4j.Record{record([]string{"n"}, node)})
	require.Len(t, data.Nodes, 1)
	props := data.Nodes[0].Properties

	assert.Equal(t, "2025-03-14T09:26:53Z", props["datetime"])
	assert.Equal(t, dbtype.Date(instant).String(), props["date"])
	assert.Equal(t, dbtype.LocalTime(instant).String(), props["localtime"])
}

func TestCoerceRecursesIntoContainers(t *testing.T) {
	node := testNode("4:abc:1", nil, map[string]any{
		"list": []any{int64(1), int64(9007199254740993), "x"},
		"nested": map[string]any{
			"big":  int64(9007199254740993),
			"tiny": int64(7),
		},
	})

	data := Normalize([]*neo4j.Record{record([]string{"n"}, node)})
	require.Len(t, data.Nodes, 1)
	props := data.Nodes[0].Properties

	assert.Equal(t, []any{int64(1), "9007199254740993", "x"}, props["list"])
	assert.Equal(t, map[string]any{"big": "9007199254740993", "tiny": int64(7)}, props["nested"])
}

func TestNormalizeIdempotent(t *testing.T) {
	alice := testNode("4:abc:1", []string{"Person"}, map[string]any{"name": "Alice"})
	knows := testRel("5:abc:1", "KNOWS", "4:abc:1", "4:abc:2", nil)

	records := []*neo4j.Record{record([]string{"n", "r"}, alice, knows)}

	first := Normalize(records)
	second := Normalize(records)
	assert.Equal(t, first, second)
}
