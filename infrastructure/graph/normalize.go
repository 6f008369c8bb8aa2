package graph

import (
	"strconv"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Node is a JSON-safe projection of a graph node. Id carries the engine's
// native identity, distinct from any user-defined id property.
type Node struct {
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// Relationship is a JSON-safe projection of a graph relationship. StartNode
// and EndNode reference Node.ID values; endpoints are not guaranteed to be
// present in the node list when the query returned a bare relationship.
type Relationship struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	StartNode  string         `json:"startNode"`
	EndNode    string         `json:"endNode"`
	Properties map[string]any `json:"properties"`
}

// GraphData is the response envelope for a normalized query result.
type GraphData struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// valueKind is the closed set of shapes a record value can take. Values are
// classified once at the driver boundary so the normalizer switches over a
// tagged variant instead of chaining runtime type tests.
type valueKind int

const (
	kindScalar valueKind = iota
	kindNode
	kindRelationship
	kindPath
)

type taggedValue struct {
	kind valueKind
	node dbtype.Node
	rel  dbtype.Relationship
	path dbtype.Path
}

func classify(value any) taggedValue {
	switch v := value.(type) {
	case dbtype.Node:
		return taggedValue{kind: kindNode, node: v}
	case dbtype.Relationship:
		return taggedValue{kind: kindRelationship, rel: v}
	case dbtype.Path:
		return taggedValue{kind: kindPath, path: v}
	default:
		return taggedValue{kind: kindScalar}
	}
}

// normalizer accumulates the single pass over a raw result. Nodes are
// deduplicated by native identity, first occurrence wins; relationships are
// appended for every occurrence.
type normalizer struct {
	nodes     []Node
	nodeSeen  map[string]struct{}
	relations []Relationship
}

// Normalize walks raw result records in order and assembles the graph
// payload. Pure: safe to drive from synthetic records in tests.
func Normalize(records []*neo4j.Record) *GraphData {
	n := &normalizer{
		nodes:     []Node{},
		nodeSeen:  map[string]struct{}{},
		relations: []Relationship{},
	}

	for _, record := range records {
		for _, value := range record.Values {
			switch tagged := classify(value); tagged.kind {
			case kindNode:
				n.upsertNode(tagged.node)
			case kindRelationship:
				n.appendRelationship(tagged.rel)
			case kindPath:
				n.walkPath(tagged.path)
			case kindScalar:
				// Bare scalars are not part of the graph payload.
			}
		}
	}

	return &GraphData{Nodes: n.nodes, Relationships: n.relations}
}

func (n *normalizer) upsertNode(node dbtype.Node) {
	if _, seen := n.nodeSeen[node.ElementId]; seen {
		return
	}
	n.nodeSeen[node.ElementId] = struct{}{}
	n.nodes = append(n.nodes, Node{
		ID:         node.ElementId,
		Labels:     node.Labels,
		Properties: coerceProperties(node.Props),
	})
}

func (n *normalizer) appendRelationship(rel dbtype.Relationship) {
	n.relations = append(n.relations, Relationship{
		ID:         rel.ElementId,
		Type:       rel.Type,
		StartNode:  rel.StartElementId,
		EndNode:    rel.EndElementId,
		Properties: coerceProperties(rel.Props),
	})
}

// walkPath visits the path's segments in traversal order, materializing each
// segment's endpoint nodes before appending the segment's relationship. A
// query that returns only a path therefore still yields renderable nodes.
func (n *normalizer) walkPath(path dbtype.Path) {
	byID := make(map[string]dbtype.Node, len(path.Nodes))
	for _, node := range path.Nodes {
		byID[node.ElementId] = node
	}

	for _, rel := range path.Relationships {
		if start, ok := byID[rel.StartElementId]; ok {
			n.upsertNode(start)
		}
		if end, ok := byID[rel.EndElementId]; ok {
			n.upsertNode(end)
		}
		n.appendRelationship(rel)
	}

	// A single-node path has no segments; its node still belongs in the
	// payload.
	if len(path.Relationships) == 0 {
		for _, node := range path.Nodes {
			n.upsertNode(node)
		}
	}
}

// maxSafeInteger is the largest integer a JSON consumer backed by IEEE 754
// doubles can represent exactly.
const maxSafeInteger = int64(1)<<53 - 1

func coerceProperties(props map[string]any) map[string]any {
	coerced := make(map[string]any, len(props))
	for key, value := range props {
		coerced[key] = coerceValue(value)
	}
	return coerced
}

// coerceValue maps database-native scalars to JSON-safe values. Integers
// outside the IEEE 754 exact range are rendered as decimal strings rather
// than silently losing precision; temporal values become canonical strings;
// containers recurse.
func coerceValue(value any) any {
	switch v := value.(type) {
	case int64:
		if v > maxSafeInteger || v < -maxSafeInteger {
			return strconv.FormatInt(v, 10)
		}
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case dbtype.Date:
		return v.String()
	case dbtype.LocalTime:
		return v.String()
	case dbtype.Time:
		return v.String()
	case dbtype.LocalDateTime:
		return v.String()
	case dbtype.Duration:
		return v.String()
	case []any:
		coerced := make([]any, len(v))
		for i, element := range v {
			coerced[i] = coerceValue(element)
		}
		return coerced
	case map[string]any:
		return coerceProperties(v)
	default:
		return value
	}
}
