// Package diagram defines the canvas data model the compiler consumes:
// typed resource nodes, typed edges between them, and the creation
// rules (category inference, duplicate rejection) the editor applies
// before anything reaches the compiler.
package diagram

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// EdgeCategory is the semantic meaning of a connection.
type EdgeCategory string

const (
	CategoryTrigger    EdgeCategory = "trigger"
	CategoryPermission EdgeCategory = "permission"
	CategoryDataFlow   EdgeCategory = "data_flow"
)

// EdgeDirection marks whether data conceptually flows one way or both.
type EdgeDirection string

const (
	DirectionUnidirectional EdgeDirection = "unidirectional"
	DirectionBidirectional  EdgeDirection = "bidirectional"
)

// Port is the side of a node an edge attaches to.
type Port string

const (
	PortLeft  Port = "left"
	PortRight Port = "right"
)

// Position holds canvas coordinates. The compiler ignores it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single resource placed on the canvas.
type Node struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	Position   Position       `json:"position"`
	Properties map[string]any `json:"properties"`
}

// Edge is a typed connection between two nodes. Category is derived
// once at creation time and never edited afterward.
type Edge struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Category  EdgeCategory  `json:"category"`
	Direction EdgeDirection `json:"direction"`
	FromPort  Port          `json:"from_port"`
	ToPort    Port          `json:"to_port"`
}

// Diagram is the full editor state handed to the compiler.
type Diagram struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

var (
	ErrUnknownNode   = errors.New("edge references unknown node")
	ErrSelfEdge      = errors.New("self edges are not allowed")
	ErrDuplicateEdge = errors.New("an edge between these nodes already exists")
)

// NodeByID returns the node with the given id, or nil.
func (d *Diagram) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// AddNode places a new node of the given kind and returns it.
// A nil properties map is replaced with an empty one.
func (d *Diagram) AddNode(kind Kind, props map[string]any) Node {
	if props == nil {
		props = map[string]any{}
	}
	node := Node{
		ID:         uuid.NewString(),
		Kind:       kind,
		Properties: props,
	}
	d.Nodes = append(d.Nodes, node)
	return node
}

// RemoveNode deletes the node and every edge touching it.
func (d *Diagram) RemoveNode(id string) {
	nodes := d.Nodes[:0]
	for _, n := range d.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	d.Nodes = nodes

	edges := d.Edges[:0]
	for _, e := range d.Edges {
		if e.From != id && e.To != id {
			edges = append(edges, e)
		}
	}
	d.Edges = edges
}

// Connect creates an edge between two nodes. The edge category is
// inferred from the port combination and the endpoint kinds; self
// edges and duplicates (in either direction) are refused with no
// change to the diagram.
func (d *Diagram) Connect(fromID, toID string, fromPort, toPort Port) (Edge, error) {
	if fromID == toID {
		return Edge{}, ErrSelfEdge
	}

	from := d.NodeByID(fromID)
	to := d.NodeByID(toID)
	if from == nil || to == nil {
		return Edge{}, fmt.Errorf("%w: %s -> %s", ErrUnknownNode, fromID, toID)
	}

	for _, e := range d.Edges {
		if (e.From == fromID && e.To == toID) || (e.From == toID && e.To == fromID) {
			return Edge{}, ErrDuplicateEdge
		}
	}

	category, direction := inferCategory(from.Kind, to.Kind, fromPort, toPort)

	edge := Edge{
		ID:        uuid.NewString(),
		From:      fromID,
		To:        toID,
		Category:  category,
		Direction: direction,
		FromPort:  fromPort,
		ToPort:    toPort,
	}
	d.Edges = append(d.Edges, edge)
	return edge, nil
}

// triggerPairs are the (source, target) combinations where a
// right-to-left connection means an event trigger rather than a
// plain data flow.
var triggerPairs = map[[2]Kind]bool{
	{KindS3, KindLambda}:         true,
	{KindAPIGateway, KindLambda}: true,
	{KindSNS, KindLambda}:        true,
	{KindSQS, KindLambda}:        true,
	{KindDynamoDB, KindLambda}:   true,
}

// inferCategory implements the fixed port-combination rules the editor
// applies when a connection is drawn. Downstream policy generation
// keys off the resulting category, so this mapping must stay stable.
func inferCategory(source, target Kind, fromPort, toPort Port) (EdgeCategory, EdgeDirection) {
	switch {
	case fromPort == PortRight && toPort == PortLeft:
		if triggerPairs[[2]Kind{source, target}] {
			return CategoryTrigger, DirectionUnidirectional
		}
		return CategoryDataFlow, DirectionUnidirectional
	case fromPort == PortRight && toPort == PortRight:
		return CategoryPermission, DirectionUnidirectional
	case fromPort == PortLeft && toPort == PortLeft:
		// Left-to-left connections are always two-way data flows.
		return CategoryDataFlow, DirectionBidirectional
	default:
		return CategoryDataFlow, DirectionUnidirectional
	}
}
