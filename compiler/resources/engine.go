// Package resources maps diagram nodes to Terraform resource records.
// One mapper per node kind; kinds without a registered mapper fall
// back to a generic record so compilation never fails.
package resources

import (
	"fmt"

	"terraform-canvas/pkg/diagram"
	"terraform-canvas/pkg/tf"
)

// Mapper converts one node of a specific kind into a resource record.
type Mapper interface {
	// Kind returns the node kind this mapper handles.
	Kind() diagram.Kind

	// Map converts the node. A nil result means the node produces no
	// resource block.
	Map(node diagram.Node, scope *Scope) *tf.Resource
}

// Scope gives mappers read-only access to the rest of the diagram plus
// the deterministic naming and ordinal bookkeeping for this pass.
type Scope struct {
	Diagram  *diagram.Diagram
	names    map[string]string
	ordinals map[string]int
}

// NewScope precomputes names and per-kind ordinals for every node, in
// node list order, so sibling lookups resolve to stable identifiers.
func NewScope(d *diagram.Diagram) *Scope {
	return &Scope{
		Diagram:  d,
		names:    BuildNameIndex(d),
		ordinals: buildOrdinalIndex(d),
	}
}

// BuildNameIndex returns the sanitized resource name for every node id.
// A node without a name property gets "{kind}-{n}" where n is the
// 1-indexed count of same-kind nodes seen so far in list order.
func BuildNameIndex(d *diagram.Diagram) map[string]string {
	names := make(map[string]string, len(d.Nodes))
	counts := map[diagram.Kind]int{}
	for _, n := range d.Nodes {
		counts[n.Kind]++
		name := ExtractString(n.Properties, "name")
		if name == "" {
			name = fmt.Sprintf("%s-%d", n.Kind, counts[n.Kind])
		}
		names[n.ID] = diagram.SanitizeName(name)
	}
	return names
}

func buildOrdinalIndex(d *diagram.Diagram) map[string]int {
	ordinals := make(map[string]int, len(d.Nodes))
	counts := map[diagram.Kind]int{}
	for _, n := range d.Nodes {
		counts[n.Kind]++
		ordinals[n.ID] = counts[n.Kind]
	}
	return ordinals
}

// NameFor returns the sanitized resource name of a node, or "" when
// the id is unknown.
func (s *Scope) NameFor(nodeID string) string {
	return s.names[nodeID]
}

// Ordinal returns the 1-indexed per-kind position of a node.
func (s *Scope) Ordinal(nodeID string) int {
	return s.ordinals[nodeID]
}

// Sole returns the first node of the given kind in list order, or nil.
// Grouping lookups (a subnet finding its VPC) rely on this being
// deterministic when the diagram holds more than one candidate.
func (s *Scope) Sole(kind diagram.Kind) *diagram.Node {
	for i := range s.Diagram.Nodes {
		if s.Diagram.Nodes[i].Kind == kind {
			return &s.Diagram.Nodes[i]
		}
	}
	return nil
}

// EdgesTouching returns every edge with the node as either endpoint,
// in edge list order.
func (s *Scope) EdgesTouching(nodeID string) []diagram.Edge {
	var out []diagram.Edge
	for _, e := range s.Diagram.Edges {
		if e.From == nodeID || e.To == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Engine holds the mapper registry and drives node compilation.
type Engine struct {
	mappers map[diagram.Kind]Mapper
}

// NewEngine creates an engine with no mappers registered.
func NewEngine() *Engine {
	return &Engine{mappers: make(map[diagram.Kind]Mapper)}
}

// RegisterMapper adds a kind mapper, replacing any previous one.
func (e *Engine) RegisterMapper(m Mapper) {
	e.mappers[m.Kind()] = m
}

// Compile maps every node in list order. Nodes of unregistered kinds
// produce a generic record derived from the kind string.
func (e *Engine) Compile(d *diagram.Diagram) []tf.Resource {
	scope := NewScope(d)
	out := make([]tf.Resource, 0, len(d.Nodes))

	for _, node := range d.Nodes {
		var res *tf.Resource
		if m, ok := e.mappers[node.Kind]; ok {
			res = m.Map(node, scope)
		} else {
			res = genericResource(node, scope)
		}
		if res != nil {
			out = append(out, *res)
		}
	}

	return out
}

// genericResource fabricates a record for a kind we have no mapper
// for: a derived type tag and a Name tag, nothing else.
func genericResource(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)
	return &tf.Resource{
		Type: "aws_" + diagram.SanitizeName(string(node.Kind)),
		Name: name,
		Properties: map[string]any{
			"tags": map[string]any{"Name": name},
		},
	}
}

// Attribute extraction helpers. Properties come from the editor as
// loosely typed JSON, so every read goes through one of these.

// ExtractString safely extracts a string property.
func ExtractString(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ExtractStringDefault extracts a string property with a fallback.
func ExtractStringDefault(props map[string]any, key, defaultVal string) string {
	if s := ExtractString(props, key); s != "" {
		return s
	}
	return defaultVal
}

// ExtractInt safely extracts an integer property.
func ExtractInt(props map[string]any, key string, defaultVal int) int {
	if v, ok := props[key]; ok {
		switch val := v.(type) {
		case float64:
			return int(val)
		case int:
			return val
		case int64:
			return int(val)
		}
	}
	return defaultVal
}

// ExtractBool safely extracts a boolean property.
func ExtractBool(props map[string]any, key string, defaultVal bool) bool {
	if v, ok := props[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
