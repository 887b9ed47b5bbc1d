package diagram

import (
	"encoding/json"
	"fmt"
)

// Parse decodes the diagram interchange JSON produced by the editor.
// Edges are assumed to have been created through Connect, so their
// categories are trusted; nodes with nil property maps are normalized.
func Parse(data []byte) (*Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse diagram JSON: %w", err)
	}

	for i := range d.Nodes {
		if d.Nodes[i].Properties == nil {
			d.Nodes[i].Properties = map[string]any{}
		}
	}
	for i := range d.Edges {
		if d.Edges[i].Direction == "" {
			d.Edges[i].Direction = DirectionUnidirectional
		}
	}

	return &d, nil
}
