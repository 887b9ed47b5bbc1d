// Package compiler wires the resource, policy and trigger compilers
// into the single pure entry point hosts call: diagram in, formatted
// Terraform text out. Every pass compiles the full diagram from
// scratch; nothing is cached between calls.
package compiler

import (
	"fmt"

	"terraform-canvas/compiler/policy"
	"terraform-canvas/compiler/resources"
	"terraform-canvas/compiler/wiring"
	"terraform-canvas/pkg/diagram"
	"terraform-canvas/pkg/tf"
)

// Compiler holds the three stage engines. It carries no per-run
// state; a single Compiler is safe to reuse across compilations.
type Compiler struct {
	resources *resources.Engine
	policies  *policy.Engine
	wiring    *wiring.Engine
}

// New creates a compiler with all built-in kind mappers registered.
func New() *Compiler {
	engine := resources.NewEngine()
	resources.RegisterAllMappers(engine)

	return &Compiler{
		resources: engine,
		policies:  policy.NewEngine(),
		wiring:    wiring.NewEngine(),
	}
}

// Records produces the full output record list: one resource per
// node, then the policy records derived from edges, then the trigger
// wiring records. Dedup state lives in a fresh context per call.
func (c *Compiler) Records(d *diagram.Diagram) []tf.Resource {
	names := resources.BuildNameIndex(d)

	out := c.resources.Compile(d)
	out = append(out, c.policies.Compile(d, names, policy.NewDedupContext())...)
	out = append(out, c.wiring.Compile(d, names)...)
	return out
}

// Compile renders the diagram to Terraform text. A panic anywhere in
// record generation or formatting is recovered and surfaced as a
// comment document instead of generated text.
func (c *Compiler) Compile(d *diagram.Diagram) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("terraform generation failed: %v", r)
			text = fmt.Sprintf("# terraform-canvas: generation failed: %v\n", r)
		}
	}()

	return tf.Format(c.Records(d)), nil
}

// Warning flags a connection the capability table does not allow.
type Warning struct {
	EdgeID  string `json:"edge_id"`
	Message string `json:"message"`
}

// Validate checks every edge against the capability table. Edges
// referencing missing nodes are reported too. An empty result means
// the diagram is fully within the supported interaction matrix.
func (c *Compiler) Validate(d *diagram.Diagram) []Warning {
	warnings := []Warning{}

	for _, edge := range d.Edges {
		from := d.NodeByID(edge.From)
		to := d.NodeByID(edge.To)
		if from == nil || to == nil {
			warnings = append(warnings, Warning{
				EdgeID:  edge.ID,
				Message: fmt.Sprintf("edge references a missing node (%s -> %s)", edge.From, edge.To),
			})
			continue
		}
		if !policy.CanInteract(from.Kind, to.Kind) {
			warnings = append(warnings, Warning{
				EdgeID:  edge.ID,
				Message: fmt.Sprintf("%s cannot interact with %s", from.Kind, to.Kind),
			})
		}
	}

	return warnings
}
