// Package lint evaluates user-supplied OPA rego rules against a
// compiled diagram, so teams can deny or warn on architecture shapes
// (public buckets feeding functions, databases without a VPC, ...)
// before the generated Terraform leaves the editor.
package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/open-policy-agent/opa/rego"

	"terraform-canvas/pkg/diagram"
	"terraform-canvas/pkg/tf"
)

// Result holds lint outcomes.
type Result struct {
	Denials  []string `json:"denials"`
	Warnings []string `json:"warnings"`
	Passed   bool     `json:"passed"`
}

// Linter runs rego rules from a directory against diagram summaries.
type Linter struct {
	policiesDir string
}

// NewLinter creates a linter reading *.rego files from policiesDir.
func NewLinter(policiesDir string) *Linter {
	return &Linter{policiesDir: policiesDir}
}

// Evaluate runs every rule file against the diagram and its generated
// records. A missing or empty policies directory passes.
func (l *Linter) Evaluate(ctx context.Context, d *diagram.Diagram, records []tf.Resource) (*Result, error) {
	result := &Result{Denials: []string{}, Warnings: []string{}, Passed: true}

	input := buildInput(d, records)

	files, err := filepath.Glob(filepath.Join(l.policiesDir, "*.rego"))
	if err != nil || len(files) == 0 {
		return result, nil
	}

	for _, file := range files {
		policy, err := os.ReadFile(file)
		if err != nil {
			continue
		}

		denials, err := l.evalQuery(ctx, string(policy), "data.terracanvas.deny", input)
		if err == nil {
			result.Denials = append(result.Denials, denials...)
		}

		warnings, err := l.evalQuery(ctx, string(policy), "data.terracanvas.warn", input)
		if err == nil {
			result.Warnings = append(result.Warnings, warnings...)
		}
	}

	result.Passed = len(result.Denials) == 0
	return result, nil
}

// buildInput flattens the diagram into the document rego rules see.
func buildInput(d *diagram.Diagram, records []tf.Resource) map[string]any {
	kindCounts := map[string]int{}
	nodes := make([]any, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		kindCounts[string(n.Kind)]++
		nodes = append(nodes, map[string]any{
			"id":   n.ID,
			"kind": string(n.Kind),
		})
	}

	edges := make([]any, 0, len(d.Edges))
	for _, e := range d.Edges {
		edges = append(edges, map[string]any{
			"from":     e.From,
			"to":       e.To,
			"category": string(e.Category),
		})
	}

	types := make([]any, 0, len(records))
	for _, r := range records {
		types = append(types, r.Type)
	}

	return map[string]any{
		"nodes":          nodes,
		"edges":          edges,
		"kind_counts":    kindCounts,
		"resource_types": types,
	}
}

func (l *Linter) evalQuery(ctx context.Context, policy, query string, input map[string]any) ([]string, error) {
	r := rego.New(
		rego.Query(query),
		rego.Module("policy.rego", policy),
		rego.Input(input),
	)

	rs, err := r.Eval(ctx)
	if err != nil {
		return nil, err
	}

	var messages []string
	for _, result := range rs {
		for _, expr := range result.Expressions {
			if set, ok := expr.Value.([]interface{}); ok {
				for _, v := range set {
					if msg, ok := v.(string); ok {
						messages = append(messages, msg)
					}
				}
			}
		}
	}
	return messages, nil
}

// ValidatePolicies compiles every rule file without evaluating it.
func (l *Linter) ValidatePolicies() error {
	files, err := filepath.Glob(filepath.Join(l.policiesDir, "*.rego"))
	if err != nil {
		return fmt.Errorf("failed to list policies: %w", err)
	}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		_, err = rego.New(rego.Query("data"), rego.Module(file, string(content))).PrepareForEval(context.Background())
		if err != nil {
			return fmt.Errorf("invalid policy %s: %w", file, err)
		}
	}
	return nil
}
