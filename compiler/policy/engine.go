// Package policy turns typed diagram edges into IAM role, role-policy
// and invoke-permission records. Statements arising from multiple
// edges of the same shape are consolidated per source node, never
// duplicated.
package policy

import (
	"encoding/json"
	"fmt"

	"terraform-canvas/pkg/diagram"
	"terraform-canvas/pkg/tf"
)

// DedupContext is the per-compilation ledger of role and policy names
// already emitted. Each name is claimed at most once; a fresh context
// is created for every compilation pass so independent runs cannot
// interfere.
type DedupContext struct {
	roles    map[string]struct{}
	policies map[string]struct{}
}

// NewDedupContext returns an empty ledger.
func NewDedupContext() *DedupContext {
	return &DedupContext{
		roles:    make(map[string]struct{}),
		policies: make(map[string]struct{}),
	}
}

// ClaimRole records a role name and reports whether it was new.
func (c *DedupContext) ClaimRole(name string) bool {
	if _, ok := c.roles[name]; ok {
		return false
	}
	c.roles[name] = struct{}{}
	return true
}

// ClaimPolicy records a policy name and reports whether it was new.
func (c *DedupContext) ClaimPolicy(name string) bool {
	if _, ok := c.policies[name]; ok {
		return false
	}
	c.policies[name] = struct{}{}
	return true
}

// trustPrincipals maps a kind to the service principal its execution
// role trusts. Kinds not listed fall back to the kind-derived service
// domain.
var trustPrincipals = map[diagram.Kind]string{
	diagram.KindLambda:     "lambda.amazonaws.com",
	diagram.KindEC2:        "ec2.amazonaws.com",
	diagram.KindAPIGateway: "apigateway.amazonaws.com",
	diagram.KindS3:         "s3.amazonaws.com",
	diagram.KindSNS:        "sns.amazonaws.com",
	diagram.KindSQS:        "sqs.amazonaws.com",
}

// TrustPrincipal returns the service principal for a kind.
func TrustPrincipal(kind diagram.Kind) string {
	if p, ok := trustPrincipals[kind]; ok {
		return p
	}
	return fmt.Sprintf("%s.amazonaws.com", diagram.SanitizeName(string(kind)))
}

// invokeSources maps a permission-granting source kind to the
// reference attribute used as source_arn and the statement label.
// Only these kinds have defined resource-based emission logic.
var invokeSources = map[diagram.Kind]struct {
	ArnRef string // format veneer over the source resource name
	Label  string
}{
	diagram.KindS3:         {ArnRef: "aws_s3_bucket.%s.arn", Label: "S3"},
	diagram.KindAPIGateway: {ArnRef: "aws_api_gateway_rest_api.%s.execution_arn", Label: "APIGateway"},
	diagram.KindSNS:        {ArnRef: "aws_sns_topic.%s.arn", Label: "SNS"},
	diagram.KindSQS:        {ArnRef: "aws_sqs_queue.%s.arn", Label: "SQS"},
}

type iamStatement struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource []string `json:"Resource,omitempty"`

	Principal map[string]string `json:"Principal,omitempty"`
}

type iamDocument struct {
	Version   string         `json:"Version"`
	Statement []iamStatement `json:"Statement"`
}

func (d iamDocument) encode() string {
	out, err := json.Marshal(d)
	if err != nil {
		// The document is built from static strings; this cannot fail.
		panic(err)
	}
	return string(out)
}

// Engine compiles edges into access-control records.
type Engine struct{}

// NewEngine creates a policy engine.
func NewEngine() *Engine { return &Engine{} }

// Compile runs the three emission phases over the edge list:
// execution roles, resource-based invoke permissions, and
// consolidated execution-role policies. names maps node ids to their
// sanitized resource names; edges referencing unknown node ids are
// skipped everywhere.
func (e *Engine) Compile(d *diagram.Diagram, names map[string]string, ctx *DedupContext) []tf.Resource {
	out := make([]tf.Resource, 0)
	out = append(out, e.compileRoles(d, ctx)...)
	out = append(out, e.compilePermissions(d, names, ctx)...)
	out = append(out, e.compileRolePolicies(d, names, ctx)...)
	return out
}

// compileRoles is phase A: one aws_iam_role per distinct kind that
// needs an execution role, in first-seen edge order.
func (e *Engine) compileRoles(d *diagram.Diagram, ctx *DedupContext) []tf.Resource {
	var kinds []diagram.Kind
	seen := map[diagram.Kind]bool{}

	need := func(k diagram.Kind) {
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}

	for _, edge := range d.Edges {
		from := d.NodeByID(edge.From)
		to := d.NodeByID(edge.To)
		if from == nil || to == nil {
			continue
		}
		for _, req := range RequirementsFor(from.Kind, to.Kind) {
			if req.Category == CategoryExecutionRole || req.Category == CategoryBoth {
				need(from.Kind)
			}
			// A function named as an invocation target must carry its
			// execution role even when no outbound edge grants one.
			if (req.Category == CategoryResourceBased || req.Category == CategoryBoth) && to.Kind == diagram.KindLambda {
				need(to.Kind)
			}
		}
	}

	var out []tf.Resource
	for _, kind := range kinds {
		roleName := fmt.Sprintf("%s_execution_role", kind)
		if !ctx.ClaimRole(roleName) {
			continue
		}

		trust := iamDocument{
			Version: "2012-10-17",
			Statement: []iamStatement{{
				Effect:    "Allow",
				Action:    []string{"sts:AssumeRole"},
				Principal: map[string]string{"Service": TrustPrincipal(kind)},
			}},
		}

		out = append(out, tf.Resource{
			Type: "aws_iam_role",
			Name: roleName,
			Properties: map[string]any{
				"name":               roleName,
				"assume_role_policy": trust.encode(),
			},
		})
	}
	return out
}

// compilePermissions is phase B: a resource-based invoke permission
// for every edge whose requirement names the target function.
func (e *Engine) compilePermissions(d *diagram.Diagram, names map[string]string, ctx *DedupContext) []tf.Resource {
	var out []tf.Resource

	for _, edge := range d.Edges {
		from := d.NodeByID(edge.From)
		to := d.NodeByID(edge.To)
		if from == nil || to == nil {
			continue
		}
		if to.Kind != diagram.KindLambda {
			continue
		}
		src, defined := invokeSources[from.Kind]
		if !defined {
			continue
		}

		matched := false
		for _, req := range RequirementsFor(from.Kind, to.Kind) {
			if req.Category == CategoryResourceBased || req.Category == CategoryBoth {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		sourceName := names[edge.From]
		targetName := names[edge.To]
		recordName := fmt.Sprintf("%s_allow_%s", targetName, from.Kind)
		if !ctx.ClaimPolicy(recordName) {
			continue
		}

		out = append(out, tf.Resource{
			Type: "aws_lambda_permission",
			Name: recordName,
			Properties: map[string]any{
				"statement_id":  "AllowExecutionFrom" + src.Label,
				"action":        "lambda:InvokeFunction",
				"function_name": fmt.Sprintf("aws_lambda_function.%s.function_name", targetName),
				"principal":     TrustPrincipal(from.Kind),
				"source_arn":    fmt.Sprintf(src.ArnRef, sourceName),
			},
		})
	}

	return out
}

// accessGroup accumulates the requirements and targets of all edges
// sharing one (source node, target kind) pair.
type accessGroup struct {
	sourceName string
	sourceKind diagram.Kind
	targetKind diagram.Kind

	requirements []Requirement
	reqSeen      map[string]bool

	targets     []string
	targetsSeen map[string]bool
}

// compileRolePolicies is phase C: exactly one consolidated
// aws_iam_role_policy per (source node, target kind) group, granting
// every matched action over every target resource of that group.
func (e *Engine) compileRolePolicies(d *diagram.Diagram, names map[string]string, ctx *DedupContext) []tf.Resource {
	groups := map[string]*accessGroup{}
	var order []string

	for _, edge := range d.Edges {
		from := d.NodeByID(edge.From)
		to := d.NodeByID(edge.To)
		if from == nil || to == nil {
			continue
		}

		for _, req := range RequirementsFor(from.Kind, to.Kind) {
			if req.Category != CategoryExecutionRole && req.Category != CategoryBoth {
				continue
			}

			key := edge.From + "|" + string(to.Kind)
			group, ok := groups[key]
			if !ok {
				group = &accessGroup{
					sourceName:  names[edge.From],
					sourceKind:  from.Kind,
					targetKind:  to.Kind,
					reqSeen:     map[string]bool{},
					targetsSeen: map[string]bool{},
				}
				groups[key] = group
				order = append(order, key)
			}

			sig := requirementSignature(req)
			if !group.reqSeen[sig] {
				group.reqSeen[sig] = true
				group.requirements = append(group.requirements, req)
			}

			targetName := names[edge.To]
			if !group.targetsSeen[targetName] {
				group.targetsSeen[targetName] = true
				group.targets = append(group.targets, targetName)
			}
		}
	}

	var out []tf.Resource
	for _, key := range order {
		group := groups[key]

		policyName := fmt.Sprintf("%s_%s_%s_access", group.sourceName, group.sourceKind, group.targetKind)
		if !ctx.ClaimPolicy(policyName) {
			continue
		}

		var actions []string
		actionSeen := map[string]bool{}
		var resources []string

		for _, req := range group.requirements {
			for _, a := range req.Actions {
				if !actionSeen[a] {
					actionSeen[a] = true
					actions = append(actions, a)
				}
			}
			for _, pattern := range req.ResourcePatterns {
				for _, target := range group.targets {
					resources = append(resources, ExpandPattern(pattern, target))
				}
			}
		}

		doc := iamDocument{
			Version: "2012-10-17",
			Statement: []iamStatement{{
				Effect:   "Allow",
				Action:   actions,
				Resource: resources,
			}},
		}

		out = append(out, tf.Resource{
			Type: "aws_iam_role_policy",
			Name: policyName,
			Properties: map[string]any{
				"name":   policyName,
				"role":   fmt.Sprintf("aws_iam_role.%s_execution_role.id", group.sourceKind),
				"policy": doc.encode(),
			},
		})
	}

	return out
}

func requirementSignature(req Requirement) string {
	sig := ""
	for _, a := range req.Actions {
		sig += a + ","
	}
	sig += "|"
	for _, p := range req.ResourcePatterns {
		sig += p + ","
	}
	return sig
}
