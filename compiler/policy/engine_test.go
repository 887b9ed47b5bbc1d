package policy

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-canvas/pkg/diagram"
	"terraform-canvas/pkg/tf"
)

func fanOutDiagram(buckets int) (*diagram.Diagram, map[string]string) {
	d := &diagram.Diagram{Nodes: []diagram.Node{
		{ID: "fn", Kind: diagram.KindLambda, Properties: map[string]any{"name": "processor"}},
	}}
	names := map[string]string{"fn": "processor"}

	for i := 1; i <= buckets; i++ {
		id := fmt.Sprintf("b%d", i)
		name := fmt.Sprintf("bucket_%d", i)
		d.Nodes = append(d.Nodes, diagram.Node{
			ID: id, Kind: diagram.KindS3, Properties: map[string]any{"name": name},
		})
		d.Edges = append(d.Edges, diagram.Edge{
			ID: "e" + id, From: "fn", To: id, Category: diagram.CategoryPermission,
		})
		names[id] = name
	}
	return d, names
}

func recordsOfType(records []tf.Resource, typ string) []tf.Resource {
	var out []tf.Resource
	for _, r := range records {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

func TestCompileConsolidatesFanOut(t *testing.T) {
	d, names := fanOutDiagram(3)

	records := NewEngine().Compile(d, names, NewDedupContext())

	roles := recordsOfType(records, "aws_iam_role")
	require.Len(t, roles, 1, "one role per kind, not per edge")
	assert.Equal(t, "lambda_execution_role", roles[0].Name)

	policies := recordsOfType(records, "aws_iam_role_policy")
	require.Len(t, policies, 1, "three same-shape edges collapse to one policy")
	assert.Equal(t, "processor_lambda_s3_access", policies[0].Name)
	assert.Equal(t, "aws_iam_role.lambda_execution_role.id", policies[0].Properties["role"])

	var doc struct {
		Version   string
		Statement []struct {
			Effect   string
			Action   []string
			Resource []string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(policies[0].Properties["policy"].(string)), &doc))
	require.Len(t, doc.Statement, 1)
	assert.ElementsMatch(t, []string{"s3:GetObject", "s3:PutObject", "s3:ListBucket"}, doc.Statement[0].Action)
	// 2 patterns x 3 buckets.
	assert.Len(t, doc.Statement[0].Resource, 6)
	assert.Contains(t, doc.Statement[0].Resource, "arn:aws:s3:::bucket_1")
	assert.Contains(t, doc.Statement[0].Resource, "arn:aws:s3:::bucket_1/*")
	assert.Contains(t, doc.Statement[0].Resource, "arn:aws:s3:::bucket_3/*")
}

func TestCompileTriggerEmitsInvokePermissionAndRole(t *testing.T) {
	d := &diagram.Diagram{
		Nodes: []diagram.Node{
			{ID: "b", Kind: diagram.KindS3, Properties: map[string]any{"name": "uploads"}},
			{ID: "fn", Kind: diagram.KindLambda, Properties: map[string]any{"name": "processor"}},
		},
		Edges: []diagram.Edge{
			{ID: "e1", From: "b", To: "fn", Category: diagram.CategoryTrigger},
		},
	}
	names := map[string]string{"b": "uploads", "fn": "processor"}

	records := NewEngine().Compile(d, names, NewDedupContext())

	roles := recordsOfType(records, "aws_iam_role")
	require.Len(t, roles, 1, "the invoked function still needs its execution role")
	assert.Equal(t, "lambda_execution_role", roles[0].Name)

	perms := recordsOfType(records, "aws_lambda_permission")
	require.Len(t, perms, 1)
	perm := perms[0]
	assert.Equal(t, "processor_allow_s3", perm.Name)
	assert.Equal(t, "AllowExecutionFromS3", perm.Properties["statement_id"])
	assert.Equal(t, "lambda:InvokeFunction", perm.Properties["action"])
	assert.Equal(t, "aws_lambda_function.processor.function_name", perm.Properties["function_name"])
	assert.Equal(t, "s3.amazonaws.com", perm.Properties["principal"])
	assert.Equal(t, "aws_s3_bucket.uploads.arn", perm.Properties["source_arn"])

	assert.Empty(t, recordsOfType(records, "aws_iam_role_policy"),
		"a trigger edge grants no execution-role statement")
}

func TestCompileMixedTargetKindsSplitPolicies(t *testing.T) {
	d := &diagram.Diagram{
		Nodes: []diagram.Node{
			{ID: "fn", Kind: diagram.KindLambda, Properties: map[string]any{"name": "worker"}},
			{ID: "b", Kind: diagram.KindS3, Properties: map[string]any{"name": "archive"}},
			{ID: "t", Kind: diagram.KindDynamoDB, Properties: map[string]any{"name": "orders"}},
		},
		Edges: []diagram.Edge{
			{ID: "e1", From: "fn", To: "b", Category: diagram.CategoryPermission},
			{ID: "e2", From: "fn", To: "t", Category: diagram.CategoryPermission},
		},
	}
	names := map[string]string{"fn": "worker", "b": "archive", "t": "orders"}

	records := NewEngine().Compile(d, names, NewDedupContext())

	policies := recordsOfType(records, "aws_iam_role_policy")
	require.Len(t, policies, 2, "distinct target kinds keep their own policy")
	assert.Equal(t, "worker_lambda_s3_access", policies[0].Name)
	assert.Equal(t, "worker_lambda_dynamodb_access", policies[1].Name)

	require.Len(t, recordsOfType(records, "aws_iam_role"), 1,
		"both groups share the single lambda role")
}

func TestCompileSkipsEdgesWithMissingNodes(t *testing.T) {
	d := &diagram.Diagram{
		Nodes: []diagram.Node{
			{ID: "fn", Kind: diagram.KindLambda, Properties: map[string]any{"name": "worker"}},
		},
		Edges: []diagram.Edge{
			{ID: "e1", From: "fn", To: "ghost", Category: diagram.CategoryPermission},
		},
	}

	records := NewEngine().Compile(d, map[string]string{"fn": "worker"}, NewDedupContext())
	assert.Empty(t, records)
}

func TestCompileDeterministicAcrossRuns(t *testing.T) {
	d, names := fanOutDiagram(2)
	d.Nodes = append(d.Nodes, diagram.Node{ID: "q", Kind: diagram.KindSQS, Properties: map[string]any{"name": "jobs"}})
	d.Edges = append(d.Edges, diagram.Edge{ID: "eq", From: "fn", To: "q", Category: diagram.CategoryPermission})
	names["q"] = "jobs"

	first := NewEngine().Compile(d, names, NewDedupContext())
	second := NewEngine().Compile(d, names, NewDedupContext())
	require.Equal(t, first, second)
}

func TestDedupContextClaimsOnce(t *testing.T) {
	ctx := NewDedupContext()
	assert.True(t, ctx.ClaimRole("r"))
	assert.False(t, ctx.ClaimRole("r"))
	assert.True(t, ctx.ClaimPolicy("p"))
	assert.False(t, ctx.ClaimPolicy("p"))
	assert.True(t, ctx.ClaimPolicy("r"), "role and policy namespaces are independent")
}

func TestExpandPattern(t *testing.T) {
	tests := []struct {
		pattern string
		target  string
		want    string
	}{
		{"arn:aws:s3:::*", "bucket_a", "arn:aws:s3:::bucket_a"},
		{"arn:aws:s3:::*/*", "bucket_a", "arn:aws:s3:::bucket_a/*"},
		{"arn:aws:dynamodb:*:*:table/*", "orders", "arn:aws:dynamodb:*:*:table/orders"},
		{"arn:aws:sqs:*:*:*", "jobs", "arn:aws:sqs:*:*:jobs"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPattern(tt.pattern, tt.target), tt.pattern)
	}
}

func TestTrustPrincipalFallback(t *testing.T) {
	assert.Equal(t, "lambda.amazonaws.com", TrustPrincipal(diagram.KindLambda))
	assert.Equal(t, "elasticache.amazonaws.com", TrustPrincipal(diagram.Kind("elasticache")))
}

func TestCanInteract(t *testing.T) {
	assert.True(t, CanInteract(diagram.KindLambda, diagram.KindS3))
	assert.True(t, CanInteract(diagram.KindS3, diagram.KindLambda))
	assert.False(t, CanInteract(diagram.KindS3, diagram.KindVPC))
}
