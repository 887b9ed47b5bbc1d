package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-canvas/pkg/diagram"
)

func TestBuildNameIndexDefaults(t *testing.T) {
	d := &diagram.Diagram{Nodes: []diagram.Node{
		{ID: "a", Kind: diagram.KindS3},
		{ID: "b", Kind: diagram.KindS3, Properties: map[string]any{"name": "My Uploads"}},
		{ID: "c", Kind: diagram.KindS3},
	}}

	names := BuildNameIndex(d)
	assert.Equal(t, "s3_1", names["a"], "unnamed nodes number per kind in list order")
	assert.Equal(t, "my_uploads", names["b"])
	assert.Equal(t, "s3_3", names["c"], "explicit names do not reset the counter")
}

func TestScopeOrdinalsAndSole(t *testing.T) {
	d := &diagram.Diagram{Nodes: []diagram.Node{
		{ID: "vpc", Kind: diagram.KindVPC},
		{ID: "sub1", Kind: diagram.KindSubnet},
		{ID: "sub2", Kind: diagram.KindSubnet},
	}}
	scope := NewScope(d)

	assert.Equal(t, 1, scope.Ordinal("sub1"))
	assert.Equal(t, 2, scope.Ordinal("sub2"))

	vpc := scope.Sole(diagram.KindVPC)
	require.NotNil(t, vpc)
	assert.Equal(t, "vpc", vpc.ID)
	assert.Nil(t, scope.Sole(diagram.KindRDS))
}

func TestSubnetMapperOrdinalCIDR(t *testing.T) {
	d := &diagram.Diagram{Nodes: []diagram.Node{
		{ID: "vpc", Kind: diagram.KindVPC, Properties: map[string]any{"name": "main"}},
		{ID: "sub1", Kind: diagram.KindSubnet},
		{ID: "sub2", Kind: diagram.KindSubnet},
	}}
	scope := NewScope(d)
	mapper := NewSubnetMapper()

	first := mapper.Map(d.Nodes[1], scope)
	second := mapper.Map(d.Nodes[2], scope)

	assert.Equal(t, "10.0.1.0/24", first.Properties["cidr_block"])
	assert.Equal(t, "10.0.2.0/24", second.Properties["cidr_block"])
	assert.Equal(t, "aws_vpc.main.id", first.Properties["vpc_id"])
}

func TestLambdaMapperEnvironment(t *testing.T) {
	d := &diagram.Diagram{
		Nodes: []diagram.Node{
			{ID: "in", Kind: diagram.KindS3, Properties: map[string]any{"name": "input"}},
			{ID: "fn", Kind: diagram.KindLambda, Properties: map[string]any{"name": "processor"}},
			{ID: "out", Kind: diagram.KindS3, Properties: map[string]any{"name": "output"}},
			{ID: "tbl", Kind: diagram.KindDynamoDB, Properties: map[string]any{"name": "orders"}},
		},
		Edges: []diagram.Edge{
			{ID: "e1", From: "in", To: "fn", Category: diagram.CategoryTrigger},
			{ID: "e2", From: "fn", To: "out", Category: diagram.CategoryPermission},
			{ID: "e3", From: "fn", To: "tbl", Category: diagram.CategoryPermission},
		},
	}
	scope := NewScope(d)

	res := NewLambdaMapper().Map(d.Nodes[1], scope)
	require.NotNil(t, res)
	assert.Equal(t, "aws_lambda_function", res.Type)
	assert.Equal(t, "aws_iam_role.lambda_execution_role.arn", res.Properties["role"])

	env, ok := res.Properties["environment"].(map[string]any)
	require.True(t, ok, "edges must produce an environment block")
	vars := env["variables"].(map[string]any)
	assert.Equal(t, "aws_s3_bucket.input.bucket", vars["INPUT_BUCKET"])
	assert.Equal(t, "aws_s3_bucket.output.bucket", vars["OUTPUT_BUCKET"])
	assert.Equal(t, "aws_dynamodb_table.orders.name", vars["TABLE_NAME"])
}

func TestLambdaMapperNoEdgesNoEnvironment(t *testing.T) {
	d := &diagram.Diagram{Nodes: []diagram.Node{
		{ID: "fn", Kind: diagram.KindLambda, Properties: map[string]any{"name": "lonely"}},
	}}
	res := NewLambdaMapper().Map(d.Nodes[0], NewScope(d))

	_, hasEnv := res.Properties["environment"]
	assert.False(t, hasEnv)
}

func TestEngineFallsBackToGenericRecord(t *testing.T) {
	engine := NewEngine()
	d := &diagram.Diagram{Nodes: []diagram.Node{
		{ID: "x", Kind: diagram.Kind("elasticache"), Properties: map[string]any{"name": "sessions"}},
	}}

	out := engine.Compile(d)
	require.Len(t, out, 1)
	assert.Equal(t, "aws_elasticache", out[0].Type)
	assert.Equal(t, "sessions", out[0].Name)
}

func TestRegisterAllMappersCoversKnownKinds(t *testing.T) {
	kinds := SupportedKinds()
	for _, k := range diagram.AllKinds() {
		assert.Contains(t, kinds, k)
	}
}

func TestExtractHelpers(t *testing.T) {
	props := map[string]any{
		"s":   "text",
		"n":   float64(42), // JSON numbers decode as float64
		"b":   true,
		"bad": []any{},
	}

	assert.Equal(t, "text", ExtractString(props, "s"))
	assert.Equal(t, "", ExtractString(props, "bad"))
	assert.Equal(t, "fallback", ExtractStringDefault(props, "missing", "fallback"))
	assert.Equal(t, 42, ExtractInt(props, "n", 0))
	assert.Equal(t, 7, ExtractInt(props, "missing", 7))
	assert.True(t, ExtractBool(props, "b", false))
	assert.False(t, ExtractBool(props, "missing", false))
}
