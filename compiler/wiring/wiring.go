// Package wiring emits the auxiliary records that connect a trigger
// edge's endpoints: bucket notifications, topic subscriptions, event
// source mappings and API Gateway integration triples. Pairs without
// a recipe emit nothing.
package wiring

import (
	"fmt"

	"terraform-canvas/pkg/diagram"
	"terraform-canvas/pkg/tf"
)

// recipe builds the wiring records for one trigger edge given the
// sanitized names of its endpoints.
type recipe func(sourceName, targetName string) []tf.Resource

var recipes = map[[2]diagram.Kind]recipe{
	{diagram.KindS3, diagram.KindLambda}:         s3BucketNotification,
	{diagram.KindSNS, diagram.KindLambda}:        snsSubscription,
	{diagram.KindSQS, diagram.KindLambda}:        sqsEventSourceMapping,
	{diagram.KindAPIGateway, diagram.KindLambda}: apiGatewayIntegration,
}

// Engine compiles trigger edges into wiring records.
type Engine struct{}

// NewEngine creates a wiring engine.
func NewEngine() *Engine { return &Engine{} }

// Compile walks the edge list and applies the matching recipe to
// every trigger edge. Edges referencing unknown nodes are skipped.
func (e *Engine) Compile(d *diagram.Diagram, names map[string]string) []tf.Resource {
	var out []tf.Resource

	for _, edge := range d.Edges {
		if edge.Category != diagram.CategoryTrigger {
			continue
		}
		from := d.NodeByID(edge.From)
		to := d.NodeByID(edge.To)
		if from == nil || to == nil {
			continue
		}
		r, ok := recipes[[2]diagram.Kind{from.Kind, to.Kind}]
		if !ok {
			continue
		}
		out = append(out, r(names[edge.From], names[edge.To])...)
	}

	return out
}

// s3BucketNotification wires bucket events to the function. It must
// not apply before the invoke permission exists, hence the explicit
// depends_on.
func s3BucketNotification(sourceName, targetName string) []tf.Resource {
	return []tf.Resource{{
		Type: "aws_s3_bucket_notification",
		Name: sourceName + "_notification",
		Properties: map[string]any{
			"bucket": fmt.Sprintf("aws_s3_bucket.%s.id", sourceName),
			"lambda_function": []any{
				map[string]any{
					"lambda_function_arn": fmt.Sprintf("aws_lambda_function.%s.arn", targetName),
					"events":              []any{"s3:ObjectCreated:*"},
				},
			},
			"depends_on": []any{
				fmt.Sprintf("aws_lambda_permission.%s_allow_%s", targetName, diagram.KindS3),
			},
		},
	}}
}

func snsSubscription(sourceName, targetName string) []tf.Resource {
	return []tf.Resource{{
		Type: "aws_sns_topic_subscription",
		Name: fmt.Sprintf("%s_to_%s", sourceName, targetName),
		Properties: map[string]any{
			"topic_arn": fmt.Sprintf("aws_sns_topic.%s.arn", sourceName),
			"protocol":  "lambda",
			"endpoint":  fmt.Sprintf("aws_lambda_function.%s.arn", targetName),
		},
	}}
}

func sqsEventSourceMapping(sourceName, targetName string) []tf.Resource {
	return []tf.Resource{{
		Type: "aws_lambda_event_source_mapping",
		Name: fmt.Sprintf("%s_to_%s", sourceName, targetName),
		Properties: map[string]any{
			"event_source_arn": fmt.Sprintf("aws_sqs_queue.%s.arn", sourceName),
			"function_name":    fmt.Sprintf("aws_lambda_function.%s.arn", targetName),
			"batch_size":       10,
		},
	}}
}

// apiGatewayIntegration emits the resource/method/integration triple
// that proxies every request under the API to the function.
func apiGatewayIntegration(sourceName, targetName string) []tf.Resource {
	apiRef := fmt.Sprintf("aws_api_gateway_rest_api.%s", sourceName)
	resourceName := fmt.Sprintf("%s_%s_resource", sourceName, targetName)
	methodName := fmt.Sprintf("%s_%s_method", sourceName, targetName)

	return []tf.Resource{
		{
			Type: "aws_api_gateway_resource",
			Name: resourceName,
			Properties: map[string]any{
				"rest_api_id": apiRef + ".id",
				"parent_id":   apiRef + ".root_resource_id",
				"path_part":   targetName,
			},
		},
		{
			Type: "aws_api_gateway_method",
			Name: methodName,
			Properties: map[string]any{
				"rest_api_id":   apiRef + ".id",
				"resource_id":   fmt.Sprintf("aws_api_gateway_resource.%s.id", resourceName),
				"http_method":   "ANY",
				"authorization": "NONE",
			},
		},
		{
			Type: "aws_api_gateway_integration",
			Name: fmt.Sprintf("%s_%s_integration", sourceName, targetName),
			Properties: map[string]any{
				"rest_api_id":             apiRef + ".id",
				"resource_id":             fmt.Sprintf("aws_api_gateway_resource.%s.id", resourceName),
				"http_method":             fmt.Sprintf("aws_api_gateway_method.%s.http_method", methodName),
				"type":                    "AWS_PROXY",
				"integration_http_method": "POST",
				"uri":                     fmt.Sprintf("aws_lambda_function.%s.invoke_arn", targetName),
			},
		},
	}
}
