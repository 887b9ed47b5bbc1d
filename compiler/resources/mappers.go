// Per-kind resource mappers. Defaults are pure functions of the node
// kind and its 1-indexed per-kind ordinal, so recompiling the same
// diagram always yields the same records.
package resources

import (
	"fmt"

	"terraform-canvas/pkg/diagram"
	"terraform-canvas/pkg/tf"
)

// =============================================================================
// VPC Mapper
// =============================================================================

type VPCMapper struct{}

func NewVPCMapper() *VPCMapper { return &VPCMapper{} }

func (m *VPCMapper) Kind() diagram.Kind { return diagram.KindVPC }

func (m *VPCMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)
	return &tf.Resource{
		Type: "aws_vpc",
		Name: name,
		Properties: map[string]any{
			"cidr_block":           ExtractStringDefault(node.Properties, "cidr", "10.0.0.0/16"),
			"enable_dns_support":   true,
			"enable_dns_hostnames": true,
			"tags":                 map[string]any{"Name": name},
		},
	}
}

// =============================================================================
// Subnet Mapper
// =============================================================================

type SubnetMapper struct{}

func NewSubnetMapper() *SubnetMapper { return &SubnetMapper{} }

func (m *SubnetMapper) Kind() diagram.Kind { return diagram.KindSubnet }

func (m *SubnetMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)

	// The nth subnet placed gets the nth /24 of the VPC range.
	cidr := ExtractStringDefault(node.Properties, "cidr",
		fmt.Sprintf("10.0.%d.0/24", scope.Ordinal(node.ID)))

	props := map[string]any{
		"cidr_block": cidr,
		"tags":       map[string]any{"Name": name},
	}
	if vpc := scope.Sole(diagram.KindVPC); vpc != nil {
		props["vpc_id"] = fmt.Sprintf("aws_vpc.%s.id", scope.NameFor(vpc.ID))
	}

	return &tf.Resource{Type: "aws_subnet", Name: name, Properties: props}
}

// =============================================================================
// Security Group Mapper
// =============================================================================

type SecurityGroupMapper struct{}

func NewSecurityGroupMapper() *SecurityGroupMapper { return &SecurityGroupMapper{} }

func (m *SecurityGroupMapper) Kind() diagram.Kind { return diagram.KindSecurityGroup }

func (m *SecurityGroupMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)

	props := map[string]any{
		"name":        name,
		"description": ExtractStringDefault(node.Properties, "description", "Managed by terraform-canvas"),
		"ingress": []any{
			map[string]any{
				"from_port":   22,
				"to_port":     22,
				"protocol":    "tcp",
				"cidr_blocks": []any{"0.0.0.0/0"},
			},
		},
		"egress": []any{
			map[string]any{
				"from_port":   0,
				"to_port":     0,
				"protocol":    "-1",
				"cidr_blocks": []any{"0.0.0.0/0"},
			},
		},
		"tags": map[string]any{"Name": name},
	}
	if vpc := scope.Sole(diagram.KindVPC); vpc != nil {
		props["vpc_id"] = fmt.Sprintf("aws_vpc.%s.id", scope.NameFor(vpc.ID))
	}

	return &tf.Resource{Type: "aws_security_group", Name: name, Properties: props}
}

// =============================================================================
// EC2 Instance Mapper
// =============================================================================

type EC2Mapper struct{}

func NewEC2Mapper() *EC2Mapper { return &EC2Mapper{} }

func (m *EC2Mapper) Kind() diagram.Kind { return diagram.KindEC2 }

func (m *EC2Mapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)

	props := map[string]any{
		"ami":           ExtractStringDefault(node.Properties, "ami", "ami-0c02fb55956c7d316"),
		"instance_type": ExtractStringDefault(node.Properties, "instance_type", "t2.micro"),
		"tags":          map[string]any{"Name": name},
	}
	if subnet := scope.Sole(diagram.KindSubnet); subnet != nil {
		props["subnet_id"] = fmt.Sprintf("aws_subnet.%s.id", scope.NameFor(subnet.ID))
	}
	if sg := scope.Sole(diagram.KindSecurityGroup); sg != nil {
		props["vpc_security_group_ids"] = []any{
			fmt.Sprintf("aws_security_group.%s.id", scope.NameFor(sg.ID)),
		}
	}

	return &tf.Resource{Type: "aws_instance", Name: name, Properties: props}
}

// =============================================================================
// Lambda Function Mapper
// =============================================================================

type LambdaMapper struct{}

func NewLambdaMapper() *LambdaMapper { return &LambdaMapper{} }

func (m *LambdaMapper) Kind() diagram.Kind { return diagram.KindLambda }

func (m *LambdaMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)

	props := map[string]any{
		"function_name": name,
		"runtime":       ExtractStringDefault(node.Properties, "runtime", "nodejs18.x"),
		"handler":       ExtractStringDefault(node.Properties, "handler", "index.handler"),
		"memory_size":   ExtractInt(node.Properties, "memory", 128),
		"timeout":       ExtractInt(node.Properties, "timeout", 3),
		"filename":      ExtractStringDefault(node.Properties, "filename", "lambda_function.zip"),
		"role":          fmt.Sprintf("aws_iam_role.%s_execution_role.arn", diagram.KindLambda),
		"tags":          map[string]any{"Name": name},
	}

	if env := m.environmentVariables(node, scope); len(env) > 0 {
		props["environment"] = map[string]any{"variables": env}
	}

	return &tf.Resource{Type: "aws_lambda_function", Name: name, Properties: props}
}

// environmentVariables derives the function's environment from its
// edges, in edge list order. A bucket the function is triggered by
// becomes INPUT_BUCKET; a bucket it has permission to write becomes
// OUTPUT_BUCKET; tables, queues and topics always contribute their
// identifier regardless of direction.
func (m *LambdaMapper) environmentVariables(node diagram.Node, scope *Scope) map[string]any {
	env := map[string]any{}

	for _, edge := range scope.EdgesTouching(node.ID) {
		neighborID := edge.From
		if neighborID == node.ID {
			neighborID = edge.To
		}
		neighbor := scope.Diagram.NodeByID(neighborID)
		if neighbor == nil {
			continue
		}
		neighborName := scope.NameFor(neighbor.ID)

		switch neighbor.Kind {
		case diagram.KindS3:
			if edge.Category == diagram.CategoryTrigger && edge.To == node.ID {
				env["INPUT_BUCKET"] = fmt.Sprintf("aws_s3_bucket.%s.bucket", neighborName)
			}
			if edge.Category == diagram.CategoryPermission && edge.From == node.ID {
				env["OUTPUT_BUCKET"] = fmt.Sprintf("aws_s3_bucket.%s.bucket", neighborName)
			}
		case diagram.KindDynamoDB:
			env["TABLE_NAME"] = fmt.Sprintf("aws_dynamodb_table.%s.name", neighborName)
		case diagram.KindSQS:
			env["QUEUE_URL"] = fmt.Sprintf("aws_sqs_queue.%s.url", neighborName)
		case diagram.KindSNS:
			env["TOPIC_ARN"] = fmt.Sprintf("aws_sns_topic.%s.arn", neighborName)
		}
	}

	return env
}

// =============================================================================
// S3 Bucket Mapper
// =============================================================================

type S3Mapper struct{}

func NewS3Mapper() *S3Mapper { return &S3Mapper{} }

func (m *S3Mapper) Kind() diagram.Kind { return diagram.KindS3 }

func (m *S3Mapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)
	return &tf.Resource{
		Type: "aws_s3_bucket",
		Name: name,
		Properties: map[string]any{
			"bucket":        name,
			"force_destroy": ExtractBool(node.Properties, "force_destroy", false),
			"tags":          map[string]any{"Name": name},
		},
	}
}

// =============================================================================
// DynamoDB Table Mapper
// =============================================================================

type DynamoDBMapper struct{}

func NewDynamoDBMapper() *DynamoDBMapper { return &DynamoDBMapper{} }

func (m *DynamoDBMapper) Kind() diagram.Kind { return diagram.KindDynamoDB }

func (m *DynamoDBMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)
	hashKey := ExtractStringDefault(node.Properties, "hash_key", "id")

	return &tf.Resource{
		Type: "aws_dynamodb_table",
		Name: name,
		Properties: map[string]any{
			"name":         name,
			"billing_mode": ExtractStringDefault(node.Properties, "billing_mode", "PAY_PER_REQUEST"),
			"hash_key":     hashKey,
			"attribute": []any{
				map[string]any{"name": hashKey, "type": "S"},
			},
			"tags": map[string]any{"Name": name},
		},
	}
}

// =============================================================================
// RDS Instance Mapper
// =============================================================================

type RDSMapper struct{}

func NewRDSMapper() *RDSMapper { return &RDSMapper{} }

func (m *RDSMapper) Kind() diagram.Kind { return diagram.KindRDS }

func (m *RDSMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)
	return &tf.Resource{
		Type: "aws_db_instance",
		Name: name,
		Properties: map[string]any{
			"identifier":                  name,
			"engine":                      ExtractStringDefault(node.Properties, "engine", "postgres"),
			"instance_class":              ExtractStringDefault(node.Properties, "instance_class", "db.t3.micro"),
			"allocated_storage":           ExtractInt(node.Properties, "allocated_storage", 20),
			"username":                    ExtractStringDefault(node.Properties, "username", "dbadmin"),
			"manage_master_user_password": true,
			"skip_final_snapshot":         true,
			"tags":                        map[string]any{"Name": name},
		},
	}
}

// =============================================================================
// SQS Queue Mapper
// =============================================================================

type SQSMapper struct{}

func NewSQSMapper() *SQSMapper { return &SQSMapper{} }

func (m *SQSMapper) Kind() diagram.Kind { return diagram.KindSQS }

func (m *SQSMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)
	return &tf.Resource{
		Type: "aws_sqs_queue",
		Name: name,
		Properties: map[string]any{
			"name":                       name,
			"visibility_timeout_seconds": ExtractInt(node.Properties, "visibility_timeout", 30),
			"tags":                       map[string]any{"Name": name},
		},
	}
}

// =============================================================================
// SNS Topic Mapper
// =============================================================================

type SNSMapper struct{}

func NewSNSMapper() *SNSMapper { return &SNSMapper{} }

func (m *SNSMapper) Kind() diagram.Kind { return diagram.KindSNS }

func (m *SNSMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)
	return &tf.Resource{
		Type: "aws_sns_topic",
		Name: name,
		Properties: map[string]any{
			"name": name,
			"tags": map[string]any{"Name": name},
		},
	}
}

// =============================================================================
// API Gateway Mapper
// =============================================================================

type APIGatewayMapper struct{}

func NewAPIGatewayMapper() *APIGatewayMapper { return &APIGatewayMapper{} }

func (m *APIGatewayMapper) Kind() diagram.Kind { return diagram.KindAPIGateway }

func (m *APIGatewayMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)
	return &tf.Resource{
		Type: "aws_api_gateway_rest_api",
		Name: name,
		Properties: map[string]any{
			"name":        name,
			"description": ExtractStringDefault(node.Properties, "description", "Managed by terraform-canvas"),
			"endpoint_configuration": map[string]any{
				"types": []any{"REGIONAL"},
			},
			"tags": map[string]any{"Name": name},
		},
	}
}

// =============================================================================
// CloudFront Distribution Mapper
// =============================================================================

type CloudFrontMapper struct{}

func NewCloudFrontMapper() *CloudFrontMapper { return &CloudFrontMapper{} }

func (m *CloudFrontMapper) Kind() diagram.Kind { return diagram.KindCloudFront }

func (m *CloudFrontMapper) Map(node diagram.Node, scope *Scope) *tf.Resource {
	name := scope.NameFor(node.ID)

	originDomain := "example.com"
	originID := "default-origin"
	if bucket := scope.Sole(diagram.KindS3); bucket != nil {
		bucketName := scope.NameFor(bucket.ID)
		originDomain = fmt.Sprintf("aws_s3_bucket.%s.bucket_regional_domain_name", bucketName)
		originID = bucketName
	}

	return &tf.Resource{
		Type: "aws_cloudfront_distribution",
		Name: name,
		Properties: map[string]any{
			"enabled": true,
			"origin": []any{
				map[string]any{
					"domain_name": originDomain,
					"origin_id":   originID,
				},
			},
			"default_cache_behavior": map[string]any{
				"allowed_methods":        []any{"GET", "HEAD"},
				"cached_methods":         []any{"GET", "HEAD"},
				"target_origin_id":       originID,
				"viewer_protocol_policy": "redirect-to-https",
				"forwarded_values": map[string]any{
					"query_string": false,
					"cookies":      map[string]any{"forward": "none"},
				},
			},
			"restrictions": map[string]any{
				"geo_restriction": map[string]any{"restriction_type": "none"},
			},
			"viewer_certificate": map[string]any{
				"cloudfront_default_certificate": true,
			},
			"tags": map[string]any{"Name": name},
		},
	}
}
