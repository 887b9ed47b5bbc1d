package policy

import (
	"strings"

	"terraform-canvas/pkg/diagram"
)

// Category classifies where a policy statement attaches: to the target
// resource itself, to the source's execution role, or both.
type Category string

const (
	CategoryResourceBased Category = "resource-based"
	CategoryExecutionRole Category = "execution-role"
	CategoryBoth          Category = "both"
)

// Requirement is one static access-control rule keyed by the kinds at
// either end of an edge. ResourcePatterns carry a `*` wildcard in the
// ARN resource segment that gets substituted with the target's
// sanitized name at emission time.
type Requirement struct {
	Category         Category
	Source           diagram.Kind
	Target           diagram.Kind
	Actions          []string
	ResourcePatterns []string
	Description      string
}

// requirementTable is loaded once and never mutated.
var requirementTable = []Requirement{
	// Execution-role grants: the source identity acts on the target.
	{
		Category:         CategoryExecutionRole,
		Source:           diagram.KindLambda,
		Target:           diagram.KindS3,
		Actions:          []string{"s3:GetObject", "s3:PutObject", "s3:ListBucket"},
		ResourcePatterns: []string{"arn:aws:s3:::*", "arn:aws:s3:::*/*"},
		Description:      "Lambda read/write access to S3 buckets",
	},
	{
		Category:         CategoryExecutionRole,
		Source:           diagram.KindLambda,
		Target:           diagram.KindDynamoDB,
		Actions:          []string{"dynamodb:GetItem", "dynamodb:PutItem", "dynamodb:UpdateItem", "dynamodb:DeleteItem", "dynamodb:Query", "dynamodb:Scan"},
		ResourcePatterns: []string{"arn:aws:dynamodb:*:*:table/*"},
		Description:      "Lambda CRUD access to DynamoDB tables",
	},
	{
		Category:         CategoryExecutionRole,
		Source:           diagram.KindLambda,
		Target:           diagram.KindSQS,
		Actions:          []string{"sqs:SendMessage", "sqs:GetQueueUrl", "sqs:GetQueueAttributes"},
		ResourcePatterns: []string{"arn:aws:sqs:*:*:*"},
		Description:      "Lambda send access to SQS queues",
	},
	{
		Category:         CategoryExecutionRole,
		Source:           diagram.KindLambda,
		Target:           diagram.KindSNS,
		Actions:          []string{"sns:Publish"},
		ResourcePatterns: []string{"arn:aws:sns:*:*:*"},
		Description:      "Lambda publish access to SNS topics",
	},
	{
		Category:         CategoryExecutionRole,
		Source:           diagram.KindEC2,
		Target:           diagram.KindS3,
		Actions:          []string{"s3:GetObject", "s3:PutObject", "s3:ListBucket"},
		ResourcePatterns: []string{"arn:aws:s3:::*", "arn:aws:s3:::*/*"},
		Description:      "EC2 instance read/write access to S3 buckets",
	},
	{
		Category:         CategoryExecutionRole,
		Source:           diagram.KindEC2,
		Target:           diagram.KindDynamoDB,
		Actions:          []string{"dynamodb:GetItem", "dynamodb:PutItem", "dynamodb:Query", "dynamodb:Scan"},
		ResourcePatterns: []string{"arn:aws:dynamodb:*:*:table/*"},
		Description:      "EC2 instance access to DynamoDB tables",
	},
	{
		Category:         CategoryExecutionRole,
		Source:           diagram.KindEC2,
		Target:           diagram.KindSQS,
		Actions:          []string{"sqs:SendMessage", "sqs:ReceiveMessage", "sqs:DeleteMessage"},
		ResourcePatterns: []string{"arn:aws:sqs:*:*:*"},
		Description:      "EC2 instance access to SQS queues",
	},
	{
		Category:         CategoryExecutionRole,
		Source:           diagram.KindEC2,
		Target:           diagram.KindSNS,
		Actions:          []string{"sns:Publish"},
		ResourcePatterns: []string{"arn:aws:sns:*:*:*"},
		Description:      "EC2 instance publish access to SNS topics",
	},

	// Resource-based grants: the target names the source as an
	// allowed caller.
	{
		Category:    CategoryResourceBased,
		Source:      diagram.KindS3,
		Target:      diagram.KindLambda,
		Actions:     []string{"lambda:InvokeFunction"},
		Description: "S3 bucket notifications may invoke the function",
	},
	{
		Category:    CategoryResourceBased,
		Source:      diagram.KindAPIGateway,
		Target:      diagram.KindLambda,
		Actions:     []string{"lambda:InvokeFunction"},
		Description: "API Gateway may invoke the function",
	},
	{
		Category:    CategoryResourceBased,
		Source:      diagram.KindSNS,
		Target:      diagram.KindLambda,
		Actions:     []string{"lambda:InvokeFunction"},
		Description: "SNS subscriptions may invoke the function",
	},
	{
		Category:    CategoryResourceBased,
		Source:      diagram.KindSQS,
		Target:      diagram.KindLambda,
		Actions:     []string{"lambda:InvokeFunction"},
		Description: "SQS event source mappings may invoke the function",
	},
}

// RequirementsFor returns every table entry matching the kind pair,
// in table order.
func RequirementsFor(source, target diagram.Kind) []Requirement {
	var out []Requirement
	for _, r := range requirementTable {
		if r.Source == source && r.Target == target {
			out = append(out, r)
		}
	}
	return out
}

// ExpandPattern substitutes the first wildcard in the ARN resource
// segment (everything after the last colon) with the target name.
// Region and account wildcards earlier in the ARN are preserved.
func ExpandPattern(pattern, targetName string) string {
	i := strings.LastIndex(pattern, ":")
	if i < 0 {
		return strings.Replace(pattern, "*", targetName, 1)
	}
	return pattern[:i+1] + strings.Replace(pattern[i+1:], "*", targetName, 1)
}
