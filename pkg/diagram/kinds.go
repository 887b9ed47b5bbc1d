package diagram

// Kind identifies the service type a node represents.
type Kind string

const (
	KindVPC           Kind = "vpc"
	KindSubnet        Kind = "subnet"
	KindSecurityGroup Kind = "security_group"
	KindEC2           Kind = "ec2"
	KindLambda        Kind = "lambda"
	KindS3            Kind = "s3"
	KindDynamoDB      Kind = "dynamodb"
	KindRDS           Kind = "rds"
	KindSQS           Kind = "sqs"
	KindSNS           Kind = "sns"
	KindAPIGateway    Kind = "api_gateway"
	KindCloudFront    Kind = "cloudfront"
)

// AllKinds lists every kind the editor can place on the canvas.
func AllKinds() []Kind {
	return []Kind{
		KindVPC,
		KindSubnet,
		KindSecurityGroup,
		KindEC2,
		KindLambda,
		KindS3,
		KindDynamoDB,
		KindRDS,
		KindSQS,
		KindSNS,
		KindAPIGateway,
		KindCloudFront,
	}
}

// IsKnown reports whether k is one of the supported kinds.
// Unknown kinds still compile to a generic resource record.
func (k Kind) IsKnown() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// IsGrouping reports whether nodes of this kind act as containers
// on the canvas (they carry width/height instead of an icon).
func (k Kind) IsGrouping() bool {
	switch k {
	case KindVPC, KindSubnet, KindSecurityGroup:
		return true
	}
	return false
}
