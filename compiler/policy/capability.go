package policy

import "terraform-canvas/pkg/diagram"

// capability describes which kinds a kind may invoke or access, and
// which kinds may invoke or access it. The table backs connection
// validation; it is not consulted during generation.
type capability struct {
	Invokes   []diagram.Kind
	InvokedBy []diagram.Kind
}

var capabilityTable = map[diagram.Kind]capability{
	diagram.KindLambda: {
		Invokes:   []diagram.Kind{diagram.KindS3, diagram.KindDynamoDB, diagram.KindSQS, diagram.KindSNS, diagram.KindRDS},
		InvokedBy: []diagram.Kind{diagram.KindS3, diagram.KindAPIGateway, diagram.KindSNS, diagram.KindSQS, diagram.KindDynamoDB},
	},
	diagram.KindS3: {
		Invokes:   []diagram.Kind{diagram.KindLambda},
		InvokedBy: []diagram.Kind{diagram.KindLambda, diagram.KindEC2, diagram.KindCloudFront},
	},
	diagram.KindAPIGateway: {
		Invokes: []diagram.Kind{diagram.KindLambda},
	},
	diagram.KindEC2: {
		Invokes: []diagram.Kind{diagram.KindS3, diagram.KindDynamoDB, diagram.KindRDS, diagram.KindSQS, diagram.KindSNS},
	},
	diagram.KindSQS: {
		Invokes:   []diagram.Kind{diagram.KindLambda},
		InvokedBy: []diagram.Kind{diagram.KindLambda, diagram.KindSNS, diagram.KindEC2},
	},
	diagram.KindSNS: {
		Invokes:   []diagram.Kind{diagram.KindLambda, diagram.KindSQS},
		InvokedBy: []diagram.Kind{diagram.KindLambda, diagram.KindEC2},
	},
	diagram.KindDynamoDB: {
		Invokes:   []diagram.Kind{diagram.KindLambda},
		InvokedBy: []diagram.Kind{diagram.KindLambda, diagram.KindEC2},
	},
	diagram.KindRDS: {
		InvokedBy: []diagram.Kind{diagram.KindLambda, diagram.KindEC2},
	},
	diagram.KindCloudFront: {
		Invokes: []diagram.Kind{diagram.KindS3, diagram.KindAPIGateway},
	},
}

// CanInteract reports whether a connection between the two kinds is
// semantically meaningful: the source lists the target as invocable,
// or the target lists the source as an allowed caller.
func CanInteract(source, target diagram.Kind) bool {
	if c, ok := capabilityTable[source]; ok {
		for _, k := range c.Invokes {
			if k == target {
				return true
			}
		}
	}
	if c, ok := capabilityTable[target]; ok {
		for _, k := range c.InvokedBy {
			if k == source {
				return true
			}
		}
	}
	return false
}
