package resources

import "terraform-canvas/pkg/diagram"

// RegisterAllMappers registers every built-in kind mapper with the engine.
func RegisterAllMappers(engine *Engine) {
	// Networking
	engine.RegisterMapper(NewVPCMapper())
	engine.RegisterMapper(NewSubnetMapper())
	engine.RegisterMapper(NewSecurityGroupMapper())

	// Compute
	engine.RegisterMapper(NewEC2Mapper())
	engine.RegisterMapper(NewLambdaMapper())

	// Storage & database
	engine.RegisterMapper(NewS3Mapper())
	engine.RegisterMapper(NewDynamoDBMapper())
	engine.RegisterMapper(NewRDSMapper())

	// Messaging & edge
	engine.RegisterMapper(NewSQSMapper())
	engine.RegisterMapper(NewSNSMapper())
	engine.RegisterMapper(NewAPIGatewayMapper())
	engine.RegisterMapper(NewCloudFrontMapper())
}

// SupportedKinds returns every kind with a dedicated mapper.
func SupportedKinds() []diagram.Kind {
	return diagram.AllKinds()
}
