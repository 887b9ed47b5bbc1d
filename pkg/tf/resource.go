// Package tf holds the generated-resource record and the deterministic
// HCL renderer that turns a record list into a main.tf document.
package tf

// ProviderType is the synthetic record type used for provider
// configuration; the renderer skips it because the provider block is
// part of the fixed preamble.
const ProviderType = "provider"

// Resource is one generated Terraform resource block. Name is the
// sanitized identifier used wherever other resources reference this
// one; Properties hold the block body.
type Resource struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

// Address returns the Terraform address of the resource, e.g.
// "aws_lambda_function.processor".
func (r Resource) Address() string {
	return r.Type + "." + r.Name
}
