package tf

import (
	"fmt"
	"sort"
	"strings"
)

// referencePrefixes mark string values that are HCL expressions and
// must be rendered unquoted.
var referencePrefixes = []string{
	"var.",
	"aws_",
	"${",
	"local.",
	"data.",
}

// blockArrayKeys are attribute names whose array-of-object values
// render as repeated sub-blocks instead of a list literal.
var blockArrayKeys = map[string]bool{
	"ingress":         true,
	"egress":          true,
	"origin":          true,
	"stage":           true,
	"action":          true,
	"tag":             true,
	"attribute":       true,
	"lifecycle_rule":  true,
	"cors_rule":       true,
	"lambda_function": true,
}

// nestedBlockKeys are attribute names whose single-object values
// render as a sub-block instead of an inline map literal.
var nestedBlockKeys = map[string]bool{
	"default_cache_behavior": true,
	"forwarded_values":       true,
	"cookies":                true,
	"environment":            true,
	"versioning":             true,
	"website":                true,
	"point_in_time_recovery": true,
	"tracing_config":         true,
	"restrictions":           true,
	"viewer_certificate":     true,
	"geo_restriction":        true,
	"server_side_encryption": true,
	"endpoint_configuration": true,
}

// IsReference reports whether a string value should be emitted as a
// bare expression rather than a quoted literal.
func IsReference(s string) bool {
	for _, p := range referencePrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Format renders the resource list as a complete Terraform document:
// a fixed provider/variable preamble, one block per resource in list
// order, and an outputs postamble derived from the resource types.
// Rendering the same list twice produces byte-identical text.
func Format(resources []Resource) string {
	var b strings.Builder

	writePreamble(&b)

	for _, r := range resources {
		if r.Type == ProviderType {
			continue
		}
		writeResource(&b, r)
	}

	writeOutputs(&b, resources)

	return b.String()
}

func writePreamble(b *strings.Builder) {
	b.WriteString(`terraform {
  required_providers {
    aws = {
      source  = "hashicorp/aws"
      version = "~> 5.0"
    }
  }
}

provider "aws" {
  region = var.aws_region
}

variable "aws_region" {
  description = "AWS region to deploy into"
  type        = string
  default     = "us-east-1"
}

`)
}

func writeResource(b *strings.Builder, r Resource) {
	fmt.Fprintf(b, "resource %q %q {\n", r.Type, r.Name)
	writeAttributes(b, r.Properties, 1)
	b.WriteString("}\n\n")
}

func writeAttributes(b *strings.Builder, attrs map[string]any, depth int) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indent := strings.Repeat("  ", depth)
	for _, k := range keys {
		writeAttribute(b, indent, k, attrs[k], depth)
	}
}

func writeAttribute(b *strings.Builder, indent, key string, value any, depth int) {
	switch v := value.(type) {
	case map[string]any:
		if nestedBlockKeys[key] {
			fmt.Fprintf(b, "%s%s {\n", indent, key)
			writeAttributes(b, v, depth+1)
			fmt.Fprintf(b, "%s}\n", indent)
			return
		}
		fmt.Fprintf(b, "%s%s = %s\n", indent, key, inlineMap(v))

	case []any:
		if len(v) > 0 && allObjects(v) && blockArrayKeys[key] {
			for _, item := range v {
				fmt.Fprintf(b, "%s%s {\n", indent, key)
				writeAttributes(b, item.(map[string]any), depth+1)
				fmt.Fprintf(b, "%s}\n", indent)
			}
			return
		}
		fmt.Fprintf(b, "%s%s = %s\n", indent, key, listLiteral(v))

	default:
		fmt.Fprintf(b, "%s%s = %s\n", indent, key, scalarLiteral(value))
	}
}

func allObjects(items []any) bool {
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func scalarLiteral(value any) string {
	switch v := value.(type) {
	case string:
		if IsReference(v) {
			return v
		}
		return quote(v)
	case bool:
		return fmt.Sprintf("%t", v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func listLiteral(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			parts[i] = inlineMap(m)
			continue
		}
		parts[i] = scalarLiteral(item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func inlineMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		switch v := m[k].(type) {
		case map[string]any:
			parts[i] = fmt.Sprintf("%s = %s", k, inlineMap(v))
		case []any:
			parts[i] = fmt.Sprintf("%s = %s", k, listLiteral(v))
		default:
			parts[i] = fmt.Sprintf("%s = %s", k, scalarLiteral(m[k]))
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

// outputRecipes map a resource type to the outputs generated for each
// resource of that type.
type outputRecipe struct {
	suffix string
	attr   string
	desc   string
}

var outputRecipes = map[string][]outputRecipe{
	"aws_lambda_function": {
		{suffix: "function_name", attr: "function_name", desc: "Name of the Lambda function"},
		{suffix: "arn", attr: "arn", desc: "ARN of the Lambda function"},
	},
	"aws_s3_bucket": {
		{suffix: "bucket", attr: "bucket", desc: "Name of the S3 bucket"},
	},
	"aws_instance": {
		{suffix: "public_ip", attr: "public_ip", desc: "Public IP of the EC2 instance"},
	},
	"aws_api_gateway_rest_api": {
		{suffix: "execution_arn", attr: "execution_arn", desc: "Execution ARN of the API"},
	},
	"aws_dynamodb_table": {
		{suffix: "table_name", attr: "name", desc: "Name of the DynamoDB table"},
	},
	"aws_sqs_queue": {
		{suffix: "queue_url", attr: "url", desc: "URL of the SQS queue"},
	},
	"aws_sns_topic": {
		{suffix: "topic_arn", attr: "arn", desc: "ARN of the SNS topic"},
	},
	"aws_db_instance": {
		{suffix: "endpoint", attr: "endpoint", desc: "Connection endpoint of the database"},
	},
	"aws_cloudfront_distribution": {
		{suffix: "domain_name", attr: "domain_name", desc: "Domain name of the distribution"},
	},
}

func writeOutputs(b *strings.Builder, resources []Resource) {
	for _, r := range resources {
		recipes, ok := outputRecipes[r.Type]
		if !ok {
			continue
		}
		for _, rec := range recipes {
			fmt.Fprintf(b, "output %q {\n", r.Name+"_"+rec.suffix)
			fmt.Fprintf(b, "  description = %s\n", quote(rec.desc))
			fmt.Fprintf(b, "  value       = %s.%s\n", r.Address(), rec.attr)
			b.WriteString("}\n\n")
		}
	}
}
