// Package schemas embeds the JSON Schemas for benchmark report files and
// .dbtbench.yaml configuration files.
package schemas

import _ "embed"

// ReportSchemaJSON is the JSON Schema for benchmark report files.
//
//go:embed report.schema.json
var ReportSchemaJSON string

// ConfigSchemaJSON is the JSON Schema for .dbtbench.yaml files.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
