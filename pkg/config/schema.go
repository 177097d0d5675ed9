package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// configSchema is the JSON Schema the user config file must satisfy.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "fcman configuration",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "tolerance_seconds": {"type": "integer", "minimum": 0},
    "checksum_buffer_mib": {"type": "integer", "minimum": 1},
    "backups": {"type": "integer", "minimum": 0, "maximum": 9},
    "manifest_name": {"type": "string", "minLength": 1},
    "export_dir": {"type": "string"}
  }
}`

// ValidateConfig validates raw YAML config content against the schema.
func ValidateConfig(configData []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(configData, &doc); err != nil {
		return fmt.Errorf("config is not valid YAML: %w", err)
	}
	if doc == nil {
		return nil
	}

	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
