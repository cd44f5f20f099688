// SPDX-License-Identifier: Apache-2.0
package config

import (
	"encoding/json"
	"strings"
)

// JSONSchema represents a JSON Schema Draft 2020-12 document
type JSONSchema struct {
	Schema               string                 `json:"$schema"`
	Title                string                 `json:"title"`
	Description          string                 `json:"description"`
	Type                 string                 `json:"type"`
	Properties           map[string]interface{} `json:"properties"`
	AdditionalProperties bool                   `json:"additionalProperties"`
}

// JSONSchemaProperty represents a property in the JSON Schema
type JSONSchemaProperty struct {
	Type        string                 `json:"type,omitempty"`
	Description string                 `json:"description,omitempty"`
	Default     interface{}            `json:"default,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Pattern     string                 `json:"pattern,omitempty"`
	ReadOnly    bool                   `json:"readOnly,omitempty"`
	Items       *JSONSchemaProperty    `json:"items,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

// GenerateJSONSchema generates a JSON Schema for the user config file from the ConfigRegistry.
// Sections accept additional properties so unknown settings survive a round trip.
func GenerateJSONSchema() ([]byte, error) {
	schema := JSONSchema{
		Schema:               "https://json-schema.org/draft/2020-12/schema",
		Title:                "Keep Configuration",
		Description:          "User configuration for the keep password store",
		Type:                 "object",
		Properties:           make(map[string]interface{}),
		AdditionalProperties: true,
	}

	for _, def := range ConfigRegistry {
		addProperty(&schema, def)
	}

	return json.MarshalIndent(schema, "", "  ")
}

// addProperty adds a property to the schema under its section object
func addProperty(schema *JSONSchema, def ConfigKeyDefinition) {
	section, name, ok := strings.Cut(def.Key, ".")
	if !ok {
		schema.Properties[def.Key] = buildProperty(def)
		return
	}

	if _, exists := schema.Properties[section]; !exists {
		schema.Properties[section] = &JSONSchemaProperty{
			Type:       "object",
			Properties: make(map[string]interface{}),
		}
	}
	prop := schema.Properties[section].(*JSONSchemaProperty)
	prop.Properties[name] = buildProperty(def)
}

// buildProperty creates a JSONSchemaProperty from a ConfigKeyDefinition
func buildProperty(def ConfigKeyDefinition) *JSONSchemaProperty {
	prop := &JSONSchemaProperty{
		Description: def.Description,
		Default:     def.Default,
		ReadOnly:    def.ReadOnly,
	}

	switch def.Type {
	case "bool":
		prop.Type = "boolean"
	case "string", "path":
		prop.Type = "string"
		prop.Pattern = def.Pattern
	case "enum":
		prop.Type = "string"
		prop.Enum = def.EnumValues
	case "list":
		prop.Type = "array"
		prop.Items = &JSONSchemaProperty{Type: "string", Pattern: def.Pattern}
	}

	return prop
}
