package validation

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"startup-foundry/internal/models"
)

// LoadSchema loads a JSON schema from a file
func LoadSchema(schemaPath string) (*gojsonschema.Schema, error) {
	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaPath)
	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return schema, nil
}

// LoadSchemaBytes compiles a JSON schema held in memory
func LoadSchemaBytes(schemaData []byte) (*gojsonschema.Schema, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

// ValidateDocument validates a JSON string against a schema
func ValidateDocument(documentJSON string, schema *gojsonschema.Schema) error {
	documentLoader := gojsonschema.NewStringLoader(documentJSON)
	result, err := schema.Validate(documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// ValidateAndParseApp validates a generated-app JSON payload and unmarshals it
func ValidateAndParseApp(appJSON string, schema *gojsonschema.Schema) (*models.GeneratedApp, error) {
	if schema != nil {
		if err := ValidateDocument(appJSON, schema); err != nil {
			return nil, err
		}
	}

	var app models.GeneratedApp
	if err := json.Unmarshal([]byte(appJSON), &app); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &app, nil
}
