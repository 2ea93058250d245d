package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// QueryRequestSchema is the JSON schema for the POST /query body.
var QueryRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"question": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 2000,
		},
		"limit": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
			"maximum": 1000,
		},
	},
	"required":             []interface{}{"question"},
	"additionalProperties": false,
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateAgainstSchema validates a decoded JSON document against a schema map.
func ValidateAgainstSchema(schemaMap, data map[string]interface{}) (*ValidationResult, error) {
	if len(schemaMap) == 0 {
		return &ValidationResult{Valid: true}, nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]ValidationError, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = ValidationError{
				Field:   desc.Field(),
				Message: desc.Description(),
			}
		}
		return &ValidationResult{Valid: false, Errors: errs}, nil
	}

	return &ValidationResult{Valid: true}, nil
}

// ValidateQueryRequest validates the decoded /query request body.
func ValidateQueryRequest(body map[string]interface{}) (*ValidationResult, error) {
	return ValidateAgainstSchema(QueryRequestSchema, body)
}
