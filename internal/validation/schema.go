package validation

import (
	"encoding/json"
	"fmt"

	"awning-admin-api/internal/models"
	"awning-admin-api/internal/utils"

	"github.com/xeipuuv/gojsonschema"
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

// ValidateJSON validates a JSON payload against a schema
func ValidateJSON(payload []byte, schema *gojsonschema.Schema) error {
	documentLoader := gojsonschema.NewBytesLoader(payload)
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

// ValidateAndParseIngestRequest validates an inbound-email payload against
// the ingestion schema and unmarshals it. The schema is the boundary
// contract with the mail pipeline; gin binding tags alone do not check the
// category enum.
func ValidateAndParseIngestRequest(payload []byte, schema *gojsonschema.Schema) (*models.IngestTaskRequest, error) {
	if err := ValidateJSON(payload, schema); err != nil {
		return nil, err
	}

	var req models.IngestTaskRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	// Manually raised tasks have no pipeline email id; generate one so the
	// audit trail and pending workflow links still carry a stable reference
	if req.IncomingEmailID == "" {
		req.IncomingEmailID = utils.GenerateUUID()
	}

	return &req, nil
}
