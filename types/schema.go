package types

import (
	"encoding/json"
	"fmt"

	"github.com/eino-contrib/jsonschema"
)

// ContactFormSchema returns the JSON schema of the fields the classifier may fill.
func ContactFormSchema() (string, error) {
	schema := jsonschema.Reflect(&FormData{})
	schema.Title = "Contact form"
	schema.Description = "Message the visitor wants to send to the portfolio owner. All fields are optional in a single turn."
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(schemaBytes), nil
}
