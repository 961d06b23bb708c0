package table

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/formhelper/formhelper/internal/common"
)

// contentSchema pins the content wire contract on the write path: an object
// with a required rows matrix of strings and an optional headers array.
const contentSchema = `{
	"type": "object",
	"required": ["rows"],
	"properties": {
		"headers": {
			"type": "array",
			"items": {"type": "string"}
		},
		"rows": {
			"type": "array",
			"items": {
				"type": "array",
				"items": {"type": "string"}
			}
		}
	}
}`

var compiledContentSchema = jsonschema.MustCompileString("table-content.json", contentSchema)

// ValidateContent checks an encoded content document against the wire
// contract. The orchestrator calls this before persisting so a malformed
// writer bug surfaces at write time instead of as silently skipped records
// at export time.
func ValidateContent(content string) error {
	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return &common.SerializationError{Cause: err}
	}
	if err := compiledContentSchema.Validate(doc); err != nil {
		return &common.SerializationError{Cause: err}
	}
	return nil
}
