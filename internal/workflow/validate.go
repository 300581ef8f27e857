// internal/workflow/validate.go
package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"customer-service-workers/internal/common/errors"
	"customer-service-workers/internal/models"
)

// requestSchema is the shape contract for workflow entry requests. Enum and
// identifier rules are checked again by the model validators below; the schema
// catches structural problems with a readable message first.
const requestSchema = `{
	"type": "object",
	"required": ["customerId", "issueDescription"],
	"properties": {
		"customerId": {
			"type": "string",
			"minLength": 1,
			"pattern": "^[a-zA-Z0-9]+$"
		},
		"issueDescription": {
			"type": "string",
			"minLength": 1,
			"maxLength": 5000
		},
		"channel": {
			"type": "string",
			"enum": ["web", "email", "phone", "chat", "api"]
		},
		"priorityOverride": {
			"type": "string",
			"enum": ["low", "medium", "high", "critical"]
		},
		"metadata": {
			"type": "object"
		}
	},
	"additionalProperties": false
}`

var schemaLoader = gojsonschema.NewStringLoader(requestSchema)

// ValidateRequest checks a workflow entry request against the schema and the
// domain validation rules, returning an INVALID_REQUEST error on failure.
func ValidateRequest(req *Request) error {
	doc, err := json.Marshal(req)
	if err != nil {
		return errors.NewInvalidRequestError(fmt.Sprintf("marshal request: %v", err))
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return errors.NewInvalidRequestError(fmt.Sprintf("schema validation: %v", err))
	}
	if !result.Valid() {
		details := ""
		for i, issue := range result.Errors() {
			if i > 0 {
				details += "; "
			}
			details += issue.String()
		}
		return errors.NewInvalidRequestError(details)
	}

	if err := models.ValidateCustomerID(req.CustomerID); err != nil {
		return errors.NewInvalidCustomerIDError(err.Error())
	}
	if req.PriorityOverride != nil && !req.PriorityOverride.Valid() {
		return errors.NewInvalidRequestError(fmt.Sprintf("unknown priority override %q", *req.PriorityOverride))
	}
	return nil
}
