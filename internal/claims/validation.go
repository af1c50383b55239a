// internal/claims/validation.go
package claims

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	clienterrors "claims-client/internal/common/errors"
	"claims-client/internal/models"
)

// claimRequestSchemaTemplate is the client-side contract a claim must
// satisfy before it is allowed to reach the network. The treatment
// type enum is filled in from models.KnownTreatmentTypes.
const claimRequestSchemaTemplate = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["policy_id", "treatment_type", "claimed_amount"],
	"properties": {
		"policy_id": {
			"type": "string",
			"minLength": 1
		},
		"treatment_type": {
			"type": "string",
			"enum": %s
		},
		"claimed_amount": {
			"type": "number",
			"exclusiveMinimum": 0
		},
		"hospital_name": {
			"type": "string"
		},
		"treatment_date": {
			"type": "string"
		},
		"description": {
			"type": "string"
		}
	}
}`

var claimRequestSchema = func() string {
	enum, err := json.Marshal(models.KnownTreatmentTypes)
	if err != nil {
		panic(fmt.Sprintf("claim schema enum: %v", err))
	}
	return fmt.Sprintf(claimRequestSchemaTemplate, enum)
}()

// ValidateClaim checks a claim against the request schema. A failure is
// returned as a validation error and the claim must not be submitted.
func ValidateClaim(claim interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(claimRequestSchema)
	documentLoader := gojsonschema.NewGoLoader(claim)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return clienterrors.NewValidationError(err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			details = append(details, resultErr.String())
		}
		return clienterrors.NewValidationError(strings.Join(details, "; "))
	}
	return nil
}
