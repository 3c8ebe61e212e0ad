package service

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// intakeSchema is the contract for the student-intake document embedded in
// an enrollment application. It is enforced only at creation and at
// self-service updates while the application is still pending payment.
const intakeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": [
    "full_name",
    "date_of_birth",
    "phone",
    "address",
    "emergency_contact_name",
    "emergency_contact_phone",
    "liability_waiver_accepted",
    "terms_accepted"
  ],
  "properties": {
    "full_name": {"type": "string", "minLength": 2, "maxLength": 255},
    "date_of_birth": {"type": "string", "format": "date"},
    "phone": {"type": "string", "minLength": 5, "maxLength": 32},
    "address": {"type": "string", "minLength": 5, "maxLength": 1000},
    "emergency_contact_name": {"type": "string", "minLength": 2, "maxLength": 255},
    "emergency_contact_phone": {"type": "string", "minLength": 5, "maxLength": 32},
    "liability_waiver_accepted": {"const": true},
    "terms_accepted": {"const": true},
    "prior_experience": {"type": "string", "maxLength": 4000},
    "medical_notes": {"type": "string", "maxLength": 4000}
  }
}`

var compiledIntakeSchema = jsonschema.MustCompileString("intake.json", intakeSchema)

// intakeDocument is the subset of intake fields the approval step reads when
// it synthesizes a member profile.
type intakeDocument struct {
	FullName              string `json:"full_name"`
	DateOfBirth           string `json:"date_of_birth"`
	Phone                 string `json:"phone"`
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
}

// validateIntake checks the raw intake payload against the schema. Both
// consent flags must be literally true for the document to pass.
func validateIntake(raw json.RawMessage) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: not valid JSON", ErrInvalidIntake)
	}
	if err := compiledIntakeSchema.Validate(doc); err != nil {
		return fmt.Errorf("intake payload rejected: %w", err)
	}
	return nil
}

func parseIntake(raw []byte) (intakeDocument, error) {
	var doc intakeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return intakeDocument{}, fmt.Errorf("failed to decode intake payload: %w", err)
	}
	return doc, nil
}
