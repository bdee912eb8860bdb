package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

// SchemaValidator checks job variables against the input schemas declared in
// the activity registry. Task types without a schema always pass.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaValidator compiles every input schema in reg.
func NewSchemaValidator(reg *registry.ActivityRegistry) (*SchemaValidator, error) {
	v := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema)}
	if reg == nil {
		return v, nil
	}
	for _, a := range reg.Activities {
		if !a.HasInputSchema() {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("invalid input schema for %s: %w", a.TaskType, err)
		}
		v.schemas[a.TaskType] = schema
	}
	return v, nil
}

// TaskTypes lists the task types that have a compiled schema.
func (v *SchemaValidator) TaskTypes() []string {
	out := make([]string, 0, len(v.schemas))
	for t := range v.schemas {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Check validates a raw JSON document and reports every violation.
func (v *SchemaValidator) Check(taskType, variables string) (*ValidationResult, error) {
	schema, ok := v.schemas[taskType]
	if !ok {
		return &ValidationResult{Valid: true}, nil
	}
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	res, err := schema.Validate(gojsonschema.NewStringLoader(variables))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	result := &ValidationResult{Valid: res.Valid()}
	for _, desc := range res.Errors() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return result, nil
}

// Validate returns a SCHEMA_VALIDATION_FAILED error when variables do not
// satisfy the task type's input schema, and INVALID_INPUT when they are not
// JSON at all.
func (v *SchemaValidator) Validate(taskType, variables string) error {
	result, err := v.Check(taskType, variables)
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return errors.NewSchemaValidationFailedError(taskType, result.GetErrorMessages())
	}
	return nil
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
