package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// JSONSchema defines the structure for input schemas
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties,omitempty"`
}

// Property constrains one field. When Message is set it replaces the
// generated message for every violation of the property.
type Property struct {
	Type      string      `json:"type"`
	Format    string      `json:"format,omitempty"`
	MinLength *int        `json:"minLength,omitempty"`
	Const     interface{} `json:"const,omitempty"`
	Trim      bool        `json:"trim,omitempty"`
	Message   string      `json:"message,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateInput validates input against the schema. Missing required fields
// are reported first, then per-field violations.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	errors := []ValidationError{}

	for _, requiredField := range schema.Required {
		if _, exists := input[requiredField]; !exists {
			msg := "required field missing"
			if prop, ok := schema.Properties[requiredField]; ok && prop.Message != "" {
				msg = prop.Message
			}
			errors = append(errors, ValidationError{
				Field:   requiredField,
				Message: msg,
				Code:    "REQUIRED_FIELD_MISSING",
			})
		}
	}

	for fieldName, value := range input {
		prop, exists := schema.Properties[fieldName]
		if !exists {
			if !schema.AdditionalProperties {
				errors = append(errors, ValidationError{
					Field:   fieldName,
					Message: "field not allowed in schema",
					Code:    "EXTRA_FIELD",
				})
			}
			continue
		}

		errors = append(errors, validateField(fieldName, value, prop)...)
	}

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateField(fieldName string, value interface{}, prop Property) []ValidationError {
	errors := []ValidationError{}
	add := func(msg, code string) {
		if prop.Message != "" {
			msg = prop.Message
		}
		errors = append(errors, ValidationError{Field: fieldName, Message: msg, Code: code})
	}

	if typeErr := validateType(value, prop.Type); typeErr != nil {
		add(typeErr.Error(), "INVALID_TYPE")
		return errors
	}

	if prop.Const != nil && value != prop.Const {
		add(fmt.Sprintf("value must be %v", prop.Const), "CONST_VIOLATION")
	}

	if strVal, ok := value.(string); ok {
		if prop.Trim {
			strVal = strings.TrimSpace(strVal)
		}

		if prop.MinLength != nil && utf8.RuneCountInString(strVal) < *prop.MinLength {
			add(fmt.Sprintf("value must be at least %d characters", *prop.MinLength), "MIN_LENGTH_VIOLATION")
		}

		if prop.Format == "email" && !ValidateEmail(strVal) {
			add("value must be a valid email address", "FORMAT_VIOLATION")
		}
	}

	return errors
}

func validateType(value interface{}, expectedType string) error {
	switch expectedType {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	}
	return nil
}

// FieldMessages returns the first message per field.
func (vr *ValidationResult) FieldMessages() map[string]string {
	out := make(map[string]string, len(vr.Errors))
	for _, err := range vr.Errors {
		if _, seen := out[err.Field]; !seen {
			out[err.Field] = err.Message
		}
	}
	return out
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IntPtr builds an optional length constraint.
func IntPtr(v int) *int { return &v }
