package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse lists every rejected field of a request body.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// ToValidationErrorResponse converts a binding error into field level messages.
// Errors that are not validator errors (e.g. malformed JSON) become a single "body" entry.
func ToValidationErrorResponse(err error) ValidationErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationErrorResponse("body", "Invalid request body")
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: jsonFieldName(fe.Field()), Message: fieldMessage(fe)})
	}
	return ValidationErrorResponse{Errors: out}
}

// NewValidationErrorResponse builds a response for a single field.
func NewValidationErrorResponse(field, message string) ValidationErrorResponse {
	return ValidationErrorResponse{Errors: []FieldError{{Field: field, Message: message}}}
}

func fieldMessage(fe validator.FieldError) string {
	name := jsonFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

func jsonFieldName(field string) string {
	if field == "IDToken" {
		return "idToken"
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
