package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateRequest validates a decoded request against its validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeJSON decodes a JSON request body into v
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := DecodeJSON(r, v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

// NewValidationError builds a field error from a constraint such as "gte=0"
func NewValidationError(field, constraint string) ValidationError {
	tag, param, _ := strings.Cut(constraint, "=")
	return ValidationError{
		Field:      field,
		Constraint: constraint,
		Message:    ConstraintMessage(tag, param),
	}
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errs []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			constraint := e.Tag()
			if e.Param() != "" {
				constraint += "=" + e.Param()
			}
			errs = append(errs, NewValidationError(e.Field(), constraint))
		}
	}

	return errs
}

// ConstraintMessage describes a violated validation tag
func ConstraintMessage(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "min":
		return "Value must have a length of at least " + param
	case "gte":
		return "Value must be greater than or equal to " + param
	case "lte":
		return "Value must be less than or equal to " + param
	case "gt":
		return "Value must be greater than " + param
	case "lt":
		return "Value must be less than " + param
	case "decimal":
		return "Value must be a decimal number"
	case "uuid":
		return "Value must be a UUID"
	default:
		return "Invalid value"
	}
}
