// Package validation turns malformed request input into field-scoped errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// A single validator instance caches struct parsing across requests.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Detail
}

// Field builds a FieldError for use with fmt.Errorf("%w: %w", sentinel, ...).
func Field(field string, detail string) error {
	return FieldError{Field: field, Detail: detail}
}

// Struct validates v against its `validate` tags.
func Struct(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: "body", Detail: err.Error()}}
	}
	out := make([]FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		out = append(out, FieldError{
			Field:  fieldErr.Field(),
			Detail: describe(fieldErr),
		})
	}
	return out
}

// Details extracts the field errors carried by err, if any.
func Details(err error) []FieldError {
	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		return []FieldError{fieldErr}
	}
	return nil
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fieldErr.Param()
	case "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fieldErr.Param())
		}
		return "must be at least " + fieldErr.Param()
	case "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fieldErr.Param())
		}
		return "must be at most " + fieldErr.Param()
	case "len":
		return fmt.Sprintf("must have length %s", fieldErr.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %q validation", fieldErr.Tag())
	}
}
