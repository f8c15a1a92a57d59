// Package validation checks service inputs against struct tags and reports
// failures as apperr validation errors with one message per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/example/taskmanager/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so messages match request payloads.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct validates s and returns an *apperr.Error of kind validation when any
// rule fails. Unexpected validator failures are returned as internal errors.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal(fmt.Errorf("validate %T: %w", s, err))
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Path:    fieldPath(fe),
			Message: message(fe),
		})
	}
	return apperr.Validation(fields...)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("Must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("Must contain at most %s character(s)", fe.Param())
	case "oneof":
		options := strings.Fields(fe.Param())
		return fmt.Sprintf("Invalid enum value. Expected '%s'", strings.Join(options, "' | '"))
	default:
		return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
	}
}
