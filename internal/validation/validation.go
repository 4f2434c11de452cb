// Package validation wraps go-playground/validator with json field names
// and the domain's slug rule.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dcsystem/dcs-backend/internal/apperr"
	"github.com/go-playground/validator/v10"
)

// SlugPattern is the accepted shape of a permission slug.
var SlugPattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

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

	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return SlugPattern.MatchString(fl.Field().String())
	})
}

// Struct validates s and returns an InvalidArgument error describing every
// failing field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.InvalidArgument("Validation failed").WithDetails(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fieldMessage(fe))
	}
	return apperr.InvalidArgument("Validation failed").WithDetails(strings.Join(messages, "; "))
}

// Var validates a single value against tag.
func Var(field string, value interface{}, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return apperr.InvalidArgument("Validation failed").WithDetails(fmt.Sprintf("%s is invalid", field))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must contain at least %s item(s)", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must contain at most %s item(s)", field, param)
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "slug":
		return fmt.Sprintf("%s may only contain lowercase letters, digits, dots, hyphens and underscores", field)
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
