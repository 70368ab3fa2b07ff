package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

// templates maps a validation tag to a sentence. {field} and {param} are substituted.
var templates = map[string]string{
	"required":    "{field} is required",
	"email":       "{field} must be a valid email address",
	"uuid":        "{field} must be a valid UUID",
	"oneof":       "{field} must be one of {param}",
	"min":         "{field} must be greater than or equal to {param}",
	"gte":         "{field} must be greater than or equal to {param}",
	"max":         "{field} must be less than or equal to {param}",
	"lte":         "{field} must be less than or equal to {param}",
	"slug":        "{field} must contain lowercase letters, digits and single dashes only",
	"clock":       "{field} must be a time of day formatted as HH:MM",
	"mimetypes":   "{field} must be one of {param}",
	"maxfilesize": "{field} must not exceed {param} MB",
}

// message describes the first failing field that has a template.
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	for _, fieldErr := range fieldErrors {
		template, ok := templates[fieldErr.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", fieldErr.Field(), "{param}", fieldErr.Param()).Replace(template)
	}

	return fieldErrors.Error()
}
