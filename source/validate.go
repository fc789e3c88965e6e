package source

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report field names as they appear in the file
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	messages := lo.Map(fieldErrors, func(e validator.FieldError, _ int) string {
		return fmt.Sprintf("%s %s", e.Field(), friendlyMessage(e))
	})

	return fmt.Errorf("invalid source: %s", strings.Join(messages, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "startswith":
		return "must be an http or https URL"
	case "min":
		return fmt.Sprintf("must have at least %s entries", e.Param())
	case "gt":
		return "must be greater than " + e.Param()
	default:
		return "is invalid"
	}
}
