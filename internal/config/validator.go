package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator builds a validator that reports fields by their
// mapstructure tag, so messages name config file keys rather than Go
// struct fields.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return field.Name
		}
		return tag
	})
	return v
}

// Validate checks the Config using struct tags and cross-field rules.
// Returns an error with actionable messages on failure.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	// Cross-field: sqlite requires a database path.
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		return errors.New("storage: path is required when driver is sqlite")
	}

	return nil
}

// formatValidationErrors converts validator errors into messages that
// name the offending config key.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatSingleError(e validator.FieldError) string {
	key := configKey(e.Namespace())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", key, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", key, e.Tag())
	}
}

// configKey converts a namespace like "Config.auth.signing_secret" to
// the config file key "auth.signing_secret".
func configKey(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
