package config

import (
	"fmt"
	"strings"

	"buildall/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Value: value, Message: "is required"}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateNonNegative checks that an integer is not negative
func ValidateNonNegative(field string, value int) error {
	if value < 0 {
		return ValidationError{Field: field, Value: value, Message: "must not be negative"}
	}
	return nil
}

// ValidateSubdir checks a conda platform string of the form <os>-<arch>
func ValidateSubdir(field, value string) error {
	osName, arch, ok := strings.Cut(value, "-")
	if !ok || arch == "" {
		return ValidationError{Field: field, Value: value, Message: "must be of the form <os>-<arch>, e.g. linux-64"}
	}
	if err := ValidateOneOf(field, osName, []string{"linux", "osx", "win"}); err != nil {
		return err
	}
	return nil
}

func (ve *ValidationErrors) check(err error) {
	if err == nil {
		return
	}
	if v, ok := err.(ValidationError); ok {
		*ve = append(*ve, v)
		return
	}
	ve.Add("", err.Error())
}

// Validate checks the whole configuration and returns ValidationErrors, or
// nil when it is usable.
func (c Config) Validate() error {
	var errs ValidationErrors

	errs.check(ValidateRequired("recipes.directory", c.Recipes.Directory))
	errs.check(ValidateNonNegative("matrix.maxMajorVersions", c.Matrix.MaxMajorVersions))
	errs.check(ValidateNonNegative("matrix.maxMinorVersions", c.Matrix.MaxMinorVersions))
	errs.check(ValidateNonNegative("index.retryMax", c.Index.RetryMax))
	if c.Index.Subdir != "" {
		errs.check(ValidateSubdir("index.subdir", c.Index.Subdir))
	}
	if len(c.Build.Command) == 0 || strings.TrimSpace(c.Build.Command[0]) == "" {
		errs.Add("build.command", "is required")
	}
	for i, dest := range c.Upload.Destinations {
		errs.check(ValidateRequired(fmt.Sprintf("upload.destinations[%d]", i), dest))
	}
	for i, cond := range c.Matrix.Conditions {
		errs.check(ValidateRequired(fmt.Sprintf("matrix.conditions[%d]", i), cond))
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		errs.Add("logging.level", "must be one of: debug, info, warn, error", c.Logging.Level)
	}
	errs.check(ValidateOneOf("logging.format", c.Logging.Format, []string{"text", "json"}))

	if errs.HasErrors() {
		return errs
	}
	return nil
}
