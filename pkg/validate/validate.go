package validate

import (
	"errors"
	"fmt"
)

// ConfigurationError reports invalid or contradictory task attributes. It is
// always returned before any external process starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Errorf creates a ConfigurationError with a formatted reason.
func Errorf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// RequiredString validates that a string field is not empty
func RequiredString(value, field string) error {
	if value == "" {
		return &ConfigurationError{Field: field, Reason: "is required"}
	}
	return nil
}

// RequiredSlice validates that a slice has at least one element
func RequiredSlice(values []string, field string) error {
	if len(values) == 0 {
		return &ConfigurationError{Field: field, Reason: "requires at least one item"}
	}
	return nil
}

// OneOf validates that a string is one of the allowed values
func OneOf(value string, allowed []string, field string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf("invalid value %q", value)}
}

// AllOneOf validates that all items in a slice are in the allowed set
func AllOneOf(values []string, allowed []string, field string) error {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}

	for _, v := range values {
		if _, ok := allowedSet[v]; !ok {
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("invalid item %q", v)}
		}
	}
	return nil
}
