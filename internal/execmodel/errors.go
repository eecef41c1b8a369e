package execmodel

import "fmt"

// ErrorKind classifies a configuration-loading failure, per spec.md
// section 7's configuration-error family.
type ErrorKind string

const (
	ErrMalformedYAML    ErrorKind = "malformed_yaml"
	ErrMissingField     ErrorKind = "missing_field"
	ErrUnknownReference ErrorKind = "unknown_reference"
	ErrReadFailure      ErrorKind = "read_failure"
)

// Error is a structured configuration error, keyed by a YAML-path-like
// location rather than a line number since yaml.v3's unmarshal errors
// don't reliably carry one.
type Error struct {
	Kind    ErrorKind
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
