package teal

import "fmt"

// ErrorKind classifies a parse-time failure, per spec.md section 7's
// parse-error family.
type ErrorKind string

const (
	ErrUnknownOpcode    ErrorKind = "unknown_opcode"
	ErrBadImmediate     ErrorKind = "bad_immediate"
	ErrBadVersionPragma ErrorKind = "bad_version_pragma"
	ErrDuplicateLabel   ErrorKind = "duplicate_label"
)

// Error is a structured parse error, carrying enough location detail for
// internal/diag to log it and for cmd/tealer to report it without needing
// the original source text.
type Error struct {
	Kind    ErrorKind
	File    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Message)
}
