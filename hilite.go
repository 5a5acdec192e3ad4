/*
Package hilite is a grammar-driven syntax classification (highlighting) engine.

Consists of subpackages:
  - cmd/hilite: console utility printing token streams, checking grammar files and ranking grammars;
  - grammar: defines immutable compiled grammar (modes, terminator patterns, keyword tables, categories);
  - langdef: converts grammar description (YAML or Go data) to compiled grammar;
  - languages: grammar descriptions bundled with the module;
  - lexer: mode-stack scanner producing nested token streams and relevance scores;
  - pattern: pattern fragments substitution and validation;
  - registry: grammar lookup by name or alias, one-time compilation, relevance ranking;
  - source: defines source buffer with line and column lookup.

Typical usage is:

1. Describe grammar as a tree of modes in YAML (or build langdef.Definition in Go).
Description does not contain Go code, new languages are added without engine changes.

2. Compile description with langdef subpackage or register it in a registry.Registry.

3. Scan text with lexer.Scan and consume the returned token stream.
*/
package hilite

import (
	"errors"
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	GrammarErrors  = 1   // used by pattern and langdef
	ScanErrors     = 101 // used by lexer
	RegistryErrors = 201 // used by registry
)

// Error is the error type used by hilite subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos implements this interface.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	} else if line != 0 && col != 0 {
		msg += fmt.Sprintf(" at line %d col %d", line, col)
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// IsGrammarError tells whether this is a compile-time grammar error.
func (e *Error) IsGrammarError() bool {
	return e.Code >= GrammarErrors && e.Code < ScanErrors
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// Code returns error code of e if it is (or wraps) *Error, 0 otherwise.
func Code(e error) int {
	var he *Error
	if errors.As(e, &he) {
		return he.Code
	}
	return 0
}
