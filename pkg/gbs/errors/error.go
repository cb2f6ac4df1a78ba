package errors

import (
	"fmt"
	"strings"

	"mgv-hq/ganymede/pkg/gbs/ast"
)

// ErrorType categorizes an error encountered while parsing, validating, or
// resolving a GBS spec. The resolution types map one-to-one onto the
// failure modes of the indirection mechanisms.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML syntax error
	ErrorTypeStructural ErrorType = "structural" // Document shape violation
	ErrorTypeValidation ErrorType = "validation" // Lint-level finding
	ErrorTypeIO         ErrorType = "io"         // File I/O error

	// Resolution failures.
	ErrorTypeUnresolvedReference  ErrorType = "unresolved_reference"   // @name with no such variable
	ErrorTypeUnresolvedAlias      ErrorType = "unresolved_alias"       // =name with no such entry
	ErrorTypeCircularReference    ErrorType = "circular_reference"     // reference chain revisits itself
	ErrorTypeInvalidMergeBase     ErrorType = "invalid_merge_base"     // merge base resolved to a non-mapping
	ErrorTypeUnknownDynamicValue  ErrorType = "unknown_dynamic_value"  // @@name with no registered provider
)

// Error is a rich error with location, context, and an optional suggestion.
// Resolution errors additionally carry the entry being resolved and, for
// circular references, the full reference chain.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Location   ast.Location // Source location (file, line, column)
	Entry      string       // Entry being resolved when the error occurred
	Chain      []string     // Full reference chain for circular references
	Context    string       // Surrounding lines of source
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface. It returns a formatted message
// with location, chain, context, and suggestion where present.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Location.String()))
	}

	if len(e.Chain) > 0 {
		sb.WriteString(fmt.Sprintf("  = chain: %s\n", strings.Join(e.Chain, " -> ")))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// ErrorList accumulates errors so one pass can surface every problem in a
// spec instead of failing on the first.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Location: location,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// Merge appends every error from other.
func (el *ErrorList) Merge(other *ErrorList) {
	if other == nil {
		return
	}
	el.Errors = append(el.Errors, other.Errors...)
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
// It returns all errors formatted as a single string.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if at least one error of the given type is present.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

// ByEntry returns all errors recorded against the named entry.
func (el *ErrorList) ByEntry(entry string) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Entry == entry {
			result = append(result, err)
		}
	}
	return result
}
