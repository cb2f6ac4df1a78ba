package pipeline

import "fmt"

// TaskError wraps a failure of one pipeline task with its identity.
type TaskError struct {
	Genome   string
	Datatype string
	Phase    string
	Cause    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("pipeline task %s/%s/%s failed: %v",
		e.Genome, e.Datatype, e.Phase, e.Cause)
}

func (e *TaskError) Unwrap() error {
	return e.Cause
}

// NewTaskError creates a task error for the given task.
func NewTaskError(task *Task, cause error) *TaskError {
	return &TaskError{
		Genome:   task.Genome,
		Datatype: task.Datatype,
		Phase:    task.Phase,
		Cause:    cause,
	}
}

// AdapterNotFoundError indicates a section named a source with no
// registered adapter.
type AdapterNotFoundError struct {
	Source string
}

func (e *AdapterNotFoundError) Error() string {
	return fmt.Sprintf("no adapter registered for source %q", e.Source)
}

// NewAdapterNotFoundError creates an adapter lookup error.
func NewAdapterNotFoundError(source string) *AdapterNotFoundError {
	return &AdapterNotFoundError{Source: source}
}

// StateError wraps a completion state store failure.
type StateError struct {
	Operation string
	Cause     error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("pipeline state %s failed: %v", e.Operation, e.Cause)
}

func (e *StateError) Unwrap() error {
	return e.Cause
}

// NewStateError creates a state store error.
func NewStateError(operation string, cause error) *StateError {
	return &StateError{Operation: operation, Cause: cause}
}

// SelectionError indicates an invalid task selection filter: a genome
// pattern that does not compile, or an unknown phase or datatype name.
type SelectionError struct {
	Field string
	Value string
	Cause error
}

func (e *SelectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s selection %q: %v", e.Field, e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid %s selection %q", e.Field, e.Value)
}

func (e *SelectionError) Unwrap() error {
	return e.Cause
}

// NewSelectionError creates a selection filter error.
func NewSelectionError(field, value string, cause error) *SelectionError {
	return &SelectionError{Field: field, Value: value, Cause: cause}
}
