package pipe

import (
	"github.com/xctask/xctask/pkg/context"
)

// Piper defines the interface for all pipeline steps.
// Each pipe is one phase of a task or of the coverage report and is executed
// sequentially by the pipeline.
type Piper interface {
	// String returns the pipe name for logging and identification.
	// This is displayed to users as the pipe executes.
	String() string

	// Run executes the pipe's logic. To indicate an intentional skip (not an
	// error), return a SkipError via pipe.Skip().
	Run(ctx *context.Context) error
}

// IsSkip indicates that a pipe was intentionally skipped.
// This is not an error condition but a normal part of pipeline execution.
type IsSkip interface {
	IsSkip() bool
}

// SkipError represents an intentional skip of a pipeline step. The
// pipeline continues with the next pipe.
type SkipError struct {
	Reason string
}

func (e SkipError) Error() string { return e.Reason }
func (e SkipError) IsSkip() bool  { return true }

// Skip creates a new skip error with the given reason.
func Skip(reason string) SkipError {
	return SkipError{Reason: reason}
}
