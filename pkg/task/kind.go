package task

import (
	"fmt"

	"github.com/xctask/xctask/pkg/validate"
)

// Kind selects the xcodebuild action a task runs.
type Kind string

const (
	KindTest    Kind = "test"
	KindBuild   Kind = "build"
	KindArchive Kind = "archive"
	KindExport  Kind = "export"
)

// Kinds lists every kind in CLI order.
var Kinds = []Kind{KindTest, KindBuild, KindArchive, KindExport}

// ParseKind validates a kind name from configuration.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", validate.Errorf("kind", "unknown task kind %q, expected one of test, build, archive, export", s)
}

// DefaultName is the task name used when the configuration gives none.
// Archive and export live in the build namespace.
func (k Kind) DefaultName() string {
	switch k {
	case KindArchive:
		return "build:archive"
	case KindExport:
		return "build:export"
	default:
		return string(k)
	}
}

// State is a task's position in its lifecycle.
type State int

const (
	Unconfigured State = iota
	Configured
	Validated
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Validated:
		return "validated"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Done reports whether the state is terminal.
func (s State) Done() bool {
	return s == Succeeded || s == Failed
}

// TransitionError reports an operation attempted in the wrong state.
type TransitionError struct {
	Task string
	From State
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("task %s: cannot %s while %s", e.Task, e.Op, e.From)
}
