package runner

import (
	"errors"
	"fmt"
)

// CommandFailedError reports a nonzero exit of an external process.
type CommandFailedError struct {
	Tool     string
	Args     []string
	ExitCode int
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("%s failed (exited with status: %d)", e.Tool, e.ExitCode)
}

// ExitCode returns the exit status carried by a *CommandFailedError anywhere
// in err's chain.
func ExitCode(err error) (int, bool) {
	var failed *CommandFailedError
	if errors.As(err, &failed) {
		return failed.ExitCode, true
	}
	return 0, false
}
