package sign

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OutputFunc runs a program with stdin and returns its standard output.
type OutputFunc func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// ExecOutput is the OutputFunc backed by os/exec. Standard error is folded
// into the returned error.
func ExecOutput(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s not found, this tool requires macOS: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
