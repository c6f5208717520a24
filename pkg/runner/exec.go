package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// maxLineSize bounds a single output line; xcodebuild emits very long compiler invocations.
const maxLineSize = 16 * 1024 * 1024

// Exec runs commands as real processes.
type Exec struct {
	Out    io.Writer          // console side channel, os.Stdout when nil
	Logger logrus.FieldLogger // optional
}

// Ensure Exec implements Runner
var _ Runner = (*Exec)(nil)

// NewExec creates an Exec writing live output to out.
func NewExec(out io.Writer, logger logrus.FieldLogger) *Exec {
	return &Exec{Out: out, Logger: logger}
}

// Run prints the command line, starts the process and streams its combined
// output line by line. A nonzero exit of the primary process returns a
// *CommandFailedError together with the partial result.
func (e *Exec) Run(ctx context.Context, c Command, hooks Hooks) (*Result, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	if err := runBefore(ctx, hooks); err != nil {
		return nil, err
	}

	_, _ = fmt.Fprintln(e.out(), c.String())
	if e.Logger != nil {
		e.Logger.WithField("dir", c.Dir).Debugf("exec %s", c.String())
	}

	var (
		res *Result
		err error
	)
	if c.Formatter != "" {
		res, err = e.runPiped(ctx, c)
	} else {
		res, err = e.runDirect(ctx, c)
	}
	if err != nil {
		return res, err
	}

	if res.ExitCode != 0 {
		return res, &CommandFailedError{Tool: c.Tool(), Args: c.Args, ExitCode: res.ExitCode}
	}

	if err := runAfter(ctx, hooks, res); err != nil {
		return res, err
	}
	return res, nil
}

// runDirect captures stdout and stderr of a single process through one pipe
// so the two streams keep their relative order.
func (e *Exec) runDirect(ctx context.Context, c Command) (*Result, error) {
	cmd := e.command(ctx, c.Args, c)

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create output pipe: %w", err)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, fmt.Errorf("failed to start %s: %w", c.Tool(), err)
	}
	// The child holds its own copy of the write end; EOF arrives when it exits.
	_ = w.Close()

	lines, readErr := e.stream(r)
	_ = r.Close()

	code, err := exitStatus(cmd.Wait())
	res := &Result{Output: lines, ExitCode: code}
	if err != nil {
		return res, fmt.Errorf("%s: %w", c.Tool(), err)
	}
	if readErr != nil {
		return res, fmt.Errorf("failed to read output of %s: %w", c.Tool(), readErr)
	}
	return res, nil
}

// runPiped connects primary -> formatter with an OS pipe. The returned exit
// status is the primary's; the formatter only shapes the output.
func (e *Exec) runPiped(ctx context.Context, c Command) (*Result, error) {
	primary := e.command(ctx, c.Args, c)
	formatter := e.command(ctx, []string{"/bin/sh", "-c", c.Formatter}, c)

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter pipe: %w", err)
	}
	or, ow, err := os.Pipe()
	if err != nil {
		closeAll(pr, pw)
		return nil, fmt.Errorf("failed to create output pipe: %w", err)
	}

	primary.Stdout = pw
	primary.Stderr = pw
	formatter.Stdin = pr
	formatter.Stdout = ow
	formatter.Stderr = ow

	if err := formatter.Start(); err != nil {
		closeAll(pr, pw, or, ow)
		return nil, fmt.Errorf("failed to start formatter %q: %w", c.Formatter, err)
	}
	if err := primary.Start(); err != nil {
		closeAll(pr, pw, ow)
		_ = formatter.Wait()
		_ = or.Close()
		return nil, fmt.Errorf("failed to start %s: %w", c.Tool(), err)
	}
	closeAll(pr, pw, ow)

	lines, readErr := e.stream(or)
	_ = or.Close()

	code, err := exitStatus(primary.Wait())
	if fmtErr := formatter.Wait(); fmtErr != nil && e.Logger != nil {
		e.Logger.Warnf("formatter %q: %v", c.Formatter, fmtErr)
	}

	res := &Result{Output: lines, ExitCode: code}
	if err != nil {
		return res, fmt.Errorf("%s: %w", c.Tool(), err)
	}
	if readErr != nil {
		return res, fmt.Errorf("failed to read output of %s: %w", c.Tool(), readErr)
	}
	return res, nil
}

// stream forwards each line to the console as soon as it is read and keeps a copy.
func (e *Exec) stream(r io.Reader) ([]string, error) {
	out := e.out()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		_, _ = fmt.Fprintln(out, line)
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func (e *Exec) command(ctx context.Context, args []string, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = environment(c)
	return cmd
}

func (e *Exec) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

// environment returns nil to inherit the parent environment. With Isolate the
// result is non-nil even when empty, which gives the child no variables at all.
func environment(c Command) []string {
	if c.Isolate {
		env := make([]string, 0, len(c.Env))
		return append(env, c.Env...)
	}
	if len(c.Env) == 0 {
		return nil
	}
	return append(os.Environ(), c.Env...)
}

// exitStatus maps the error of cmd.Wait to an exit status. Errors other than
// a nonzero exit are returned as is.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal
			code = 1
		}
		return code, nil
	}
	return -1, err
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
