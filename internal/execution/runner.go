package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"slices"
)

// MessageFormat is the runner flag that makes it emit Cucumber Messages on stdout
var MessageFormat = []string{"--format", "message"}

// ErrNoCommand is returned when Start is called without a command
var ErrNoCommand = errors.New("no runner command given")

// Runner spawns the BDD runner and exposes its message stream
type Runner struct {
	stderr io.Writer
	dir    string
	cmd    *exec.Cmd
}

// NewRunner creates a Runner. The child's stderr is copied to stderr.
func NewRunner(stderr io.Writer, dir string) *Runner {
	return &Runner{stderr: stderr, dir: dir}
}

// Start launches argv with the message formatter enabled and returns its stdout.
// The stream must be read to EOF before calling Wait.
func (r *Runner) Start(ctx context.Context, argv []string) (io.Reader, error) {
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}
	if r.cmd != nil {
		return nil, fmt.Errorf("runner already started")
	}

	args := withMessageFormat(argv[1:])
	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.Dir = r.dir
	cmd.Stderr = r.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("attach runner stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	r.cmd = cmd
	return stdout, nil
}

// Wait blocks until the runner exits and returns its exit error unchanged
func (r *Runner) Wait() error {
	if r.cmd == nil {
		return ErrNoCommand
	}
	return r.cmd.Wait()
}

// ExitCode maps a Wait error to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

// withMessageFormat appends the message formatter unless the caller already asked for it
func withMessageFormat(args []string) []string {
	for i, a := range args {
		if a == "--format=message" || (a == "--format" || a == "-f") && i+1 < len(args) && args[i+1] == "message" {
			return args
		}
	}
	return append(slices.Clip(args), MessageFormat...)
}
