package internal

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// outputTailLen bounds how much captured generator output is kept for
// diagnostics.
const outputTailLen = 2048

// Invoker runs the external report generator against a project
// directory. Implementations must be safe for sequential reuse; the
// coordinator guarantees at most one invocation runs at a time.
type Invoker interface {
	Invoke(ctx context.Context, projectDir string) error
}

// CommandInvoker invokes the generator as a subprocess with the project
// directory as its working directory. The subprocess exit code and
// captured output are the sole success/failure signal.
type CommandInvoker struct {
	// Command is the generator argv, e.g. ["uvx", "claude-code-log@latest"].
	Command []string
	// Timeout bounds a single run; the subprocess is killed on expiry.
	Timeout time.Duration
}

// NewCommandInvoker creates an invoker for the given argv and timeout.
func NewCommandInvoker(command []string, timeout time.Duration) *CommandInvoker {
	return &CommandInvoker{Command: command, Timeout: timeout}
}

// Invoke runs the generator synchronously. Failures are returned as
// *GeneratorError with a kind the caller can branch on.
func (ci *CommandInvoker) Invoke(ctx context.Context, projectDir string) error {
	name := ci.Command[0]

	if _, err := exec.LookPath(name); err != nil {
		return &GeneratorError{Kind: GeneratorNotFound, Command: name, Err: err}
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if ci.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, ci.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, ci.Command[1:]...)
	cmd.Dir = projectDir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	err := cmd.Run()
	if err == nil {
		LogInfo("Generator finished in %s", time.Since(start).Round(time.Millisecond))
		return nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return &GeneratorError{
			Kind:    GeneratorTimeout,
			Command: name,
			Output:  outputTail(output.Bytes()),
			Err:     err,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &GeneratorError{
			Kind:     GeneratorNonZeroExit,
			Command:  name,
			ExitCode: exitErr.ExitCode(),
			Output:   outputTail(output.Bytes()),
			Err:      err,
		}
	}

	return &GeneratorError{
		Kind:    GeneratorNonZeroExit,
		Command: name,
		Output:  outputTail(output.Bytes()),
		Err:     err,
	}
}

// outputTail keeps the end of the captured output, which is where
// generators usually print the actual error.
func outputTail(out []byte) string {
	if len(out) > outputTailLen {
		out = out[len(out)-outputTailLen:]
	}
	return string(out)
}
