package internal

import "fmt"

// ConfigError represents an invalid or unusable configuration value.
// Config errors are fatal at startup.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ScanError represents errors reading the watched directory tree.
// Scan errors are recoverable: the cycle is skipped and retried.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error: %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// GeneratorErrorKind distinguishes the failure modes of the external
// report generator so callers can branch on cause.
type GeneratorErrorKind int

const (
	// GeneratorNotFound means the generator command is not on PATH.
	GeneratorNotFound GeneratorErrorKind = iota
	// GeneratorNonZeroExit means the generator ran but exited non-zero.
	GeneratorNonZeroExit
	// GeneratorTimeout means the generator was killed after exceeding its deadline.
	GeneratorTimeout
)

func (k GeneratorErrorKind) String() string {
	switch k {
	case GeneratorNotFound:
		return "not-found"
	case GeneratorNonZeroExit:
		return "non-zero-exit"
	case GeneratorTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// GeneratorError represents a failed invocation of the external generator.
type GeneratorError struct {
	Kind     GeneratorErrorKind
	Command  string
	ExitCode int
	Output   string // captured stdout+stderr tail, for diagnostics
	Err      error
}

func (e *GeneratorError) Error() string {
	switch e.Kind {
	case GeneratorNotFound:
		return fmt.Sprintf("generator error: %s not found: %v", e.Command, e.Err)
	case GeneratorNonZeroExit:
		return fmt.Sprintf("generator error: %s exited with code %d", e.Command, e.ExitCode)
	case GeneratorTimeout:
		return fmt.Sprintf("generator error: %s timed out", e.Command)
	default:
		return fmt.Sprintf("generator error: %s: %v", e.Command, e.Err)
	}
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}
