package libbuild

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned for operating systems without a
	// known shared library naming convention.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrMissingEnv is returned if a required environment variable is unset.
	ErrMissingEnv = errors.New("missing environment variable")

	// ErrBindings is returned if the bindings could not be generated.
	ErrBindings = errors.New("unable to generate bindings")

	// ErrShellExpansion is returned by [ShellRunner] for a command line that
	// the shell helper would rewrite, i.e. one containing "$".
	ErrShellExpansion = errors.New("argument contains $")

	// ErrMissingTool is returned if a required tool is not on PATH.
	ErrMissingTool = errors.New("not found in PATH")

	// ErrNoArtifact is returned if a build succeeded but the library is not
	// where it was requested.
	ErrNoArtifact = errors.New("shared library not found after build")
)

// StepError is returned when an external build step fails, either because
// the process could not be started or because it exited non-zero.
type StepError struct {
	// Step describes the failed step, e.g. "go mod tidy".
	Step string
	// Msg is the diagnostic shown to the user.
	Msg string
	// Ran is false if the process could not be started at all.
	Ran bool
	// ExitCode is the exit code of the process if it ran.
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return e.Msg
	}

	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *StepError) Is(other error) bool {
	_, ok := other.(*StepError)
	return ok
}

func (e *StepError) Unwrap() error {
	return e.Err
}
