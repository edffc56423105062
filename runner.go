package libbuild

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Runner runs an external command to completion.
//
// The returned ran is false if the command could not be started. A command
// that started and exited non-zero returns ran=true and an error carrying the
// exit status (see [mg.ExitStatus]).
type Runner interface {
	Run(ctx context.Context, env map[string]string, cmd string, args ...string) (ran bool, err error)
}

// ShellRunner runs commands with [sh.Exec]. Commands block until they exit;
// there is no timeout.
//
// sh.Exec expands $VAR in the command and every argument. Since paths are
// passed verbatim, a command or argument containing "$" is rejected with
// [ErrShellExpansion] before anything is started.
//
// Child stdout is sent to Stderr unless Stdout is set, since the build system
// interprets the orchestrator's own stdout as directives.
type ShellRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements [Runner]. The context is only checked before the command is
// started.
func (r *ShellRunner) Run(ctx context.Context, env map[string]string, cmd string, args ...string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	for _, arg := range append([]string{cmd}, args...) {
		if strings.Contains(arg, "$") {
			return false, fmt.Errorf("%w: %q", ErrShellExpansion, arg)
		}
	}

	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	stdout := r.Stdout
	if stdout == nil {
		stdout = stderr
	}

	slog.Debug("Running command",
		slog.String("command", cmd+" "+strings.Join(args, " ")))

	return sh.Exec(env, stdout, stderr, cmd, args...)
}

func newStepError(step, msg string, ran bool, err error) *StepError {
	stepErr := &StepError{
		Step: step,
		Msg:  msg,
		Ran:  ran,
		Err:  err,
	}

	if ran {
		stepErr.ExitCode = mg.ExitStatus(err)
	}

	return stepErr
}
