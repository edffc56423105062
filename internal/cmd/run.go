package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/neutron-org/libbuild"
)

const name = "libbuild"

// IO provides output details for the command.
//
// Stdout only ever carries build directives. Logs and the output of
// subprocesses go to Stderr.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

func newOrchestrator(cfg *libbuild.Config, flags *Flags, out IO) *libbuild.Orchestrator {
	runner := &libbuild.ShellRunner{Stderr: out.Stderr}
	emitter := libbuild.NewEmitter(out.Stdout)

	return &libbuild.Orchestrator{
		Config: cfg,
		Builder: &libbuild.GoBuilder{
			Runner: runner,
			GoPath: flags.goPath,
		},
		Generator: &libbuild.Bindgen{
			Runner:  runner,
			Emitter: emitter,
			Path:    flags.bindgenPath,
		},
		Emitter: emitter,
	}
}

func checkTools(flags *Flags) error {
	builder := &libbuild.GoBuilder{GoPath: flags.goPath}
	generator := &libbuild.Bindgen{Path: flags.bindgenPath}

	requirements := append(builder.RequiredTools(), generator.RequiredTools()...)

	err := libbuild.CheckRequiredTools(requirements)
	if err != nil {
		return err
	}

	slog.Info("All required tools found")

	return nil
}

func handleParseArgsError(err error) int {
	// [ErrHelp] is returned when help or version is requested. So exit
	// without error in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// The flag set already printed the error and usage.
	return 2
}

func handleRunError(err error) int {
	slog.Error(err.Error())

	var stepErr *libbuild.StepError
	if errors.As(err, &stepErr) && stepErr.Ran && stepErr.ExitCode > 0 {
		return stepErr.ExitCode
	}

	return 1
}

// Run is the main entry point for the CLI command. It returns the exit code.
func Run(ctx context.Context, args []string, lookup libbuild.LookupFunc, out IO) int {
	flags := NewFlags(name, out.Stderr)

	err := flags.ParseArgs(args)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(out.Stderr, flags.Debug())

	if flags.check {
		err := checkTools(flags)
		if err != nil {
			return handleRunError(err)
		}

		return 0
	}

	cfg, err := libbuild.LoadConfig(lookup)
	if err != nil {
		return handleRunError(err)
	}

	flags.Apply(cfg)

	slog.Debug("Configuration",
		slog.String("platform", string(cfg.Platform)),
		slog.String("out_dir", cfg.OutDir),
		slog.String("module_dir", cfg.ModuleDir),
		slog.String("profile", cfg.Profile),
		slog.Bool("prebuild", cfg.Prebuild),
		slog.Bool("force", cfg.ForceRebuild),
		slog.Bool("docs", cfg.DocMode))

	orch := newOrchestrator(cfg, flags, out)

	if flags.clean {
		err = orch.Clean(ctx)
	} else {
		err = orch.Run(ctx)
	}

	if err != nil {
		return handleRunError(err)
	}

	return 0
}
