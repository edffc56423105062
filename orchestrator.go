package libbuild

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Orchestrator builds the shared library, exposes it to the linker and
// generates bindings for it.
//
// The pipeline is strictly sequential:
//
//  1. resolve the library file name for the platform
//  2. register rerun triggers for the build script and the module directory
//     and warn if the build system targets another platform than the host
//  3. rebuild into the prebuilt directory if Prebuild is set
//  4. rebuild into the output directory if the library is missing or
//     ForceRebuild is set
//  5. in the debug profile, copy the library and its siblings to FanOutDir
//  6. emit link directives (only the search path in documentation mode)
//  7. generate bindings from the header
//
// Every error ends the run. Nothing is retried and nothing written so far is
// cleaned up.
type Orchestrator struct {
	Config    *Config
	Builder   Builder
	Generator BindingGenerator
	Emitter   *Emitter
}

// Run executes the pipeline.
func (o *Orchestrator) Run(ctx context.Context) error {
	cfg := o.Config

	filename, err := cfg.LibraryFilename()
	if err != nil {
		return err
	}

	o.Emitter.RerunIfChanged(cfg.ScriptPath)
	o.Emitter.RerunIfChanged(cfg.ModuleDir)

	if cfg.CrossTarget() {
		o.Emitter.Warning(fmt.Sprintf("target os %q is not the host, building %s for %s",
			cfg.TargetOS, filename, cfg.Platform))
	}

	if cfg.Prebuild {
		err := o.rebuild(ctx, filepath.Join(cfg.PrebuiltDir, filename))
		if err != nil {
			return err
		}
	}

	libPath := filepath.Join(cfg.OutDir, filename)

	missing, err := libraryMissing(libPath)
	if err != nil {
		return err
	}

	if missing || cfg.ForceRebuild {
		if err := o.rebuild(ctx, libPath); err != nil {
			return err
		}
	} else {
		slog.Debug("Library exists, skipping build", slog.String("path", libPath))
	}

	if cfg.IsDebug() {
		copied, err := FanOut(cfg.OutDir, cfg.FanOutDir, cfg.Platform.LibraryPrefix(cfg.LibName))
		if err != nil {
			return fmt.Errorf("fan out: %w", err)
		}

		slog.Debug("Fanned out library files",
			slog.String("dir", cfg.FanOutDir),
			slog.Any("files", copied))
	}

	o.Emitter.LinkSearch(LinkKindNative, cfg.OutDir)

	if !cfg.DocMode {
		o.Emitter.LinkLib(LinkKindDylib, cfg.LibName)
	}

	if err := o.Emitter.Err(); err != nil {
		return err
	}

	if err := o.generateBindings(ctx); err != nil {
		return err
	}

	return o.Emitter.Err()
}

// libraryMissing reports whether nothing exists at path. Only existence
// counts, the modification time is never compared.
func libraryMissing(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}

	return false, fmt.Errorf("check library: %w", err)
}

// rebuild builds the library at outputPath. It is a no-op in documentation
// mode.
func (o *Orchestrator) rebuild(ctx context.Context, outputPath string) error {
	if o.Config.DocMode {
		slog.Debug("Documentation mode, skipping build", slog.String("path", outputPath))
		return nil
	}

	if err := checkTools(o.Builder); err != nil {
		return err
	}

	slog.Info("Building shared library",
		slog.String("builder", o.Builder.Name()),
		slog.String("path", outputPath))

	result, err := o.Builder.Build(ctx, o.Config.BuildRequest(outputPath))
	if err != nil {
		return err
	}

	slog.Debug("Built shared library", slog.Any("artifacts", result.Artifacts))

	return nil
}

func (o *Orchestrator) generateBindings(ctx context.Context) error {
	header := o.Config.HeaderPath()

	if _, err := os.Stat(header); err != nil {
		return fmt.Errorf("%w: header: %w", ErrBindings, err)
	}

	if err := checkTools(o.Generator); err != nil {
		return err
	}

	out := o.Config.BindingsPath()

	if err := o.Generator.Generate(ctx, header, out); err != nil {
		if errors.Is(err, ErrBindings) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrBindings, err)
	}

	slog.Debug("Generated bindings",
		slog.String("header", header),
		slog.String("path", out))

	return nil
}

// Clean removes the library, its header and the bindings file from the output
// directory.
func (o *Orchestrator) Clean(ctx context.Context) error {
	filename, err := o.Config.LibraryFilename()
	if err != nil {
		return err
	}

	libPath := filepath.Join(o.Config.OutDir, filename)

	if err := o.Builder.Clean(ctx, o.Config.BuildRequest(libPath)); err != nil {
		return fmt.Errorf("clean %s: %w", o.Builder.Name(), err)
	}

	err = os.Remove(o.Config.BindingsPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove bindings: %w", err)
	}

	return nil
}
