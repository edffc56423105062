//go:build mage

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/neutron-org/libbuild"
)

var Default = Build

// outDir is used when OUT_DIR is not set, e.g. outside of a cargo build.
var outDir = filepath.Join("target", "libbuild")

func lookupEnv(overrides map[string]string) libbuild.LookupFunc {
	return func(key string) (string, bool) {
		if value, ok := overrides[key]; ok {
			return value, true
		}

		value, ok := os.LookupEnv(key)
		if !ok && key == libbuild.EnvOutDir {
			return outDir, true
		}

		return value, ok
	}
}

func orchestrator(overrides map[string]string) (*libbuild.Orchestrator, error) {
	cfg, err := libbuild.LoadConfig(lookupEnv(overrides))
	if err != nil {
		return nil, err
	}

	runner := &libbuild.ShellRunner{}
	emitter := libbuild.NewEmitter(os.Stdout)

	return &libbuild.Orchestrator{
		Config:    cfg,
		Builder:   libbuild.NewGoBuilder(runner),
		Generator: &libbuild.Bindgen{Runner: runner, Emitter: emitter},
		Emitter:   emitter,
	}, nil
}

// Check that the go toolchain, a C compiler and bindgen are installed.
func Check() error {
	builder := libbuild.NewGoBuilder(nil)
	generator := &libbuild.Bindgen{}

	if err := builder.CheckTools(); err != nil {
		return err
	}

	return generator.CheckTools()
}

// Build the shared library if missing and generate bindings.
func Build(ctx context.Context) error {
	mg.Deps(Check)

	orch, err := orchestrator(nil)
	if err != nil {
		return err
	}

	return orch.Run(ctx)
}

// Rebuild the shared library unconditionally and generate bindings.
func Rebuild(ctx context.Context) error {
	mg.Deps(Check)

	orch, err := orchestrator(map[string]string{libbuild.EnvDev: "1"})
	if err != nil {
		return err
	}

	return orch.Run(ctx)
}

// Prebuild the shared library into the module's artifacts directory.
func Prebuild(ctx context.Context) error {
	mg.Deps(Check)

	orch, err := orchestrator(map[string]string{libbuild.EnvPrebuild: "1"})
	if err != nil {
		return err
	}

	return orch.Run(ctx)
}

// Docs generates bindings from the placeholder header without building.
func Docs(ctx context.Context) error {
	orch, err := orchestrator(map[string]string{libbuild.EnvDocsRS: "1"})
	if err != nil {
		return err
	}

	return orch.Run(ctx)
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Remove the library, its header and the generated bindings.
func Clean(ctx context.Context) error {
	orch, err := orchestrator(nil)
	if err != nil {
		return err
	}

	if err := orch.Clean(ctx); err != nil {
		return err
	}

	fmt.Printf("Removed build outputs from %s\n", orch.Config.OutDir)

	return nil
}
