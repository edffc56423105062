package libbuild

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Step names and their user facing failure messages.
const (
	StepTidy    = "go mod tidy"
	StepCompile = "go build"

	msgTidyFailed    = "failed to run 'go mod tidy'"
	msgCompileFailed = "failed to build go code"
)

// GoBuilder compiles a Go module into a C shared library.
//
// This builder runs two commands in the module directory:
//
//	go mod tidy
//	go build -buildmode=c-shared -tags <tags> -ldflags <flags> -o <output> <entry>
//
// The go tool's -C flag selects the module directory, so the orchestrator's
// working directory never changes.
type GoBuilder struct {
	Runner Runner
	// GoPath is the go executable. Defaults to "go".
	GoPath string
}

// NewGoBuilder returns a GoBuilder running commands with runner.
func NewGoBuilder(runner Runner) *GoBuilder {
	return &GoBuilder{Runner: runner}
}

// Name returns the builder name
func (b *GoBuilder) Name() string {
	return "Go"
}

// RequiredTools returns the tools needed for Go builds
func (b *GoBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:    b.goPath(),
			Purpose: "Go compiler and toolchain",
		},
		{
			Name:         "gcc",
			Alternatives: []string{"clang", "cc"},
			Purpose:      "C compiler (required for CGO)",
		},
	}
}

// CheckTools verifies that Go toolchain is available
func (b *GoBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// Build tidies the module and compiles it into req.OutputPath.
func (b *GoBuilder) Build(ctx context.Context, req *BuildRequest) (*BuildResult, error) {
	return runCommonBuild(ctx, req, CommonBuildSteps{
		PrepareFunc: b.runTidy,
		BuildFunc:   b.runCompile,
		FindFunc:    b.findArtifacts,
	})
}

// Clean removes the library and the header written next to it.
func (b *GoBuilder) Clean(_ context.Context, req *BuildRequest) error {
	for _, path := range []string{req.OutputPath, headerPath(req.OutputPath)} {
		err := os.Remove(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}

	return nil
}

func (b *GoBuilder) runTidy(ctx context.Context, req *BuildRequest, result *BuildResult) error {
	args := []string{"-C", req.SourceDir, "mod", "tidy"}

	result.Steps = append(result.Steps, StepTidy)

	ran, err := b.Runner.Run(ctx, req.Env, b.goPath(), args...)
	if err != nil {
		return newStepError(StepTidy, msgTidyFailed, ran, err)
	}

	return nil
}

func (b *GoBuilder) runCompile(ctx context.Context, req *BuildRequest, result *BuildResult) error {
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	result.Steps = append(result.Steps, StepCompile)

	ran, err := b.Runner.Run(ctx, b.buildEnv(req), b.goPath(), b.compileArgs(req)...)
	if err != nil {
		return newStepError(StepCompile, msgCompileFailed, ran, err)
	}

	return nil
}

func (b *GoBuilder) compileArgs(req *BuildRequest) []string {
	args := []string{"-C", req.SourceDir, "build", "-buildmode=c-shared"}

	if len(req.Tags) > 0 {
		args = append(args, "-tags", strings.Join(req.Tags, ","))
	}

	if len(req.LDFlags) > 0 {
		args = append(args, "-ldflags", strings.Join(req.LDFlags, " "))
	}

	args = append(args, "-o", req.OutputPath)

	if req.EntryFile != "" {
		args = append(args, req.EntryFile)
	}

	return args
}

func (b *GoBuilder) buildEnv(req *BuildRequest) map[string]string {
	env := make(map[string]string, len(req.Env)+1)
	for key, value := range req.Env {
		env[key] = value
	}

	// Enable CGO
	env["CGO_ENABLED"] = "1"

	return env
}

// findArtifacts returns the library and, if present, its header.
func (b *GoBuilder) findArtifacts(req *BuildRequest) ([]string, error) {
	if _, err := os.Stat(req.OutputPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoArtifact, req.OutputPath)
	}

	artifacts := []string{req.OutputPath}

	header := headerPath(req.OutputPath)
	if _, err := os.Stat(header); err == nil {
		artifacts = append(artifacts, header)
	}

	return artifacts, nil
}

func (b *GoBuilder) goPath() string {
	if b.GoPath != "" {
		return b.GoPath
	}
	return "go"
}

// headerPath returns the path of the C header go build writes for a c-shared
// library at libPath.
func headerPath(libPath string) string {
	return strings.TrimSuffix(libPath, filepath.Ext(libPath)) + ".h"
}
