package libbuild

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool creates an executable in a temp dir and puts only that dir on PATH.
func fakeTool(t *testing.T, names ...string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake executables need a unix PATH lookup")
	}

	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755))
	}

	t.Setenv("PATH", dir)
}

func TestCheckRequiredTools(t *testing.T) {
	fakeTool(t, "go", "clang")

	tests := []struct {
		name        string
		tools       []ToolRequirement
		expectedErr string
	}{
		{
			name:  "all found",
			tools: []ToolRequirement{{Name: "go"}},
		},
		{
			name:  "alternative found",
			tools: []ToolRequirement{{Name: "gcc", Alternatives: []string{"clang", "cc"}}},
		},
		{
			name:  "optional missing",
			tools: []ToolRequirement{{Name: "bindgen", Optional: true}},
		},
		{
			name:        "single missing",
			tools:       []ToolRequirement{{Name: "bindgen", Purpose: "Rust bindings generator"}},
			expectedErr: "bindgen (Rust bindings generator) not found in PATH",
		},
		{
			name: "multiple missing",
			tools: []ToolRequirement{
				{Name: "bindgen", Purpose: "Rust bindings generator"},
				{Name: "cargo"},
			},
			expectedErr: "bindgen (Rust bindings generator), cargo not found in PATH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRequiredTools(tt.tools)
			if tt.expectedErr == "" {
				assert.NoError(t, err)
				return
			}

			assert.EqualError(t, err, tt.expectedErr)
			assert.ErrorIs(t, err, ErrMissingTool)
		})
	}
}

func TestCheckTools(t *testing.T) {
	fakeTool(t, "cc")

	err := checkTools(&GoBuilder{})
	assert.EqualError(t, err, "build tools missing: go (Go compiler and toolchain) not found in PATH")
	assert.ErrorIs(t, err, ErrMissingTool)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepToolCheck, stepErr.Step)
	assert.False(t, stepErr.Ran)

	assert.NoError(t, checkTools(&fakeGenerator{}), "components without tool requirements pass")
}

func TestOrchestratorRun_ChecksToolsBeforeBuild(t *testing.T) {
	fakeTool(t)

	f := newOrchestratorFixture(t, nil)
	f.orch.Builder = NewGoBuilder(f.runner)

	err := f.orch.Run(context.Background())
	require.ErrorContains(t, err, "build tools missing")
	assert.Empty(t, f.runner.calls)
}
