package libbuild

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHeaders(t *testing.T, dir string, headers map[string]string) {
	t.Helper()

	for name, content := range headers {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestHeaderIncludes(t *testing.T) {
	dir := t.TempDir()
	writeHeaders(t, dir, map[string]string{
		"lib.h": "#include <stddef.h>\n" +
			"#include \"types.h\"\n" +
			"  #  include \"sub/extra.h\"\n" +
			"#include \"missing.h\"\n" +
			"extern void Foo();\n",
		"types.h":     "#include \"lib.h\"\ntypedef int GoInt;\n",
		"sub/extra.h": "#include \"../types.h\"\n",
	})

	paths, err := HeaderIncludes(filepath.Join(dir, "lib.h"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "lib.h"),
		filepath.Join(dir, "types.h"),
		filepath.Join(dir, "sub", "extra.h"),
	}, paths)
}

func TestHeaderIncludes_MissingHeader(t *testing.T) {
	_, err := HeaderIncludes(filepath.Join(t.TempDir(), "lib.h"))
	assert.ErrorContains(t, err, "open header")
}

func TestBindgen_Generate(t *testing.T) {
	dir := t.TempDir()
	writeHeaders(t, dir, map[string]string{
		"lib.h":   "#include \"types.h\"\n",
		"types.h": "typedef int GoInt;\n",
	})

	var stdout bytes.Buffer
	runner := &fakeRunner{}
	generator := &Bindgen{
		Runner:    runner,
		Emitter:   NewEmitter(&stdout),
		ClangArgs: []string{"-I/usr/include"},
	}

	header := filepath.Join(dir, "lib.h")
	out := filepath.Join(dir, "bindings.rs")

	require.NoError(t, generator.Generate(context.Background(), header, out))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "bindgen", runner.calls[0].cmd)
	assert.Equal(t, []string{header, "-o", out, "--", "-I/usr/include"}, runner.calls[0].args)

	assert.Equal(t,
		"cargo:rerun-if-changed="+header+"\n"+
			"cargo:rerun-if-changed="+filepath.Join(dir, "types.h")+"\n",
		stdout.String())
}

func TestBindgen_GenerateFailure(t *testing.T) {
	header := filepath.Join(t.TempDir(), "lib.h")
	require.NoError(t, os.WriteFile(header, []byte("void Foo();\n"), 0o644))

	runner := &fakeRunner{result: failOn(header, 1)}
	generator := &Bindgen{Runner: runner, Path: "/opt/bindgen"}

	err := generator.Generate(context.Background(), header, "bindings.rs")
	require.ErrorIs(t, err, ErrBindings)
	assert.ErrorContains(t, err, "unable to generate bindings")

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.ExitCode)
	assert.Equal(t, "/opt/bindgen", runner.calls[0].cmd)
}

func TestBindgen_GenerateMissingHeader(t *testing.T) {
	runner := &fakeRunner{}
	generator := &Bindgen{Runner: runner}

	err := generator.Generate(context.Background(), filepath.Join(t.TempDir(), "lib.h"), "bindings.rs")
	require.ErrorIs(t, err, ErrBindings)
	assert.Empty(t, runner.calls)
}
