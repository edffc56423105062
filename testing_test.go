package libbuild

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/magefile/mage/mg"
	"github.com/stretchr/testify/require"
)

const fakeLibContent = "\x7fELF fake shared library"

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

type runnerCall struct {
	env  map[string]string
	cmd  string
	args []string
}

// fakeRunner records calls. Without a result function it behaves like a
// working go toolchain: "build" writes the -o file and its header.
type fakeRunner struct {
	calls  []runnerCall
	result func(args []string) (bool, error)
}

func (r *fakeRunner) Run(_ context.Context, env map[string]string, cmd string, args ...string) (bool, error) {
	r.calls = append(r.calls, runnerCall{env: env, cmd: cmd, args: args})

	if r.result != nil {
		ran, err := r.result(args)
		if err != nil {
			return ran, err
		}
	}

	if slices.Contains(args, "build") {
		idx := slices.Index(args, "-o")
		if idx >= 0 && idx+1 < len(args) {
			out := args[idx+1]
			if err := os.WriteFile(out, []byte(fakeLibContent), 0o755); err != nil {
				return true, err
			}
			if err := os.WriteFile(headerPath(out), []byte("// header\n"), 0o644); err != nil {
				return true, err
			}
		}
	}

	return true, nil
}

// failOn makes the call containing arg exit with code.
func failOn(arg string, code int) func([]string) (bool, error) {
	return func(args []string) (bool, error) {
		if slices.Contains(args, arg) {
			return true, mg.Fatalf(code, "exit status %d", code)
		}
		return true, nil
	}
}

// uncheckedBuilder hides the ToolChecker implementation of GoBuilder, so
// tests do not depend on installed tools.
type uncheckedBuilder struct {
	b *GoBuilder
}

func (u uncheckedBuilder) Name() string { return u.b.Name() }

func (u uncheckedBuilder) Build(ctx context.Context, req *BuildRequest) (*BuildResult, error) {
	return u.b.Build(ctx, req)
}

func (u uncheckedBuilder) Clean(ctx context.Context, req *BuildRequest) error {
	return u.b.Clean(ctx, req)
}

type fakeGenerator struct {
	header string
	out    string
	calls  int
	err    error
}

func (g *fakeGenerator) Generate(_ context.Context, header, out string) error {
	g.calls++
	g.header = header
	g.out = out

	if g.err != nil {
		return g.err
	}

	return os.WriteFile(out, []byte("// bindings\n"), 0o644)
}

// setHostOS makes LoadConfig see goos as the host until the test ends.
func setHostOS(t *testing.T, goos string) {
	t.Helper()

	prev := hostOS
	hostOS = goos

	t.Cleanup(func() { hostOS = prev })
}

// newTestConfig returns a config for a linux host, see [newTestConfigOn].
func newTestConfig(t *testing.T, env map[string]string) *Config {
	t.Helper()

	return newTestConfigOn(t, "linux", env)
}

// newTestConfigOn returns a config for host goos with a cargo like layout in
// a temp dir: <manifest>/target/debug/build/pkg/out as OUT_DIR.
func newTestConfigOn(t *testing.T, goos string, env map[string]string) *Config {
	t.Helper()

	setHostOS(t, goos)

	manifestDir := t.TempDir()
	outDir := filepath.Join(manifestDir, "target", "debug", "build", "pkg", "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	fullEnv := map[string]string{
		EnvManifestDir: manifestDir,
		EnvOutDir:      outDir,
		EnvProfile:     "release",
	}
	for key, value := range env {
		fullEnv[key] = value
	}

	cfg, err := LoadConfig(mapLookup(fullEnv))
	require.NoError(t, err)

	return cfg
}
