package libbuild

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

// DefaultBindingsFile is the name of the generated bindings file in the output
// directory.
const DefaultBindingsFile = "bindings.rs"

// BindingGenerator turns a C header into foreign function bindings.
type BindingGenerator interface {
	// Generate reads header and writes the bindings to out.
	Generate(ctx context.Context, header, out string) error
}

// Bindgen generates Rust bindings with the bindgen CLI:
//
//	bindgen <header> -o <out>
//
// Every header reachable through quoted includes is registered as a rerun
// trigger with the Emitter, so the build reruns when any of them changes.
//
// bindgen is an external process, so it is started in documentation mode
// too. It is the only process started in that mode.
type Bindgen struct {
	Runner  Runner
	Emitter *Emitter
	// Path is the bindgen executable. Defaults to "bindgen".
	Path string
	// ClangArgs are passed to libclang after "--".
	ClangArgs []string
}

// RequiredTools returns the tools needed for binding generation.
func (g *Bindgen) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:    g.path(),
			Purpose: "Rust bindings generator",
		},
		{
			Name:     "clang",
			Optional: true,
			Purpose:  "libclang used by bindgen",
		},
	}
}

// CheckTools verifies that bindgen is available.
func (g *Bindgen) CheckTools() error {
	return CheckRequiredTools(g.RequiredTools())
}

// Generate implements [BindingGenerator].
func (g *Bindgen) Generate(ctx context.Context, header, out string) error {
	includes, err := HeaderIncludes(header)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBindings, err)
	}

	if g.Emitter != nil {
		for _, path := range includes {
			g.Emitter.RerunIfChanged(path)
		}
	}

	args := []string{header, "-o", out}
	if len(g.ClangArgs) > 0 {
		args = append(args, "--")
		args = append(args, g.ClangArgs...)
	}

	ran, err := g.Runner.Run(ctx, nil, g.path(), args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBindings, newStepError("bindgen", "bindgen failed", ran, err))
	}

	return nil
}

func (g *Bindgen) path() string {
	if g.Path != "" {
		return g.Path
	}
	return "bindgen"
}

var quotedInclude = regexp.MustCompile(`^\s*#\s*include\s+"([^"]+)"`)

// HeaderIncludes returns header followed by every existing file it includes
// with quotes, recursively and in first-seen order. Paths are resolved
// relative to the including file. Angle bracket includes refer to system
// headers and are skipped.
func HeaderIncludes(header string) ([]string, error) {
	seen := map[string]struct{}{}
	var paths []string

	var walk func(path string, root bool) error
	walk = func(path string, root bool) error {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			if !root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("open header: %w", err)
		}
		defer file.Close()

		seen[path] = struct{}{}
		paths = append(paths, path)

		var included []string

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			if match := quotedInclude.FindStringSubmatch(scanner.Text()); match != nil {
				included = append(included, filepath.Join(filepath.Dir(path), match[1]))
			}
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read header %s: %w", path, err)
		}

		for _, inc := range included {
			if err := walk(inc, false); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(header, true); err != nil {
		return nil, err
	}

	return paths, nil
}
