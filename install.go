package libbuild

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultFanOutDepth is how many directory levels above the output
	// directory the fan-out directory lives.
	DefaultFanOutDepth = 3

	// DefaultFanOutSubdir is the fan-out directory's name below that level.
	DefaultFanOutSubdir = "deps"
)

// FanOutDir returns the directory depth levels above outDir joined with
// subdir. For a Cargo OUT_DIR (target/debug/build/<pkg>/out) and the defaults
// this is target/debug/deps, where test binaries look for shared libraries.
func FanOutDir(outDir string, depth int, subdir string) string {
	elems := []string{outDir}
	for i := 0; i < depth; i++ {
		elems = append(elems, "..")
	}

	elems = append(elems, subdir)

	return filepath.Join(elems...)
}

// FanOut copies every regular file in srcDir whose name starts with prefix
// into destDir and returns the copied file names. A symlink to a regular file
// is copied as a file with the target's content.
//
// The prefix match picks up companion files written next to the library,
// such as the C header, import libraries or debug symbols. Copies preserve
// the file mode and are not atomic. The first failing copy stops the fan-out.
func FanOut(srcDir, destDir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read output directory: %w", err)
	}

	var copied []string

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}

		srcPath := filepath.Join(srcDir, entry.Name())

		// Symlinks count by their target. Dangling links are skipped.
		info, err := os.Stat(srcPath)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		destPath := filepath.Join(destDir, entry.Name())

		if err := copyFile(srcPath, destPath); err != nil {
			return copied, fmt.Errorf("copy %s: %w", entry.Name(), err)
		}

		slog.Debug("Copied library file",
			slog.String("src", srcPath),
			slog.String("dest", destPath))

		copied = append(copied, entry.Name())
	}

	return copied, nil
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(destPath)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
