package libbuild

import "context"

// BuildResult contains the output and status of a build operation.
//
// After a build completes, this structure provides:
//   - Success status indicating if the build completed without errors
//   - Steps that were executed, in order
//   - Artifacts written by the build (the library and its header)
//   - Error information if the build failed
type BuildResult struct {
	Success   bool     // True if build completed successfully
	Steps     []string // Steps that were run, e.g. "go mod tidy"
	Artifacts []string // Paths to files written by the build
	Error     error    // Error if build failed, nil otherwise
}

// BuildRequest describes a single shared library build.
//
// Source:
//   - SourceDir: Directory of the Go module to compile
//   - EntryFile: Main file passed to go build, relative to SourceDir
//
// Output:
//   - OutputPath: Absolute path of the library to write
//
// Build configuration:
//   - Tags: Build tags passed with -tags
//   - LDFlags: Linker flags passed with -ldflags
//   - Env: Extra environment variables for the build
type BuildRequest struct {
	SourceDir  string
	EntryFile  string
	OutputPath string

	Tags    []string
	LDFlags []string
	Env     map[string]string
}

// CommonBuildSteps defines the prepare, compile, find pattern of a build.
//
// Go modules are built in two subprocess steps followed by a lookup:
//  1. Prepare: Reconcile module dependencies (go mod tidy)
//  2. Build: Compile the shared library
//  3. Find: Locate the written library and its companion files
//
// Example usage in a builder:
//
//	return runCommonBuild(ctx, req, CommonBuildSteps{
//	    PrepareFunc: b.runTidy,
//	    BuildFunc:   b.runCompile,
//	    FindFunc:    b.findArtifacts,
//	})
type CommonBuildSteps struct {
	// PrepareFunc prepares the source (e.g., go mod tidy)
	PrepareFunc func(ctx context.Context, req *BuildRequest, result *BuildResult) error

	// BuildFunc compiles the library (e.g., go build -buildmode=c-shared)
	BuildFunc func(ctx context.Context, req *BuildRequest, result *BuildResult) error

	// FindFunc locates the written files after the build completes
	FindFunc func(req *BuildRequest) ([]string, error)
}
