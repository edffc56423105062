package libbuild

import "context"

// Builder compiles an external module into a shared library.
//
// The orchestrator treats the module build as an opaque collaborator: it only
// hands over a [BuildRequest] and expects the library at req.OutputPath once
// Build returns without error.
//
// # Example Implementation
//
//	type MyBuilder struct{}
//
//	func (b *MyBuilder) Name() string {
//	    return "MyToolchain"
//	}
//
//	func (b *MyBuilder) Build(ctx context.Context, req *BuildRequest) (*BuildResult, error) {
//	    result := &BuildResult{Success: true}
//	    // ... build logic ...
//	    return result, nil
//	}
//
//	func (b *MyBuilder) Clean(ctx context.Context, req *BuildRequest) error {
//	    return nil
//	}
type Builder interface {
	// Name returns the human-readable name of this builder.
	//
	// This name is used in error messages and logs.
	Name() string

	// Build compiles the library described by req.
	//
	// Returns:
	//   - BuildResult with Success=true and Artifacts list on success
	//   - BuildResult with Success=false and Error on failure
	Build(ctx context.Context, req *BuildRequest) (*BuildResult, error)

	// Clean removes the files a previous Build wrote for req.
	//
	// Returns nil if there was nothing to remove.
	Clean(ctx context.Context, req *BuildRequest) error
}
