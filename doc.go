// Package libbuild builds a Go module into a C shared library for use from
// another language's build.
//
// It is the Go side of a Cargo build script: the library is compiled with
// go build -buildmode=c-shared, linker directives are printed for Cargo and
// Rust bindings are generated from the exported C header.
//
// # Basic Usage
//
//	cfg, err := libbuild.LoadConfig(os.LookupEnv)
//	if err != nil {
//	    return err
//	}
//
//	runner := &libbuild.ShellRunner{}
//	emitter := libbuild.NewEmitter(os.Stdout)
//
//	orch := &libbuild.Orchestrator{
//	    Config:    cfg,
//	    Builder:   libbuild.NewGoBuilder(runner),
//	    Generator: &libbuild.Bindgen{Runner: runner, Emitter: emitter},
//	    Emitter:   emitter,
//	}
//
//	err = orch.Run(ctx)
//
// # Environment
//
// The configuration is read once from the environment:
//   - OUT_DIR - output directory (required)
//   - CARGO_MANIFEST_DIR - directory holding the Go module directory
//   - PROFILE - "debug" copies the library next to test binaries
//   - PREBUILD_LIB=1 - also build into the module's artifacts directory
//   - NEUTRON_TUBE_DEV=1 - rebuild even if the library exists
//   - DOCS_RS - documentation build, nothing is compiled or linked
//   - CARGO_CFG_TARGET_OS - target platform (defaults to the host)
//
// An optional libbuild.yaml next to the module directory overrides the
// library name, module layout, build tags and linker flags.
//
// # Platform Support
//
// Linux (lib<name>.so), macOS (lib<name>.dylib) and Windows (<name>.dll).
// Every other platform is rejected before anything is built.
package libbuild
