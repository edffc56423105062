package libbuild

import (
	"fmt"
	"io"
)

const directivePrefix = "cargo:"

// Library kinds used in link directives.
const (
	LinkKindNative = "native"
	LinkKindDylib  = "dylib"
)

// Emitter writes build-system directives, one per line.
//
// The build system reads them from the orchestrator's stdout, so nothing else
// may be written to the same writer.
type Emitter struct {
	w   io.Writer
	err error
}

// NewEmitter returns an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// RerunIfChanged asks the build system to run the build again when path
// changes. A directory path covers every file below it.
func (e *Emitter) RerunIfChanged(path string) {
	e.emit("rerun-if-changed=" + path)
}

// LinkSearch adds dir to the linker search path.
func (e *Emitter) LinkSearch(kind, dir string) {
	e.emit(fmt.Sprintf("rustc-link-search=%s=%s", kind, dir))
}

// LinkLib links the library name of the given kind.
func (e *Emitter) LinkLib(kind, name string) {
	e.emit(fmt.Sprintf("rustc-link-lib=%s=%s", kind, name))
}

// Warning shows msg in the build system's output.
func (e *Emitter) Warning(msg string) {
	e.emit("warning=" + msg)
}

// Err returns the first write error. Once a write failed, all further
// directives are dropped.
func (e *Emitter) Err() error {
	return e.err
}

func (e *Emitter) emit(directive string) {
	if e.err != nil {
		return
	}

	_, err := fmt.Fprintln(e.w, directivePrefix+directive)
	if err != nil {
		e.err = fmt.Errorf("write directive: %w", err)
	}
}
