package libbuild

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter(t *testing.T) {
	var buf bytes.Buffer

	emitter := NewEmitter(&buf)
	emitter.RerunIfChanged("build.rs")
	emitter.LinkSearch(LinkKindNative, "/out")
	emitter.LinkLib(LinkKindDylib, "ntrntesttube")
	emitter.Warning("prebuilt library is stale")

	require.NoError(t, emitter.Err())
	assert.Equal(t, "cargo:rerun-if-changed=build.rs\n"+
		"cargo:rustc-link-search=native=/out\n"+
		"cargo:rustc-link-lib=dylib=ntrntesttube\n"+
		"cargo:warning=prebuilt library is stale\n", buf.String())
}

type failingWriter struct {
	writes int
}

func (w *failingWriter) Write([]byte) (int, error) {
	w.writes++
	return 0, assert.AnError
}

func TestEmitter_WriteError(t *testing.T) {
	writer := &failingWriter{}

	emitter := NewEmitter(writer)
	emitter.RerunIfChanged("build.rs")
	emitter.LinkLib(LinkKindDylib, "ntrntesttube")

	require.ErrorIs(t, emitter.Err(), assert.AnError)
	assert.Equal(t, 1, writer.writes, "directives after a failed write are dropped")
}
