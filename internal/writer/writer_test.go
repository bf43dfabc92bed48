package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriterReplacesTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SYSTEM")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o600))

	w := &FileWriter{Path: path}
	require.NoError(t, w.WriteHive([]byte("regf new")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("regf new"), got)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestFileWriterMissingDir(t *testing.T) {
	w := &FileWriter{Path: filepath.Join(t.TempDir(), "nope", "SYSTEM")}
	require.Error(t, w.WriteHive([]byte("x")))
}

func TestMemWriterCopies(t *testing.T) {
	var w MemWriter
	src := []byte{1, 2, 3}
	require.NoError(t, w.WriteHive(src))
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, w.Buf)
	assert.Equal(t, 1, w.Writes)
}
