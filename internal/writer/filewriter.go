// Package writer provides the sinks a hive hands its buffer to on Write.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter replaces the file at Path atomically: the buffer goes to a
// temp file in the same directory, is flushed to stable storage, and is
// renamed over the target.
type FileWriter struct {
	Path string
	Perm os.FileMode // applied to the new file; 0 keeps the mode of Path or uses 0o644
}

// WriteHive writes buf to Path.
func (w *FileWriter) WriteHive(buf []byte) error {
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
		if fi, err := os.Stat(w.Path); err == nil {
			perm = fi.Mode().Perm()
		}
	}

	dir := filepath.Dir(w.Path)
	tmp, err := os.CreateTemp(dir, ".ntreg-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(buf); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := datasync(tmp); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmp = nil

	if err := os.Rename(tmpPath, w.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
