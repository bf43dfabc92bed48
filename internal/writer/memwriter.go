package writer

// MemWriter keeps the last written buffer in memory.
type MemWriter struct {
	Buf    []byte
	Writes int
}

// WriteHive copies buf.
func (w *MemWriter) WriteHive(buf []byte) error {
	w.Buf = append(w.Buf[:0], buf...)
	w.Writes++
	return nil
}
