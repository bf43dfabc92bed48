// Package hive loads, edits and persists Windows NT registry hive files.
//
// # Overview
//
// A hive is held entirely in memory as one byte buffer owned by a *Hive:
//
//	[regf base block, 4 KiB] [page 0] [page 1] ... [page N] [ignored trailing bytes]
//
// Pages ("hbin") hold runs of cells. A cell is a signed length followed by a
// payload: negative lengths are allocated, positive lengths are free. Every
// reference stored inside the hive is a Ref, an offset relative to the first
// page; the package translates Refs to buffer offsets in exactly one place.
//
// # Opening a Hive
//
//	h, err := hive.Open("/cases/0042/SYSTEM", hive.Options{Mode: hive.ModeReadOnly})
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
// Load does the same for bytes already in memory.
//
// # Reading
//
// TravPath resolves backslash paths; NextSubkey and NextValue enumerate with
// caller-held cursors; ReadValueData copies value data out as a KeyVal.
//
//	key, err := h.Lookup(`\ControlSet001\Services`)
//	var c hive.SubkeyCursor
//	for {
//	    ex, err := h.NextSubkey(key, &c)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        log.Warn("skipping corrupt subkey", "err", err)
//	        continue
//	    }
//	    fmt.Println(ex.Name)
//	}
//
// # Editing
//
// AddKey, DelKey, RDelKeys, AddValue, DelValue, DelAllValues and
// WriteValueData either complete fully or leave the buffer exactly as it
// was. The allocator never grows the file: when no free cell is large enough
// the operation fails with ErrAllocationFailed. Write persists a dirty hive
// through its Sink.
//
// # Concurrency
//
// A *Hive is not safe for concurrent use. Cursors are plain values and may be
// interleaved with each other, but any mutation invalidates cursors over the
// mutated key.
package hive
