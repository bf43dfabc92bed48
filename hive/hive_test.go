package hive

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ntreg/internal/format"
	"github.com/joshuapare/ntreg/internal/testutil"
	"github.com/joshuapare/ntreg/internal/writer"
)

var fixedNow = time.Date(2025, time.March, 4, 5, 6, 7, 0, time.UTC)

func newHive(t *testing.T, pages int, opts ...func(*Options)) *Hive {
	t.Helper()
	o := Options{Clock: func() time.Time { return fixedNow }}
	for _, fn := range opts {
		fn(&o)
	}
	h, err := Load(testutil.NewHive(t, pages), o)
	require.NoError(t, err)
	return h
}

// requireConsistent re-walks every page and checks tallies, alignment and
// coalescing.
func requireConsistent(t *testing.T, h *Hive) {
	t.Helper()
	var walked Stats
	total := 0
	for _, p := range h.Pages() {
		total += p.Size
		it := h.Cells(p)
		prevFree := false
		for {
			c, err := it.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			require.Zero(t, c.Size()%format.CellAlignment, "cell %s size %d", c.Ref, c.Size())
			if c.Allocated() {
				walked.UsedCells++
				walked.UsedBytes += c.Size()
				prevFree = false
				continue
			}
			require.False(t, prevFree, "adjacent free cells at %s", c.Ref)
			walked.FreeCells++
			walked.FreeBytes += c.Size()
			prevFree = true
		}
	}
	st := h.Stats()
	require.Equal(t, total, st.PageBytes(), "conservation")
	require.Equal(t, walked.UsedCells, st.UsedCells)
	require.Equal(t, walked.UsedBytes, st.UsedBytes)
	require.Equal(t, walked.FreeCells, st.FreeCells)
	require.Equal(t, walked.FreeBytes, st.FreeBytes)
}

func subkeyNames(t *testing.T, h *Hive, key Ref) []string {
	t.Helper()
	subs, err := h.Subkeys(key)
	require.NoError(t, err)
	names := make([]string, len(subs))
	for i, ex := range subs {
		names[i] = ex.Name
	}
	return names
}

func TestLoad_Minimal(t *testing.T) {
	h := newHive(t, 1)

	assert.Equal(t, Ref(testutil.RootRef), h.Root())
	assert.Len(t, h.Pages(), 1)
	assert.Equal(t, format.IndexLF, h.IndexKind())
	assert.Equal(t, "SYNTHETIC", h.Name())
	assert.True(t, testutil.Epoch.Equal(h.LastWrite()))
	assert.False(t, h.Dirty())

	st := h.Stats()
	assert.Equal(t, 2, st.UsedCells)
	assert.Equal(t, 1, st.FreeCells)
	assert.Equal(t, testutil.PageSize-testutil.FirstFree, st.FreeBytes)
	requireConsistent(t, h)
}

// Scenario A: a hive holding only its root has no subkeys and no class.
func TestLoad_EmptyRootScenario(t *testing.T) {
	h := newHive(t, 1)

	var c SubkeyCursor
	_, err := h.NextSubkey(h.Root(), &c)
	require.ErrorIs(t, err, io.EOF)
	assert.Empty(t, subkeyNames(t, h, h.Root()))
	assert.Equal(t, ClassUnknown, h.Class())
}

func TestLoad_CopiesInput(t *testing.T) {
	data := testutil.NewHive(t, 1)
	h, err := Load(data, Options{})
	require.NoError(t, err)
	data[testutil.Abs(testutil.RootRef)+4] = 'x'
	_, err = h.Key(h.Root())
	require.NoError(t, err)
}

func TestLoad_CorruptHeader(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"too small", func(b []byte) []byte { return b[:format.HeaderSize] }},
		{"bad magic", func(b []byte) []byte { copy(b, "regx"); return b }},
		{"no pages", func(b []byte) []byte { copy(b[format.HiveDataBase:], "nbih"); return b }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.mutate(testutil.NewHive(t, 1)), Options{})
			require.ErrorIs(t, err, ErrCorruptHeader)
		})
	}
}

func TestLoad_ZeroLengthCell(t *testing.T) {
	data := testutil.NewHive(t, 1)
	format.PutCellState(data, testutil.Abs(testutil.FirstFree), format.Unused(0))

	_, err := Load(data, Options{})
	require.ErrorIs(t, err, ErrZeroLengthCell)
	var rerr *RecordError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, Ref(testutil.FirstFree), rerr.Ref)
}

func TestLoad_CellOverrunsPage(t *testing.T) {
	data := testutil.NewHive(t, 1)
	format.PutCellState(data, testutil.Abs(testutil.FirstFree), format.Unused(testutil.PageSize))

	_, err := Load(data, Options{})
	require.ErrorIs(t, err, ErrCorruptRecord)
}

func TestLoad_RootNotAKey(t *testing.T) {
	data := testutil.NewHive(t, 1)
	format.PutU32(data, format.REGFRootCellOffset, testutil.SecurityRef)

	_, err := Load(data, Options{})
	require.ErrorIs(t, err, ErrCorruptRecord)
}

func TestLoad_RootFlagMissing(t *testing.T) {
	data := testutil.NewHive(t, 1)
	format.PutU16(data, testutil.Abs(testutil.RootRef)+format.CellHeaderSize+format.NKFlagsOffset, format.NKTypeNormal)

	_, err := Load(data, Options{})
	require.ErrorIs(t, err, ErrCorruptRecord)
}

func TestLoad_TrailingGarbage(t *testing.T) {
	data := testutil.Build(testutil.Layout{Pages: 2, Trailing: bytes.Repeat([]byte{0xCC}, 700)})

	h, err := Load(data, Options{})
	require.NoError(t, err)
	assert.Len(t, h.Pages(), 2)
	assert.Equal(t, len(data), h.Stats().Size)

	var out bytes.Buffer
	_, err = h.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, data, out.Bytes())
}

func TestRoundTrip_Identity(t *testing.T) {
	data := testutil.NewHive(t, 3)
	mem := &writer.MemWriter{}
	h, err := Load(data, Options{Sink: mem})
	require.NoError(t, err)

	require.NoError(t, h.Write())
	assert.Zero(t, mem.Writes, "clean hive must not be written")

	var out bytes.Buffer
	_, err = h.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, data, out.Bytes())
}

func TestWrite_ReloadsEquivalentTree(t *testing.T) {
	mem := &writer.MemWriter{}
	h := newHive(t, 2, func(o *Options) { o.Sink = mem })
	sw, err := h.AddKey(h.Root(), "Software")
	require.NoError(t, err)
	_, err = h.AddKey(sw, "Classes")
	require.NoError(t, err)
	require.True(t, h.Dirty())

	require.NoError(t, h.Write())
	assert.False(t, h.Dirty())
	require.Equal(t, 1, mem.Writes)

	hdr, err := format.DecodeHeader(mem.Buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), hdr.PrimarySeq)
	assert.Equal(t, hdr.PrimarySeq, hdr.SecondarySeq)
	assert.Equal(t, format.TimeToFiletime(fixedNow), hdr.LastWriteRaw)
	assert.Equal(t, format.Checksum(mem.Buf), hdr.Checksum)

	again, err := Load(mem.Buf, Options{})
	require.NoError(t, err)
	ref, err := again.Lookup(`\Software\Classes`)
	require.NoError(t, err)
	path, err := again.AbsPath(ref)
	require.NoError(t, err)
	assert.Equal(t, `\Software\Classes`, path)
	requireConsistent(t, again)
}

func TestWrite_NoSink(t *testing.T) {
	h := newHive(t, 1)
	_, err := h.AddKey(h.Root(), "A")
	require.NoError(t, err)
	require.ErrorIs(t, h.Write(), ErrNoSink)
	assert.True(t, h.Dirty())
}

type failingSink struct{}

func (failingSink) WriteHive([]byte) error { return errors.New("disk on fire") }

func TestWrite_SinkFailureKeepsHeader(t *testing.T) {
	h := newHive(t, 1, func(o *Options) { o.Sink = failingSink{} })
	_, err := h.AddKey(h.Root(), "A")
	require.NoError(t, err)
	before := append([]byte(nil), h.Bytes()[:format.HeaderSize]...)

	require.Error(t, h.Write())
	assert.True(t, h.Dirty())
	assert.Equal(t, before, h.Bytes()[:format.HeaderSize])
	assert.Equal(t, uint32(1), h.Header().PrimarySeq)
}

func TestOpen_WritesBackToFile(t *testing.T) {
	path := testutil.WriteFile(t, "NTUSER.DAT", testutil.NewHive(t, 1))

	h, err := Open(path, Options{})
	require.NoError(t, err)
	_, err = h.AddKey(h.Root(), "Environment")
	require.NoError(t, err)
	require.NoError(t, h.Write())
	require.NoError(t, h.Close())

	h, err = Open(path, Options{Mode: ModeReadOnly})
	require.NoError(t, err)
	defer h.Close()
	_, err = h.Lookup("environment")
	require.NoError(t, err)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(t.TempDir()+"/absent", Options{})
	require.Error(t, err)
}

func TestReadOnly(t *testing.T) {
	h := newHive(t, 1, func(o *Options) { o.Mode = ModeReadOnly })
	before := append([]byte(nil), h.Bytes()...)

	_, err := h.AddKey(h.Root(), "A")
	require.ErrorIs(t, err, ErrReadOnly)
	_, err = h.Alloc(NoRef, 16)
	require.ErrorIs(t, err, ErrReadOnly)
	require.NoError(t, h.Write())
	assert.Equal(t, before, h.Bytes())
}

func TestClose(t *testing.T) {
	h := newHive(t, 1)
	require.NoError(t, h.Close())

	require.ErrorIs(t, h.Close(), ErrClosed)
	_, err := h.Lookup("A")
	require.ErrorIs(t, err, ErrClosed)
	_, err = h.AddKey(h.Root(), "A")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, h.Write(), ErrClosed)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		keys []string
		want Class
	}{
		{[]string{"ControlSet001", "Select"}, ClassSystem},
		{[]string{"Policy"}, ClassSecurity},
		{[]string{"Microsoft", "Classes"}, ClassSoftware},
		{[]string{"Other"}, ClassUnknown},
		{[]string{"SAM"}, ClassSAM},
		{[]string{"sam", "ControlSet001"}, ClassSAM},
	}
	for _, tt := range tests {
		t.Run(tt.want.String()+"/"+strings.Join(tt.keys, ","), func(t *testing.T) {
			h := newHive(t, 1)
			for _, k := range tt.keys {
				_, err := h.AddKey(h.Root(), k)
				require.NoError(t, err)
			}
			again, err := Load(h.Bytes(), Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, again.Class())
		})
	}

	t.Run("SAM", func(t *testing.T) {
		h := newHive(t, 1)
		cur := h.Root()
		for _, k := range []string{"SAM", "Domains", "Account", "Users"} {
			var err error
			cur, err = h.AddKey(cur, k)
			require.NoError(t, err)
		}
		again, err := Load(h.Bytes(), Options{})
		require.NoError(t, err)
		assert.Equal(t, ClassSAM, again.Class())
	})
}
