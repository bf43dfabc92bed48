package hive

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ntreg/hive/subkeys"
	"github.com/joshuapare/ntreg/internal/format"
	"github.com/joshuapare/ntreg/internal/testutil"
)

func addKeys(t *testing.T, h *Hive, parent Ref, names ...string) []Ref {
	t.Helper()
	refs := make([]Ref, len(names))
	for i, name := range names {
		ref, err := h.AddKey(parent, name)
		require.NoError(t, err, "add %q", name)
		refs[i] = ref
	}
	return refs
}

func indexKindOf(t *testing.T, h *Hive, key Ref) format.IndexKind {
	t.Helper()
	nk, err := h.Key(key)
	require.NoError(t, err)
	p, err := h.payload(Ref(nk.SubkeyList))
	require.NoError(t, err)
	return format.IndexKindOf(p)
}

// Scenario B: enumeration is alphabetical, not insertion order.
func TestAddKey_SortedEnumeration(t *testing.T) {
	h := newHive(t, 1)
	addKeys(t, h, h.Root(), "Software", "System", "Sam")

	assert.Equal(t, []string{"Sam", "Software", "System"}, subkeyNames(t, h, h.Root()))
	nk, err := h.Key(h.Root())
	require.NoError(t, err)
	assert.Equal(t, uint32(3), nk.SubkeyCount)
	requireConsistent(t, h)
}

func TestAddKey_NewNode(t *testing.T) {
	h := newHive(t, 1)
	ref, err := h.AddKey(h.Root(), "Software")
	require.NoError(t, err)

	nk, err := h.Key(ref)
	require.NoError(t, err)
	assert.Equal(t, uint16(format.NKTypeNormal), nk.Flags)
	assert.Equal(t, uint32(h.Root()), nk.Parent)
	assert.Equal(t, uint32(NoRef), nk.SubkeyList)
	assert.Equal(t, uint32(NoRef), nk.ValueList)
	assert.Equal(t, uint32(NoRef), nk.ClassName)
	assert.Equal(t, uint32(testutil.SecurityRef), nk.Security)
	assert.Equal(t, format.TimeToFiletime(fixedNow), nk.LastWriteRaw)

	root, err := h.Key(h.Root())
	require.NoError(t, err)
	assert.Equal(t, format.TimeToFiletime(fixedNow), root.LastWriteRaw)
	assert.Equal(t, uint32(len("Software")*2), root.MaxNameLen)

	sk, err := h.Security(ref)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), sk.RefCount)
}

func TestAddKey_UnicodeName(t *testing.T) {
	h := newHive(t, 1)
	ref, err := h.AddKey(h.Root(), "Ключ")
	require.NoError(t, err)

	nk, err := h.Key(ref)
	require.NoError(t, err)
	assert.False(t, nk.NameIsCompressed())
	name, err := h.KeyName(ref)
	require.NoError(t, err)
	assert.Equal(t, "Ключ", name)

	got, err := h.Lookup("ключ")
	require.NoError(t, err)
	assert.Equal(t, ref, got)
}

func TestAddKey_Errors(t *testing.T) {
	h := newHive(t, 1)
	addKeys(t, h, h.Root(), "Software")

	_, err := h.AddKey(h.Root(), "SOFTWARE")
	require.ErrorIs(t, err, ErrAlreadyExists)

	for _, bad := range []string{"", ".", "..", `a\b`, strings.Repeat("x", MaxKeyNameLen+1)} {
		_, err := h.AddKey(h.Root(), bad)
		require.ErrorIs(t, err, ErrInvalidName, "name %q", bad)
	}

	_, err = h.AddKey(testutil.SecurityRef, "A")
	require.ErrorIs(t, err, ErrCorruptRecord)
	requireConsistent(t, h)
}

func TestAddKey_RollsBackWhenIndexDoesNotFit(t *testing.T) {
	h := newHive(t, 1)
	free := testutil.PageSize - testutil.FirstFree
	nkCell := format.CellSizeFor(format.NKFixedSize + 1)

	// Leave room for the key node but not for its index block.
	_, err := h.Alloc(NoRef, free-nkCell-format.CellHeaderSize)
	require.NoError(t, err)
	require.Equal(t, nkCell, h.Stats().FreeBytes)

	before := append([]byte(nil), h.Bytes()...)
	stats := h.Stats()

	_, err = h.AddKey(h.Root(), "A")
	require.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, before, h.Bytes())
	assert.Equal(t, stats, h.Stats())
	requireConsistent(t, h)
}

// Scenario D.
func TestDelKey_NotEmptyThenRecursive(t *testing.T) {
	h := newHive(t, 1)
	fresh := h.Stats()
	sw := addKeys(t, h, h.Root(), "Software")[0]
	addKeys(t, h, sw, "Vendor")

	err := h.DelKey(h.Root(), "Software")
	require.ErrorIs(t, err, ErrNotEmpty)

	require.NoError(t, h.RDelKeys(sw))
	_, err = h.TravPath(h.Root(), "Software", false)
	require.ErrorIs(t, err, ErrNotFound)

	st := h.Stats()
	assert.Equal(t, fresh.UsedCells, st.UsedCells)
	assert.Equal(t, fresh.FreeBytes, st.FreeBytes)
	assert.Equal(t, 1, st.FreeCells)
	requireConsistent(t, h)
}

func TestDelKey(t *testing.T) {
	h := newHive(t, 1)
	refs := addKeys(t, h, h.Root(), "A", "B", "C")

	require.NoError(t, h.DelKey(h.Root(), "b"))
	assert.Equal(t, []string{"A", "C"}, subkeyNames(t, h, h.Root()))

	require.ErrorIs(t, h.DelKey(h.Root(), "B"), ErrNotFound)

	sk, err := h.Security(refs[0])
	require.NoError(t, err)
	assert.Equal(t, uint32(3), sk.RefCount)

	require.NoError(t, h.DelKey(h.Root(), "A"))
	require.NoError(t, h.DelKey(h.Root(), "C"))
	nk, err := h.Key(h.Root())
	require.NoError(t, err)
	assert.Zero(t, nk.SubkeyCount)
	assert.Equal(t, uint32(NoRef), nk.SubkeyList)
	requireConsistent(t, h)
}

func TestDelKey_FreesClassName(t *testing.T) {
	h := newHive(t, 1)
	fresh := h.Stats()
	key := addKeys(t, h, h.Root(), "K")[0]

	class, err := format.EncodeUTF16("Widget")
	require.NoError(t, err)
	require.NoError(t, h.atomically("set class", func() error {
		cell, err := h.alloc(key, len(class))
		if err != nil {
			return err
		}
		b, err := h.payloadMut(cell, len(class))
		if err != nil {
			return err
		}
		copy(b, class)
		nk, err := h.readNK(key)
		if err != nil {
			return err
		}
		nk.ClassName = uint32(cell)
		nk.ClassLength = uint16(len(class))
		return h.putNK(key, nk)
	}))

	name, err := h.ClassName(key)
	require.NoError(t, err)
	assert.Equal(t, "Widget", name)

	require.NoError(t, h.DelKey(h.Root(), "K"))
	assert.Equal(t, fresh.UsedCells, h.Stats().UsedCells)
	requireConsistent(t, h)
}

func TestRDelKeys_Root(t *testing.T) {
	h := newHive(t, 2)
	a := addKeys(t, h, h.Root(), "A", "B")[0]
	deep := addKeys(t, h, a, "A1")[0]
	addKeys(t, h, deep, "A2")
	_, err := h.AddValue(deep, "v", 4)
	require.NoError(t, err)
	_, err = h.AddValue(h.Root(), "top", 1)
	require.NoError(t, err)

	require.NoError(t, h.RDelKeys(h.Root()))
	nk, err := h.Key(h.Root())
	require.NoError(t, err)
	assert.Zero(t, nk.SubkeyCount)
	assert.Zero(t, nk.ValueCount)
	assert.True(t, nk.IsRoot())
	assert.Equal(t, 2, h.Stats().FreeCells)
	requireConsistent(t, h)
}

func TestRDelKeys_DepthGuard(t *testing.T) {
	h := newHive(t, 1)
	child := addKeys(t, h, h.Root(), "Loop")[0]

	// Point the child's index back at the root's index, which lists the
	// child again: an endless tree.
	root, err := h.Key(h.Root())
	require.NoError(t, err)
	require.NoError(t, h.atomically("corrupt", func() error {
		nk, err := h.readNK(child)
		if err != nil {
			return err
		}
		nk.SubkeyList = root.SubkeyList
		nk.SubkeyCount = 1
		return h.putNK(child, nk)
	}))

	before := append([]byte(nil), h.Bytes()...)
	err = h.RDelKeys(child)
	require.ErrorIs(t, err, ErrCorruptRecord)
	assert.Equal(t, before, h.Bytes())
}

func TestIndexKinds(t *testing.T) {
	for _, kind := range []subkeys.Kind{subkeys.KindLF, subkeys.KindLH, subkeys.KindLI} {
		t.Run(kind.String(), func(t *testing.T) {
			h := newHive(t, 1, func(o *Options) { o.IndexKind = kind })
			names := []string{"Zeta", "alpha", "Beta", "gamma", "Delta"}
			refs := addKeys(t, h, h.Root(), names...)

			assert.Equal(t, kind, indexKindOf(t, h, h.Root()))
			assert.Equal(t, []string{"alpha", "Beta", "Delta", "gamma", "Zeta"}, subkeyNames(t, h, h.Root()))
			for i, name := range names {
				got, err := h.Lookup(strings.ToUpper(name))
				require.NoError(t, err)
				assert.Equal(t, refs[i], got)
			}
			_, err := h.Lookup("Bet")
			require.ErrorIs(t, err, ErrNotFound)

			again, err := Load(h.Bytes(), Options{})
			require.NoError(t, err)
			assert.Equal(t, kind, again.IndexKind())
			requireConsistent(t, h)
		})
	}
}

func TestIndex_KeepsExistingLeafKind(t *testing.T) {
	h := newHive(t, 1, func(o *Options) { o.IndexKind = subkeys.KindLI })
	addKeys(t, h, h.Root(), "A")

	h.index = subkeys.KindLH
	addKeys(t, h, h.Root(), "B")
	assert.Equal(t, subkeys.KindLI, indexKindOf(t, h, h.Root()))
}

func TestIndex_GrowsAndCollapsesRI(t *testing.T) {
	h := newHive(t, 32)
	capacity := subkeys.Capacity(subkeys.KindLF)
	n := capacity + 40

	var names []string
	for i := 0; i < n; i++ {
		names = append(names, fmt.Sprintf("Key%04d", n-i))
	}
	addKeys(t, h, h.Root(), names...)
	assert.Equal(t, subkeys.KindRI, indexKindOf(t, h, h.Root()))

	nk, err := h.Key(h.Root())
	require.NoError(t, err)
	blocks, _, err := h.leafBlocks(Ref(nk.SubkeyList))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	for _, b := range blocks {
		assert.Equal(t, subkeys.KindLF, b.Kind)
		assert.LessOrEqual(t, len(b.Entries), capacity)
	}

	got := subkeyNames(t, h, h.Root())
	require.Len(t, got, n)
	for i := 1; i < len(got); i++ {
		require.Negative(t, subkeys.Compare(got[i-1], got[i]))
	}
	ref, err := h.Lookup("key0001")
	require.NoError(t, err)
	name, err := h.KeyName(ref)
	require.NoError(t, err)
	assert.Equal(t, "Key0001", name)

	// Walk the cursor across the block boundary by hand.
	var c SubkeyCursor
	count := 0
	for {
		_, err := h.NextSubkey(h.Root(), &c)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, n, count)
	assert.Equal(t, 2, c.Block)

	for i := 0; i < 41; i++ {
		require.NoError(t, h.DelKey(h.Root(), names[i]))
	}
	assert.Equal(t, subkeys.KindLF, indexKindOf(t, h, h.Root()))
	assert.Len(t, subkeyNames(t, h, h.Root()), n-41)
	requireConsistent(t, h)
}

func TestSubkeys_SkipsCorruptChild(t *testing.T) {
	h := newHive(t, 1)
	refs := addKeys(t, h, h.Root(), "A", "B", "C")
	copy(h.Bytes()[toAbs(refs[1])+format.CellHeaderSize:], "xx")

	subs, err := h.Subkeys(h.Root())
	require.ErrorIs(t, err, ErrCorruptRecord)
	require.Len(t, subs, 2)
	assert.Equal(t, "A", subs[0].Name)
	assert.Equal(t, "C", subs[1].Name)
}

func TestTravPath(t *testing.T) {
	h := newHive(t, 1)
	sw := addKeys(t, h, h.Root(), "Software")[0]
	vendor := addKeys(t, h, sw, "Vendor")[0]
	_, err := h.AddValue(vendor, "Version", 1)
	require.NoError(t, err)

	tests := []struct {
		start Ref
		path  string
		want  Ref
	}{
		{h.Root(), "", h.Root()},
		{h.Root(), `\`, h.Root()},
		{h.Root(), `Software\Vendor`, vendor},
		{h.Root(), `\software\VENDOR\`, vendor},
		{vendor, `\Software`, sw},
		{vendor, `..`, sw},
		{vendor, `..\..\..\..`, h.Root()},
		{sw, `.\Vendor\.`, vendor},
		{sw, `Vendor\..\Vendor`, vendor},
		{h.Root(), `Software\\\Vendor`, NoRef},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := h.TravPath(tt.start, tt.path, false)
			if tt.want == NoRef {
				require.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := h.TravPath(tt.start, tt.path, false)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}

	v, err := h.TravPath(h.Root(), `Software\Vendor\version`, true)
	require.NoError(t, err)
	vk, err := h.Value(v)
	require.NoError(t, err)
	name, err := vk.Name()
	require.NoError(t, err)
	assert.Equal(t, "Version", name)

	_, err = h.TravPath(h.Root(), `Software\Vendor`, true)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = h.TravPath(h.Root(), `Soft\Vendor`, false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{``, nil},
		{`a\b`, []string{"a", "b"}},
		{`a\\b`, []string{`a\b`}},
		{`a\\\b`, []string{`a\`, "b"}},
		{`\\a`, []string{`\a`}},
		{`a\\\\b`, []string{`a\\b`}},
		{`a\\`, []string{`a\`}},
		{`\a\\b\c\`, []string{`a\b`, "c"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitPath(tt.in), tt.in)
	}
}

func TestAbsPath(t *testing.T) {
	h := newHive(t, 1)
	sw := addKeys(t, h, h.Root(), "Software")[0]
	ms := addKeys(t, h, sw, "Microsoft")[0]

	p, err := h.AbsPath(h.Root())
	require.NoError(t, err)
	assert.Equal(t, `\`, p)

	p, err = h.AbsPath(ms)
	require.NoError(t, err)
	assert.Equal(t, `\Software\Microsoft`, p)

	back, err := h.Lookup(p)
	require.NoError(t, err)
	assert.Equal(t, ms, back)
}

func TestAddKey_StampsLastWrite(t *testing.T) {
	h := newHive(t, 1)
	child, err := h.AddKey(h.Root(), "Stamped")
	require.NoError(t, err)

	for _, ref := range []Ref{child, h.Root()} {
		ts, err := h.KeyLastWrite(ref)
		require.NoError(t, err)
		assert.True(t, fixedNow.Equal(ts), "%s: %v", ref, ts)
	}
}

func TestNextSubkey_NegativeCursor(t *testing.T) {
	h := newHive(t, 1)
	addKeys(t, h, h.Root(), "A", "B")

	for _, c := range []SubkeyCursor{{Index: -1}, {Block: -1}} {
		_, err := h.NextSubkey(h.Root(), &c)
		require.ErrorIs(t, err, io.EOF)
	}
}

// staleValueList points key at a fresh cell while leaving its value count
// at zero, the way some writers leave an emptied key.
func staleValueList(t *testing.T, h *Hive, key Ref) Ref {
	t.Helper()
	var cell Ref
	require.NoError(t, h.atomically("stale list", func() error {
		var err error
		cell, err = h.alloc(key, format.RefEntrySize)
		if err != nil {
			return err
		}
		nk, err := h.readNK(key)
		if err != nil {
			return err
		}
		nk.ValueList = uint32(cell)
		return h.putNK(key, nk)
	}))
	return cell
}

func TestDelKey_FreesStaleValueList(t *testing.T) {
	h := newHive(t, 1)
	fresh := h.Stats()
	key := addKeys(t, h, h.Root(), "K")[0]
	staleValueList(t, h, key)

	require.NoError(t, h.DelKey(h.Root(), "K"))
	assert.Equal(t, fresh.UsedCells, h.Stats().UsedCells)
	assert.Equal(t, fresh.FreeBytes, h.Stats().FreeBytes)
	requireConsistent(t, h)
}
