package subkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	// Hash("A") = 'A'; Hash("ab") = 'A'*37 + 'B'
	require.Equal(t, uint32('A'), Hash("a"))
	require.Equal(t, uint32('A')*37+uint32('B'), Hash("ab"))
	require.Equal(t, Hash("Software"), Hash("SOFTWARE"))
}

func TestTag(t *testing.T) {
	require.Equal(t, uint32('S')|uint32('o')<<8|uint32('f')<<16|uint32('t')<<24, Tag("Software"))
	require.Equal(t, uint32('A')|uint32('b')<<8, Tag("Ab"))
	require.Equal(t, uint32(0), TagFor(KindLI, "Ab"))
	require.Equal(t, Hash("Ab"), TagFor(KindLH, "Ab"))
}

func TestTag_Windows1252(t *testing.T) {
	// '€' is stored as 0x80 in a compressed name.
	require.Equal(t, uint32(0x80)|uint32('x')<<8, Tag("€x"))
	require.Equal(t, uint32(0xE9)|uint32('t')<<8|uint32('e')<<16, Tag("éte"))
	// Names that need UTF-16 keep the low byte of each character.
	require.Equal(t, uint32(0x1A)|uint32('a')<<8, Tag("Кa"))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare("sam", "SAM"))
	assert.Negative(t, Compare("Sam", "Software"))
	assert.Negative(t, Compare("Soft", "Software"))
	assert.Positive(t, Compare("System", "Software"))
	assert.False(t, Equal("Soft", "Software"))
	assert.True(t, Equal("software", "SOFTWARE"))
}

func TestInsertKeepsOrder(t *testing.T) {
	var l List
	for i, name := range []string{"Software", "System", "Sam"} {
		_, err := l.Insert(Entry{Ref: uint32(i), Name: name})
		require.NoError(t, err)
	}
	require.Equal(t, []string{"Sam", "Software", "System"}, l.Names())
	require.True(t, l.Sorted())

	_, err := l.Insert(Entry{Name: "SOFTWARE"})
	require.ErrorIs(t, err, ErrDuplicateKey)
	require.Equal(t, 3, l.Len())
}

func TestSearchAndRemove(t *testing.T) {
	l := List{Entries: []Entry{{Ref: 1, Name: "a"}, {Ref: 2, Name: "B"}, {Ref: 3, Name: "c"}}}

	i, ok := l.Search("b")
	require.True(t, ok)
	require.Equal(t, 1, i)

	i, ok = l.Search("bb")
	require.False(t, ok)
	require.Equal(t, 2, i)

	e, err := l.Remove("B")
	require.NoError(t, err)
	require.Equal(t, uint32(2), e.Ref)
	require.Equal(t, []string{"a", "c"}, l.Names())

	_, err = l.Remove("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSortedDetectsDuplicates(t *testing.T) {
	l := List{Entries: []Entry{{Name: "a"}, {Name: "A"}}}
	require.False(t, l.Sorted())
	var empty *List
	require.Equal(t, 0, empty.Len())
}

func TestPlan(t *testing.T) {
	require.Equal(t, 507, Capacity(KindLF))
	require.Equal(t, 507, Capacity(KindLH))
	require.Equal(t, 1014, Capacity(KindLI))

	require.Nil(t, Plan(0, KindLF))
	require.Equal(t, []int{3}, Plan(3, KindLF))
	require.Equal(t, []int{507}, Plan(507, KindLF))
	require.Equal(t, []int{254, 254}, Plan(508, KindLH))

	sizes := Plan(1200, KindLF)
	require.Len(t, sizes, 3)
	total := 0
	for _, s := range sizes {
		require.LessOrEqual(t, s, Capacity(KindLF))
		total += s
	}
	require.Equal(t, 1200, total)
}
