package subkeys

import "github.com/joshuapare/ntreg/internal/format"

// Kind is the encoding of an index block.
type Kind = format.IndexKind

const (
	KindLF = format.IndexLF // literal four byte name prefix
	KindLH = format.IndexLH // name hash
	KindLI = format.IndexLI // bare references
	KindRI = format.IndexRI // indirection over leaf blocks
)

// Entry is one child of a key.
type Entry struct {
	Ref  uint32 // cell reference of the child nk
	Name string // decoded child name
}

// List is the ordered child sequence of a key.
type List struct {
	Entries []Entry
}

// Len returns the number of entries in the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}

// Names returns the entry names in order.
func (l *List) Names() []string {
	out := make([]string, 0, l.Len())
	for _, e := range l.Entries {
		out = append(out, e.Name)
	}
	return out
}
