package subkeys

import (
	"fmt"
	"sort"
	"strings"
)

// Compare orders key names the way the index does: case-insensitively, with
// a shorter name sorting before any longer name it prefixes.
func Compare(a, b string) int {
	return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
}

// Equal reports whether two key names match case-insensitively. A name
// never matches a longer name it prefixes.
func Equal(a, b string) bool {
	return Compare(a, b) == 0
}

// Search returns the position of name in the list and whether it is present.
// When absent, the position is where name would be inserted.
func (l *List) Search(name string) (int, bool) {
	i := sort.Search(l.Len(), func(i int) bool {
		return Compare(l.Entries[i].Name, name) >= 0
	})
	return i, i < l.Len() && Compare(l.Entries[i].Name, name) == 0
}

// Find returns the entry named name.
func (l *List) Find(name string) (Entry, bool) {
	i, ok := l.Search(name)
	if !ok {
		return Entry{}, false
	}
	return l.Entries[i], true
}

// Insert places e at its sorted position and returns that position.
func (l *List) Insert(e Entry) (int, error) {
	i, ok := l.Search(e.Name)
	if ok {
		return i, fmt.Errorf("%w: %q", ErrDuplicateKey, e.Name)
	}
	l.Entries = append(l.Entries, Entry{})
	copy(l.Entries[i+1:], l.Entries[i:])
	l.Entries[i] = e
	return i, nil
}

// Remove deletes the entry named name and returns it.
func (l *List) Remove(name string) (Entry, error) {
	i, ok := l.Search(name)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	e := l.Entries[i]
	l.Entries = append(l.Entries[:i], l.Entries[i+1:]...)
	return e, nil
}

// Sorted reports whether the entries are strictly increasing by name.
func (l *List) Sorted() bool {
	for i := 1; i < l.Len(); i++ {
		if Compare(l.Entries[i-1].Name, l.Entries[i].Name) >= 0 {
			return false
		}
	}
	return true
}
