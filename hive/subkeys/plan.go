package subkeys

import "github.com/joshuapare/ntreg/internal/format"

// Capacity is the number of entries a single leaf block of kind k can hold
// while its cell still fits in one page.
func Capacity(k Kind) int {
	room := format.HBINDataSize - format.CellHeaderSize - format.IndexHeaderSize
	return room / k.EntrySize()
}

// Plan splits n entries into leaf block sizes for kind k. A single block is
// used while n fits; beyond that the entries are spread evenly over the
// fewest blocks that fit, and the caller wraps them in an ri.
func Plan(n int, k Kind) []int {
	if n == 0 {
		return nil
	}
	c := Capacity(k)
	if n <= c {
		return []int{n}
	}
	blocks := (n + c - 1) / c
	sizes := make([]int, blocks)
	base, extra := n/blocks, n%blocks
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}
