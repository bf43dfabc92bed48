// Package subkeys models the ordered child sequence behind a key's subkey
// index, independent of the cells it is stored in.
//
// A key's children are kept in one of four encodings:
//
//	lf  count + (child, first four name bytes) pairs
//	lh  count + (child, base-37 hash of the upper-cased name) pairs
//	li  count + child references only
//	ri  count + references to lf/lh/li blocks
//
// Whatever the encoding, the children form one sequence sorted by
// case-insensitive name. Blocks under an ri are each sorted and ordered by
// their first name, so concatenating them yields the same sequence. The hive
// package decodes cells into a List, edits the List with Insert and Remove,
// and re-encodes it using Plan to split it into blocks.
package subkeys
