// Package values holds the value side of a key: the flat value list that an
// nk points at, the REG_* value types, and codecs for the typed payloads that
// cross the API as raw bytes.
//
// Value lists have none of the structure of subkey indexes: no tags, no
// ordering requirement, a single format. Order is preserved as stored.
package values
