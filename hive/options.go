package hive

import (
	"log/slog"
	"time"

	"github.com/joshuapare/ntreg/hive/subkeys"
)

// Mode selects how a hive may be used.
type Mode uint8

const (
	// ModeReadOnly rejects every mutation and makes Write a no-op.
	ModeReadOnly Mode = 1 << iota
	// ModeNoAlloc rejects allocator use. Edits that fit in place still work.
	ModeNoAlloc
)

// Sink receives the full hive buffer on Write.
type Sink interface {
	WriteHive(buf []byte) error
}

// Options configures Open and Load. The zero value is usable.
type Options struct {
	Mode Mode

	// Logger receives debug and warning events. Defaults to discarding.
	Logger *slog.Logger

	// Clock stamps key and header timestamps. Defaults to time.Now.
	Clock func() time.Time

	// Sink persists the hive on Write. Open defaults it to the source file.
	Sink Sink

	// IndexKind overrides the index kind used for new index blocks. Zero
	// means use the kind detected under the root key.
	IndexKind subkeys.Kind
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) clock() func() time.Time {
	if o.Clock != nil {
		return o.Clock
	}
	return time.Now
}
