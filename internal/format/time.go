package format

import "time"

const (
	filetimeEpochDelta = 116444736000000000 // 1601-01-01 to 1970-01-01 in 100ns ticks
	filetimeTick       = 100
)

// FiletimeToTime converts a Windows FILETIME to UTC time. Values before the
// Unix epoch clamp to it.
func FiletimeToTime(v uint64) time.Time {
	if v <= filetimeEpochDelta {
		return time.Unix(0, 0).UTC()
	}
	ns := int64((v - filetimeEpochDelta) * filetimeTick)
	return time.Unix(0, ns).UTC()
}

// TimeToFiletime converts t to a Windows FILETIME.
func TimeToFiletime(t time.Time) uint64 {
	ns := t.UnixNano()
	if ns < 0 {
		ns = 0
	}
	return uint64(ns)/filetimeTick + filetimeEpochDelta
}
