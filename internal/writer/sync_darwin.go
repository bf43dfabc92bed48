//go:build darwin

package writer

import (
	"os"

	"golang.org/x/sys/unix"
)

// datasync asks for F_FULLFSYNC so the data reaches the platter, not just
// the drive cache.
func datasync(f *os.File) error {
	_, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0)
	return err
}
