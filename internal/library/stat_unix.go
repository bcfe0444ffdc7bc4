//go:build unix

package library

import (
	"os"
	"syscall"
	"time"
)

// creationTime reads the filesystem's idea of when the photo appeared.
// Birth time is not available on most Unix filesystems, so the change
// time stands in. When stat fails entirely the clock's now is used.
func creationTime(path string, clock Clock) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return clock.Now()
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
}
