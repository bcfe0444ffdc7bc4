//go:build unix

package grant

import (
	"fmt"
	"io/fs"
	"syscall"
)

// folderIdentity extracts the device and inode pair identifying the
// folder behind info.
func folderIdentity(info fs.FileInfo) (dev, ino uint64, err error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, fmt.Errorf("cannot extract stat data: expected *syscall.Stat_t, got %T", info.Sys())
	}
	return uint64(stat.Dev), uint64(stat.Ino), nil
}
