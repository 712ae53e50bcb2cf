//go:build unix

package walker

import (
	"os"
	"syscall"
)

// statInfo holds the platform-specific metadata an Entry needs beyond
// what os.FileInfo exposes portably.
type statInfo struct {
	dev      uint64
	ino      uint64
	nlink    uint64
	physical int64
}

// platformStat extracts device, inode, link count, and allocated size
// from the underlying Stat_t. Blocks are 512-byte units on all unix
// platforms regardless of the filesystem block size.
func platformStat(info os.FileInfo) statInfo {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat == nil {
		return statInfo{physical: info.Size()}
	}
	return statInfo{
		dev:      uint64(stat.Dev),
		ino:      uint64(stat.Ino),
		nlink:    uint64(stat.Nlink),
		physical: int64(stat.Blocks) * 512,
	}
}
