//go:build !unix

package walker

import "os"

// statInfo holds the platform-specific metadata an Entry needs beyond
// what os.FileInfo exposes portably.
type statInfo struct {
	dev      uint64
	ino      uint64
	nlink    uint64
	physical int64
}

// platformStat has no inode information to offer on this platform.
// Hard-link dedup degrades gracefully: entries without an identity are
// always counted.
func platformStat(info os.FileInfo) statInfo {
	return statInfo{physical: info.Size()}
}
