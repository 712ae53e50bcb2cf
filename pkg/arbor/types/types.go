// Package types provides the core data types for the arbor disk usage
// reporter. It defines the immutable entry descriptor produced by the
// walker, the closed set of entry kinds, the per-entry error taxonomy,
// and utilities for parsing and formatting byte sizes.
package types

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// EntryKind classifies a filesystem object. The set is closed; switch
// statements over it should be exhaustive.
type EntryKind int

const (
	// KindFile is a regular file.
	KindFile EntryKind = iota
	// KindDir is a directory.
	KindDir
	// KindSymlink is a symbolic link (not followed unless configured).
	KindSymlink
	// KindOther covers sockets, FIFOs, and device nodes.
	KindOther
)

// String returns the kind as a short lowercase name.
func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// KindOf maps a file mode to an EntryKind.
func KindOf(mode os.FileMode) EntryKind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// ErrorKind classifies a non-fatal failure recorded on a single entry.
// Fatal conditions (unreadable root, cancellation) are returned as errors
// from the walk instead.
type ErrorKind int

const (
	// ErrNone means the entry was read cleanly.
	ErrNone ErrorKind = iota
	// ErrStat means the metadata call failed for the entry.
	ErrStat
	// ErrReadDir means a directory listing failed.
	ErrReadDir
	// ErrPermission means access was denied.
	ErrPermission
	// ErrCycle means a followed symlink pointed back to an ancestor.
	ErrCycle
)

// String returns the error kind as a short name for display.
func (e ErrorKind) String() string {
	switch e {
	case ErrNone:
		return ""
	case ErrStat:
		return "stat"
	case ErrReadDir:
		return "readdir"
	case ErrPermission:
		return "permission"
	case ErrCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// Entry is an immutable snapshot of one filesystem object. It is created
// once during the walk and never modified afterwards.
type Entry struct {
	// Path is the absolute, cleaned path to the object.
	Path string `json:"path"`

	// Name is the base name of the object.
	Name string `json:"name"`

	// Kind classifies the object.
	Kind EntryKind `json:"kind"`

	// Device and Inode identify the underlying filesystem object.
	// Together they detect hard links and symlink cycles. Both are zero
	// on platforms that do not expose them.
	Device uint64 `json:"device"`
	Inode  uint64 `json:"inode"`

	// NLink is the hard-link count reported by the filesystem, or zero
	// when unavailable.
	NLink uint64 `json:"nlink"`

	// Size is the apparent (logical) size in bytes.
	Size int64 `json:"size"`

	// PhysicalSize is the disk space actually consumed, derived from the
	// allocated block count. It may be smaller than Size for sparse files
	// and larger for small files due to block rounding.
	PhysicalSize int64 `json:"physical_size"`

	// Depth is the distance from the traversal root (root = 0).
	Depth int `json:"depth"`

	// ModTime is the last modification time, used for sorting and display.
	ModTime time.Time `json:"mod_time"`

	// Mode holds the permission and mode bits.
	Mode os.FileMode `json:"mode"`

	// LinkTarget is the symlink target path, empty for other kinds.
	LinkTarget string `json:"link_target,omitempty"`
}

// HasIdentity reports whether the entry carries a usable (device, inode)
// pair for hard-link and cycle detection.
func (e *Entry) HasIdentity() bool {
	return e.Device != 0 || e.Inode != 0
}

// ScanError pairs a path with the error encountered there. Scan errors
// never abort a walk; they are collected and surfaced alongside results.
type ScanError struct {
	// Path is the file or directory where the error occurred.
	Path string `json:"path"`

	// Kind classifies the failure.
	Kind ErrorKind `json:"kind"`

	// Error is the underlying error message.
	Error string `json:"error"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GiB".
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that a size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns bytes.
// Supported forms: plain bytes ("4096"), byte suffix ("512B"), and
// K/M/G/T with optional B or iB suffix, case-insensitive. Decimal values
// are truncated to the nearest byte.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts bytes to a human-readable string using binary
// (IEC) units, matching common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

// FormatSizeSI converts bytes to a human-readable string using decimal
// (SI) units.
func FormatSizeSI(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}
