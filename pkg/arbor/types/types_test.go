package types

import (
	"errors"
	"os"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr error
	}{
		{"0", 0, nil},
		{"4096", 4096, nil},
		{"512B", 512, nil},
		{"100K", 100 * KiB, nil},
		{"100KB", 100 * KiB, nil},
		{"100KiB", 100 * KiB, nil},
		{"50m", 50 * MiB, nil},
		{"2G", 2 * GiB, nil},
		{"1T", TiB, nil},
		{"1.5M", MiB + 512*KiB, nil},
		{"  10M  ", 10 * MiB, nil},
		{"", 0, ErrInvalidSize},
		{"abc", 0, ErrInvalidSize},
		{"10X", 0, ErrInvalidSize},
		{"-5M", 0, ErrNegativeSize},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1024, "1.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		mode os.FileMode
		want EntryKind
	}{
		{"regular", 0o644, KindFile},
		{"directory", os.ModeDir | 0o755, KindDir},
		{"symlink", os.ModeSymlink | 0o777, KindSymlink},
		{"socket", os.ModeSocket, KindOther},
		{"fifo", os.ModeNamedPipe, KindOther},
		{"device", os.ModeDevice, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.mode); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestEntryKindString(t *testing.T) {
	for kind, want := range map[EntryKind]string{
		KindFile:    "file",
		KindDir:     "dir",
		KindSymlink: "symlink",
		KindOther:   "other",
	} {
		if got := kind.String(); got != want {
			t.Errorf("EntryKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
