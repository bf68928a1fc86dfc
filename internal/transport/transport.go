package transport

import (
	"errors"
	"io"
)

// Kind is the closed set of entry types a manifest distinguishes.
type Kind int

const (
	Regular Kind = iota + 1
	Directory
	Symlink
	Other
)

var kindNames = [...]string{
	Regular:   "regular",
	Directory: "directory",
	Symlink:   "symlink",
	Other:     "other",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ErrLinkTooLong is returned by Readlink when the link target fills the
// whole read buffer, so truncation cannot be ruled out.
var ErrLinkTooLong = errors.New("symlink value too large")

// FileEntry is the result of a non-following stat.
type FileEntry struct {
	Kind Kind
	Size int64
	// Mode holds the raw st_mode bits (file type and permissions) as
	// reported by the filesystem.
	Mode uint32
}

// Source is a tree that can be traversed to produce a manifest. Paths are
// passed through as given; a Source never joins or cleans them.
type Source interface {
	// Lstat classifies path without following a final symbolic link.
	Lstat(path string) (FileEntry, error)

	// ReadDir returns the names of the entries in directory path, in the
	// order the filesystem enumerates them, excluding "." and "..". An
	// error is returned if enumeration cannot be started or fails partway.
	ReadDir(path string) ([]string, error)

	// Open opens a regular file for reading.
	Open(path string) (io.ReadCloser, error)

	// Readlink returns the raw target of a symbolic link.
	Readlink(path string) (string, error)

	// Close releases resources held by this source.
	Close() error
}
