package transport

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// linkBufferSize is the platform path limit plus one byte, so a target
// that exactly fills the buffer can be told apart from one that fits.
const linkBufferSize = unix.PathMax + 1

// Compile-time interface check.
var _ Source = (*LocalSource)(nil)

// LocalSource reads from the local filesystem.
type LocalSource struct{}

// NewLocalSource creates a source for the local filesystem.
func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

func (*LocalSource) Lstat(path string) (FileEntry, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return FileEntry{}, &os.PathError{Op: "lstat", Path: path, Err: err}
	}
	mode := modeFromStat(&st)
	return FileEntry{
		Kind: kindFromMode(mode),
		Size: st.Size,
		Mode: mode,
	}, nil
}

func (*LocalSource) ReadDir(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	names, err := f.Readdirnames(-1)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return names, nil
}

func (*LocalSource) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (*LocalSource) Readlink(path string) (string, error) {
	buf := make([]byte, linkBufferSize)
	n, err := unix.Readlink(path, buf)
	if err != nil {
		return "", &os.PathError{Op: "readlink", Path: path, Err: err}
	}
	if n >= len(buf) {
		return "", ErrLinkTooLong
	}
	return string(buf[:n]), nil
}

func (*LocalSource) Close() error { return nil }

// kindFromMode maps raw st_mode type bits onto a Kind.
func kindFromMode(mode uint32) Kind {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return Regular
	case unix.S_IFDIR:
		return Directory
	case unix.S_IFLNK:
		return Symlink
	default:
		return Other
	}
}
