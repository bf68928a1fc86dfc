package transport

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Compile-time interface check.
var _ Source = (*SFTPSource)(nil)

// SFTPSource reads a remote tree over SFTP.
type SFTPSource struct {
	client *sftp.Client
	ssh    *ssh.Client
}

// NewSFTPSource creates a source backed by an SFTP session on sshClient.
// The source owns sshClient; the caller must call Close when done.
func NewSFTPSource(sshClient *ssh.Client) (*SFTPSource, error) {
	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, fmt.Errorf("sftp client: %w", err)
	}
	return &SFTPSource{client: client, ssh: sshClient}, nil
}

func (s *SFTPSource) Lstat(path string) (FileEntry, error) {
	info, err := s.client.Lstat(path)
	if err != nil {
		return FileEntry{}, err
	}
	mode := rawModeFromInfo(info)
	return FileEntry{
		Kind: kindFromMode(mode),
		Size: info.Size(),
		Mode: mode,
	}, nil
}

func (s *SFTPSource) ReadDir(path string) ([]string, error) {
	infos, err := s.client.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if name := info.Name(); name != "." && name != ".." {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *SFTPSource) Open(path string) (io.ReadCloser, error) {
	f, err := s.client.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *SFTPSource) Readlink(path string) (string, error) {
	target, err := s.client.ReadLink(path)
	if err != nil {
		return "", err
	}
	if len(target) >= linkBufferSize {
		return "", ErrLinkTooLong
	}
	return target, nil
}

func (s *SFTPSource) Close() error {
	err := s.client.Close()
	if sshErr := s.ssh.Close(); sshErr != nil && err == nil {
		err = sshErr
	}
	return err
}

// rawModeFromInfo recovers POSIX st_mode bits from an SFTP attribute set,
// falling back to translating the Go file mode.
func rawModeFromInfo(info os.FileInfo) uint32 {
	if st, ok := info.Sys().(*sftp.FileStat); ok {
		return st.Mode
	}
	return posixMode(info.Mode())
}

// posixMode converts an os.FileMode to POSIX st_mode bits.
func posixMode(m os.FileMode) uint32 {
	const (
		ifreg  = 0o100000
		ifdir  = 0o040000
		iflnk  = 0o120000
		ifchr  = 0o020000
		ifblk  = 0o060000
		ififo  = 0o010000
		ifsock = 0o140000
	)
	perm := uint32(m.Perm())
	switch {
	case m.IsRegular():
		return ifreg | perm
	case m.IsDir():
		return ifdir | perm
	case m&os.ModeSymlink != 0:
		return iflnk | perm
	case m&os.ModeCharDevice != 0:
		return ifchr | perm
	case m&os.ModeDevice != 0:
		return ifblk | perm
	case m&os.ModeNamedPipe != 0:
		return ififo | perm
	case m&os.ModeSocket != 0:
		return ifsock | perm
	default:
		return perm
	}
}
