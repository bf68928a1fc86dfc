package engine

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/bamsammich/rdigest/internal/transport"
)

// fakeNode is one entry of an in-memory tree.
type fakeNode struct {
	kind   transport.Kind
	data   []byte
	size   int64 // reported size; defaults to len(data)
	target string
	mode   uint32

	lstatErr    error
	readDirErr  error
	openErr     error
	readErr     error // returned after data is exhausted
	closeErr    error
	readlinkErr error

	onOpen func() // called when the file is opened
}

// fakeSource serves a tree of fakeNodes keyed by path. ReadDir returns
// children in a shuffled order.
type fakeSource struct {
	mu    sync.Mutex
	nodes map[string]*fakeNode
	rng   *rand.Rand
	opens  []string
	lstats map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		nodes:  make(map[string]*fakeNode),
		lstats: make(map[string]int),
		rng:   rand.New(rand.NewPCG(1, 2)),
	}
}

func (s *fakeSource) dir(path string) *fakeNode {
	n := &fakeNode{kind: transport.Directory, mode: 0o40755}
	s.nodes[path] = n
	return n
}

func (s *fakeSource) file(path, content string) *fakeNode {
	n := &fakeNode{kind: transport.Regular, data: []byte(content), size: int64(len(content)), mode: 0o100644}
	s.nodes[path] = n
	return n
}

func (s *fakeSource) symlink(path, target string) *fakeNode {
	n := &fakeNode{kind: transport.Symlink, target: target, mode: 0o120777}
	s.nodes[path] = n
	return n
}

func (s *fakeSource) other(path string, mode uint32) *fakeNode {
	n := &fakeNode{kind: transport.Other, mode: mode}
	s.nodes[path] = n
	return n
}

var errNotExist = errors.New("no such file or directory")

func (s *fakeSource) Lstat(path string) (transport.FileEntry, error) {
	s.mu.Lock()
	s.lstats[path]++
	s.mu.Unlock()

	n, ok := s.nodes[path]
	if !ok {
		return transport.FileEntry{}, errNotExist
	}
	if n.lstatErr != nil {
		return transport.FileEntry{}, n.lstatErr
	}
	return transport.FileEntry{Kind: n.kind, Size: n.size, Mode: n.mode}, nil
}

func (s *fakeSource) ReadDir(path string) ([]string, error) {
	n, ok := s.nodes[path]
	if !ok {
		return nil, errNotExist
	}
	if n.readDirErr != nil {
		return nil, n.readDirErr
	}

	prefix := path + "/"
	if strings.HasSuffix(path, "/") {
		prefix = path
	}
	var names []string
	for p := range s.nodes {
		rest, ok := strings.CutPrefix(p, prefix)
		if ok && rest != "" && !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
	}
	s.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	return names, nil
}

func (s *fakeSource) Open(path string) (io.ReadCloser, error) {
	s.mu.Lock()
	s.opens = append(s.opens, path)
	s.mu.Unlock()

	n, ok := s.nodes[path]
	if !ok {
		return nil, errNotExist
	}
	if n.openErr != nil {
		return nil, n.openErr
	}
	if n.onOpen != nil {
		n.onOpen()
	}
	return &fakeFile{r: bytes.NewReader(n.data), readErr: n.readErr, closeErr: n.closeErr}, nil
}

func (s *fakeSource) Readlink(path string) (string, error) {
	n, ok := s.nodes[path]
	if !ok {
		return "", errNotExist
	}
	if n.readlinkErr != nil {
		return "", n.readlinkErr
	}
	return n.target, nil
}

func (s *fakeSource) Close() error { return nil }

type fakeFile struct {
	r        *bytes.Reader
	readErr  error
	closeErr error
}

func (f *fakeFile) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err == io.EOF && f.readErr != nil {
		return n, f.readErr
	}
	return n, err
}

func (f *fakeFile) Close() error { return f.closeErr }

// failingWriter accepts limit bytes, then fails every write.
type failingWriter struct {
	buf   bytes.Buffer
	limit int
}

var errDiskFull = errors.New("no space left on device")

func (w *failingWriter) Write(p []byte) (int, error) {
	room := w.limit - w.buf.Len()
	if room <= 0 {
		return 0, errDiskFull
	}
	if len(p) > room {
		w.buf.Write(p[:room])
		return room, errDiskFull
	}
	return w.buf.Write(p)
}
