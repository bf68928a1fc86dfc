package manifest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Sink is the destination stream of a manifest.
type Sink struct {
	w       io.Writer
	closers []io.Closer
}

// Stdout returns a sink on standard output. Closing it does not close
// the process's stdout.
func Stdout() *Sink {
	return NewSink(os.Stdout)
}

// NewSink returns a sink on w that leaves w open when closed.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// OpenSink creates (or truncates) the file at path and returns a sink on
// it. Paths ending in ".zst" are zstd-compressed.
func OpenSink(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not open output file: %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return &Sink{w: f, closers: []io.Closer{f}}, nil
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	// Encoder first so its frame is flushed before the file closes.
	return &Sink{w: enc, closers: []io.Closer{enc, f}}, nil
}

func (s *Sink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Close closes every layer of the sink, returning the first error.
func (s *Sink) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
