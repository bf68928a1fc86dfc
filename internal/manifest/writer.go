// Package manifest renders manifest records and manages the output sink.
package manifest

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
)

// Writer renders one newline-terminated record per call. The first write
// or flush error is sticky: later calls are no-ops and Err reports it.
type Writer struct {
	bw  *bufio.Writer
	err error
}

// NewWriter creates a Writer on w. Output is buffered; call Flush before
// closing w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// WriteSize writes a SIZE record.
func (w *Writer) WriteSize(path string, size int64) {
	w.record("SIZE", path, strconv.FormatInt(size, 10))
}

// WriteDigest writes a content digest record tagged with label (e.g. SHA1).
// sum is rendered as lowercase hex, two digits per byte.
func (w *Writer) WriteDigest(label, path string, sum []byte) {
	w.record(label, path, hex.EncodeToString(sum))
}

// WriteSymlink writes a SYMLINK record with the raw link target.
func (w *Writer) WriteSymlink(path, target string) {
	w.record("SYMLINK", path, target)
}

// WriteEmptyDirectory writes an EMPTY_DIRECTORY record.
func (w *Writer) WriteEmptyDirectory(path string) {
	w.write("EMPTY_DIRECTORY(", path, ")\n")
}

// Err returns the first error encountered while writing, if any.
func (w *Writer) Err() error {
	return w.err
}

// Flush writes any buffered records to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.bw.Flush()
	return w.err
}

func (w *Writer) record(tag, path, value string) {
	w.write(tag, "(", path, ")= ", value, "\n")
}

func (w *Writer) write(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		_, w.err = w.bw.WriteString(p)
	}
}
