package engine

import (
	"context"
	"crypto/sha1" //nolint:gosec // SHA-1 is the manifest format's digest, not a security boundary
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/zeebo/blake3"
)

// DefaultChunkSize is the read size used when streaming file content.
const DefaultChunkSize = 1 << 20

// Algorithm names a content digest.
type Algorithm string

const (
	SHA1   Algorithm = "sha1"
	BLAKE3 Algorithm = "blake3"
)

// ParseAlgorithm resolves a user-supplied algorithm name. The empty
// string selects SHA1.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "", SHA1:
		return SHA1, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("unknown digest algorithm %q (use sha1 or blake3)", s)
	}
}

// New returns a fresh streaming hasher.
func (a Algorithm) New() hash.Hash {
	if a == BLAKE3 {
		return blake3.New()
	}
	return sha1.New() //nolint:gosec // see import
}

// Label is the record tag written to the manifest.
func (a Algorithm) Label() string {
	if a == BLAKE3 {
		return "BLAKE3"
	}
	return "SHA1"
}

// DigestRecord is either a size (quick mode) or a content digest.
type DigestRecord struct {
	Size int64
	Sum  []byte // nil in quick mode
}

// IsSize reports whether the record carries only a size.
func (r DigestRecord) IsSize() bool { return r.Sum == nil }

// computeDigest produces the record for the regular file at path, whose
// size was obtained by the caller's stat.
func (w *walker) computeDigest(ctx context.Context, path string, size int64) (DigestRecord, error) {
	if w.cfg.Quick {
		return DigestRecord{Size: size}, nil
	}

	h := w.cfg.Algorithm.New()

	rc, err := w.src.Open(path)
	if err != nil {
		return DigestRecord{}, &EntryError{Kind: ErrOpen, Path: path, Err: err}
	}

	if size > 0 {
		if err := w.stream(ctx, h, rc, size); err != nil {
			rc.Close()
			return DigestRecord{}, &EntryError{Kind: ErrRead, Path: path, Err: err}
		}
	}

	// Content was read, but a failed close still fails the entry.
	if err := rc.Close(); err != nil {
		return DigestRecord{}, &EntryError{Kind: ErrClose, Path: path, Err: err}
	}

	return DigestRecord{Size: size, Sum: h.Sum(nil)}, nil
}

// stream feeds exactly size bytes of r into h in chunks. Running out of
// data before size bytes is a short read.
func (w *walker) stream(ctx context.Context, h hash.Hash, r io.Reader, size int64) error {
	if w.cfg.Limiter != nil {
		r = newRateLimitedReader(ctx, r, w.cfg.Limiter)
	}

	buf := make([]byte, min(int64(w.cfg.ChunkSize), size))
	remaining := size
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(int64(len(buf)), remaining)
		got, err := io.ReadFull(r, buf[:n])
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return fmt.Errorf("short read, %d of %d bytes: %w",
					size-remaining+int64(got), size, io.ErrUnexpectedEOF)
			}
			return err
		}
		h.Write(buf[:n])
		w.cfg.Stats.AddBytesRead(n)
		remaining -= n
	}
	return nil
}
