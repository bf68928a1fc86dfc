package engine

import (
	"bytes"
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/rdigest/internal/stats"
)

func newTestWalker(src *fakeSource, cfg Config) *walker {
	if cfg.Algorithm == "" {
		cfg.Algorithm = SHA1
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	return &walker{cfg: cfg, src: src}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"", SHA1},
		{"sha1", SHA1},
		{"SHA1", SHA1},
		{" blake3 ", BLAKE3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAlgorithm("md5")
	assert.Error(t, err)
}

func TestAlgorithmLabelsAndSizes(t *testing.T) {
	assert.Equal(t, "SHA1", SHA1.Label())
	assert.Equal(t, "BLAKE3", BLAKE3.Label())
	assert.Equal(t, 20, SHA1.New().Size())
	assert.Equal(t, 32, BLAKE3.New().Size())
}

func TestEmptyFileDigestWithoutRead(t *testing.T) {
	src := newFakeSource()
	n := src.file("empty", "")
	n.readErr = assert.AnError // any read attempt would fail

	w := newTestWalker(src, Config{})
	rec, err := w.computeDigest(context.Background(), "empty", 0)
	require.NoError(t, err)
	assert.Equal(t, emptySHA1, hex.EncodeToString(rec.Sum))
	assert.False(t, rec.IsSize())
	assert.Equal(t, []string{"empty"}, src.opens)
}

func TestQuickRecordIsSize(t *testing.T) {
	src := newFakeSource()
	w := newTestWalker(src, Config{Quick: true})

	rec, err := w.computeDigest(context.Background(), "anything", 42)
	require.NoError(t, err)
	assert.True(t, rec.IsSize())
	assert.Equal(t, int64(42), rec.Size)
	assert.Empty(t, src.opens)
}

func TestChunkSizeDoesNotChangeDigest(t *testing.T) {
	content := strings.Repeat("0123456789abcdef", 1000) + "tail"

	src := newFakeSource()
	src.file("f", content)

	var sums [][]byte
	for _, chunk := range []int{1, 7, 4096, DefaultChunkSize} {
		w := newTestWalker(src, Config{ChunkSize: chunk})
		rec, err := w.computeDigest(context.Background(), "f", int64(len(content)))
		require.NoError(t, err)
		sums = append(sums, rec.Sum)
		assert.Equal(t, int64(len(content)), w.cfg.Stats.Snapshot().BytesRead)
	}
	for _, s := range sums[1:] {
		assert.True(t, bytes.Equal(sums[0], s))
	}
	assert.Equal(t, sha1Hex(content), hex.EncodeToString(sums[0]))
}

func TestDigestReadsOnlyStatSize(t *testing.T) {
	// A file that grew after stat is digested up to the stat size.
	src := newFakeSource()
	src.file("f", "hello world")

	w := newTestWalker(src, Config{})
	rec, err := w.computeDigest(context.Background(), "f", 5)
	require.NoError(t, err)
	assert.Equal(t, sha1Hex("hello"), hex.EncodeToString(rec.Sum))
}

func TestShortReadMessage(t *testing.T) {
	src := newFakeSource()
	src.file("f", "abc")

	w := newTestWalker(src, Config{})
	_, err := w.computeDigest(context.Background(), "f", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRead)
	assert.Equal(t, "read error: f: short read, 3 of 10 bytes: unexpected EOF", err.Error())
}

func TestRateLimitedDigest(t *testing.T) {
	t.Run("digest unchanged", func(t *testing.T) {
		src := newFakeSource()
		src.file("f", strings.Repeat("x", 3000))

		w := newTestWalker(src, Config{Limiter: NewBWLimiter(1 << 20), ChunkSize: 512})
		rec, err := w.computeDigest(context.Background(), "f", 3000)
		require.NoError(t, err)
		assert.Equal(t, sha1Hex(strings.Repeat("x", 3000)), hex.EncodeToString(rec.Sum))
	})

	t.Run("cancelled context fails the read", func(t *testing.T) {
		src := newFakeSource()
		src.file("f", strings.Repeat("x", 4096))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		w := newTestWalker(src, Config{Limiter: NewBWLimiter(1024), ChunkSize: 1024})
		_, err := w.computeDigest(ctx, "f", 4096)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRead)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, w.cfg.Stats.Snapshot().BytesRead)
	})

	t.Run("cancel during a throttled file stops before the next chunk", func(t *testing.T) {
		src := newFakeSource()
		src.file("f", strings.Repeat("x", 4096))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		lim := NewBWLimiter(1024)
		w := newTestWalker(src, Config{Limiter: lim, ChunkSize: 1024})
		// The first chunk drains the burst; cancelling then leaves the
		// remaining chunks waiting on a dead context.
		src.nodes["f"].onOpen = func() {
			go func() {
				time.Sleep(50 * time.Millisecond)
				cancel()
			}()
		}
		_, err := w.computeDigest(ctx, "f", 4096)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, w.cfg.Stats.Snapshot().BytesRead, int64(4096))
	})
}
