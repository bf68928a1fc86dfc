package engine

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// NewBWLimiter creates a rate.Limiter that caps aggregate read throughput
// to bytesPerSec. The burst is the default chunk size so a full chunk can
// pass without being split, capped to the rate for very low limits.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := DefaultChunkSize
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// rateLimitedReader wraps an io.Reader and enforces a shared rate limit.
type rateLimitedReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

func newRateLimitedReader(ctx context.Context, r io.Reader, limiter *rate.Limiter) *rateLimitedReader {
	return &rateLimitedReader{r: r, limiter: limiter, ctx: ctx}
}

// Read never requests more than the limiter's burst, since WaitN rejects
// larger reservations. Tokens are taken before reading: a failed wait
// returns no data, so io.ReadFull cannot swallow the error.
func (rl *rateLimitedReader) Read(p []byte) (int, error) {
	if b := rl.limiter.Burst(); b > 0 && len(p) > b {
		p = p[:b]
	}
	if len(p) > 0 {
		if err := rl.limiter.WaitN(rl.ctx, len(p)); err != nil {
			return 0, err
		}
	}
	return rl.r.Read(p)
}
