package stats

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector accumulates run totals. The engine is the only writer; the
// presenter reads concurrently for progress lines, so counters are atomic.
type Collector struct {
	bytes     atomic.Int64
	files     atomic.Int64
	dirs      atomic.Int64
	symlinks  atomic.Int64
	failed    atomic.Int64
	excluded  atomic.Int64
	bytesRead atomic.Int64
	startTime time.Time

	// Ring buffer, written only by the presenter's Tick.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes read per tick
	ringIdx    int
	ringCount  int
	lastRead   int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddBytes(n int64)     { c.bytes.Add(n) }
func (c *Collector) AddFiles(n int64)     { c.files.Add(n) }
func (c *Collector) AddDirs(n int64)      { c.dirs.Add(n) }
func (c *Collector) AddSymlinks(n int64)  { c.symlinks.Add(n) }
func (c *Collector) AddFailed(n int64)    { c.failed.Add(n) }
func (c *Collector) AddExcluded(n int64)  { c.excluded.Add(n) }
func (c *Collector) AddBytesRead(n int64) { c.bytesRead.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	Bytes     int64 // sizes of regular files visited
	Files     int64
	Dirs      int64
	Symlinks  int64
	Failed    int64
	Excluded  int64
	BytesRead int64 // bytes actually streamed through a hasher
	Elapsed   time.Duration
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Bytes:     c.bytes.Load(),
		Files:     c.files.Load(),
		Dirs:      c.dirs.Load(),
		Symlinks:  c.symlinks.Load(),
		Failed:    c.failed.Load(),
		Excluded:  c.excluded.Load(),
		BytesRead: c.bytesRead.Load(),
		Elapsed:   c.Elapsed(),
	}
}

// Tick records the bytes read since the previous tick. Called once per
// second by the presenter.
func (c *Collector) Tick() {
	current := c.bytesRead.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastRead
	c.lastRead = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n ticks.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// SpeedHistory returns bytes/sec for up to the last n ticks, oldest first.
func (c *Collector) SpeedHistory(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	out := make([]float64, count)
	for i := range count {
		idx := (c.ringIdx - count + i + ringSize) % ringSize
		out[i] = float64(c.throughput[idx])
	}
	return out
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// String renders the end-of-run totals line. Entry counts that are zero
// are omitted; elapsed time is in whole seconds.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total bytes=%d", s.Bytes)
	if s.Files > 0 {
		fmt.Fprintf(&b, ", files=%d", s.Files)
	}
	if s.Dirs > 0 {
		fmt.Fprintf(&b, ", directories=%d", s.Dirs)
	}
	if s.Symlinks > 0 {
		fmt.Fprintf(&b, ", symlinks=%d", s.Symlinks)
	}
	fmt.Fprintf(&b, " (%ds)", int64(s.Elapsed/time.Second))
	return b.String()
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
