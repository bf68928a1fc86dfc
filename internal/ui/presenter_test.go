package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/rdigest/internal/config"
	"github.com/bamsammich/rdigest/internal/event"
	"github.com/bamsammich/rdigest/internal/stats"
)

func runPresenter(t *testing.T, p Presenter, evs ...event.Event) {
	t.Helper()
	ch := make(chan event.Event, len(evs))
	for _, ev := range evs {
		ch <- ev
	}
	close(ch)
	require.NoError(t, p.Run(ch))
}

func TestErrorsPresenterPrintsFailuresOnly(t *testing.T) {
	var errOut bytes.Buffer
	p := NewPresenter(Config{ErrWriter: &errOut, Prog: "rdigest", Stats: stats.NewCollector()})

	runPresenter(t, p,
		event.Event{Type: event.RootStarted, Path: "d"},
		event.Event{Type: event.FileDigested, Path: "d/a", Size: 3},
		event.Event{Type: event.EntryFailed, Path: "d/b", Error: errors.New("open error: d/b: permission denied")},
		event.Event{Type: event.RootComplete, Path: "d"},
	)

	assert.Equal(t, "rdigest: open error: d/b: permission denied\n", errOut.String())
	assert.Empty(t, p.Summary())
}

func TestVerbosePresenterNamesItems(t *testing.T) {
	var errOut bytes.Buffer
	collector := stats.NewCollector()
	p := NewPresenter(Config{ErrWriter: &errOut, Prog: "rdigest", Stats: collector, Verbose: true})

	runPresenter(t, p,
		event.Event{Type: event.RootStarted, Path: "first"},
		event.Event{Type: event.EntryExcluded, Path: "first/skip"},
		event.Event{Type: event.RootStarted, Path: "/abs/second"},
		event.Event{Type: event.EntryFailed, Path: "x"},
	)

	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	assert.Equal(t, []string{
		"rdigest: first",
		"rdigest: /abs/second",
		"rdigest: unknown error",
	}, lines)
}

func TestVerboseSummary(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddBytes(42)
	collector.AddFiles(2)
	collector.AddSymlinks(1)

	p := NewPresenter(Config{ErrWriter: &bytes.Buffer{}, Prog: "rdigest", Stats: collector, Verbose: true})
	assert.Equal(t, "rdigest: Total bytes=42, files=2, symlinks=1 (0s)", p.Summary())
}

func TestProgressLine(t *testing.T) {
	var errOut bytes.Buffer
	collector := stats.NewCollector()
	collector.AddFiles(1200)
	collector.AddBytesRead(2048)
	collector.AddFailed(1)
	collector.Tick()

	p := &verbosePresenter{
		diag:  &diagWriter{w: &errOut, prog: "rdigest", theme: newTheme(&errOut, config.Theme{})},
		stats: collector,
	}
	p.printProgress()

	out := errOut.String()
	assert.True(t, strings.HasPrefix(out, "rdigest: progress: 1,200 files  2.0 KiB read"))
	assert.Contains(t, out, "1 errors")
	assert.True(t, strings.HasSuffix(out, "\n"))
}
