package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bamsammich/rdigest/internal/event"
	"github.com/bamsammich/rdigest/internal/stats"
)

const (
	progressInterval = 5 * time.Second
	sparklineWidth   = 20
)

// diagWriter prints "<prog>: <message>" lines.
type diagWriter struct {
	w     io.Writer
	prog  string
	theme *theme
}

func (d *diagWriter) line(msg string) {
	fmt.Fprintf(d.w, "%s: %s\n", d.prog, msg)
}

func (d *diagWriter) failure(ev event.Event) {
	msg := "unknown error"
	if ev.Error != nil {
		msg = ev.Error.Error()
	}
	fmt.Fprintf(d.w, "%s: %s\n", d.theme.err.Render(d.prog), msg)
}

// errorsPresenter reports failures only.
type errorsPresenter struct {
	diag *diagWriter
}

func (p *errorsPresenter) Run(events <-chan event.Event) error {
	for ev := range events {
		if ev.Type == event.EntryFailed {
			p.diag.failure(ev)
		}
	}
	return nil
}

func (p *errorsPresenter) Summary() string { return "" }

// verbosePresenter also names each top-level item as it starts and, on a
// terminal, prints periodic progress.
type verbosePresenter struct {
	diag     *diagWriter
	stats    *stats.Collector
	progress bool
}

func (p *verbosePresenter) Run(events <-chan event.Event) error {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	var progressC <-chan time.Time
	if p.progress {
		progressTicker := time.NewTicker(progressInterval)
		defer progressTicker.Stop()
		progressC = progressTicker.C
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-secTicker.C:
			p.stats.Tick()
		case <-progressC:
			p.printProgress()
		}
	}
}

func (p *verbosePresenter) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.RootStarted:
		p.diag.line(ev.Path)
	case event.EntryFailed:
		p.diag.failure(ev)
	case event.RootComplete, event.FileDigested, event.SymlinkRead,
		event.DirEmpty, event.EntryExcluded:
		// counted by the engine
	}
}

func (p *verbosePresenter) printProgress() {
	snap := p.stats.Snapshot()
	speed := p.stats.RollingSpeed(5)

	parts := []string{
		FormatCount(snap.Files) + " files",
		FormatBytes(snap.BytesRead) + " read",
		FormatRate(speed),
		FormatDuration(snap.Elapsed),
		p.diag.theme.accent.Render(Sparkline(p.stats.SpeedHistory(sparklineWidth), sparklineWidth)),
	}
	if snap.Failed > 0 {
		parts = append(parts, p.diag.theme.err.Render(FormatCount(snap.Failed)+" errors"))
	}
	p.diag.line(p.diag.theme.muted.Render("progress:") + " " + strings.Join(parts, "  "))
}

func (p *verbosePresenter) Summary() string {
	return p.diag.prog + ": " + p.diag.theme.accent.Render(p.stats.Snapshot().String())
}
