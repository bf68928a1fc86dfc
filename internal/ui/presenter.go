package ui

import (
	"io"

	"github.com/bamsammich/rdigest/internal/config"
	"github.com/bamsammich/rdigest/internal/event"
	"github.com/bamsammich/rdigest/internal/stats"
)

// Presenter consumes engine events and writes diagnostics.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan event.Event) error
	// Summary returns the end-of-run line, or "" when none is due.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	ErrWriter io.Writer
	Prog      string // prefix for every line
	Stats     *stats.Collector
	Theme     config.Theme
	IsTTY     bool
	Verbose   bool
}

// NewPresenter creates the presenter for the configured verbosity.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	d := &diagWriter{
		w:     cfg.ErrWriter,
		prog:  cfg.Prog,
		theme: newTheme(cfg.ErrWriter, cfg.Theme),
	}
	if !cfg.Verbose {
		return &errorsPresenter{diag: d}
	}
	return &verbosePresenter{diag: d, stats: cfg.Stats, progress: cfg.IsTTY}
}
