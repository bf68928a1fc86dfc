package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/rdigest/internal/event"
	"github.com/bamsammich/rdigest/internal/filter"
	"github.com/bamsammich/rdigest/internal/manifest"
	"github.com/bamsammich/rdigest/internal/stats"
	"github.com/bamsammich/rdigest/internal/transport"
)

// Item is one top-level argument.
type Item struct {
	// Arg is the argument as given; it becomes the output name.
	Arg string
	// Path is the path on Source. Equal to Arg for local items.
	Path   string
	Source transport.Source
}

// Config describes a manifest run.
type Config struct {
	Items     []Item
	Manifest  *manifest.Writer
	Stats     *stats.Collector
	Events    chan<- event.Event // optional; sends block
	Algorithm Algorithm
	ChunkSize int
	Quick     bool
	Baseless  bool
	Strict    bool
	Filter    *filter.Chain
	Limiter   *rate.Limiter
}

// Result is the outcome of a run.
type Result struct {
	Stats stats.Snapshot
	Err   error
}

// Run writes the manifest for every item in order, blocking until done.
// Every failure is reported on cfg.Events as it happens; Result.Err is
// non-nil when the run must exit unsuccessfully.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = SHA1
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}

	items := normalizeItems(cfg.Items)
	if err := validateItems(cfg.Events, items); err != nil {
		return Result{Stats: cfg.Stats.Snapshot(), Err: err}
	}

	err := runItems(ctx, cfg, items)

	// Records already written stay in the manifest even when the run
	// stops early.
	if ferr := cfg.Manifest.Flush(); ferr != nil && !errors.Is(err, ErrWrite) {
		ferr = &EntryError{Kind: ErrWrite, Err: ferr}
		emitEvent(cfg.Events, event.Event{Type: event.EntryFailed, Error: ferr})
		if err == nil {
			err = ferr
		}
	}

	return Result{Stats: cfg.Stats.Snapshot(), Err: err}
}

func runItems(ctx context.Context, cfg Config, items []Item) error {
	for _, item := range items {
		emitEvent(cfg.Events, event.Event{Type: event.RootStarted, Path: item.Arg})

		w := &walker{cfg: cfg, src: item.Source}
		out := OutputName(item.Arg, item.Path, cfg.Baseless)
		if err := w.visit(ctx, item.Path, out, "", nil); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				err = fmt.Errorf("interrupted: %w", ctxErr)
				emitEvent(cfg.Events, event.Event{Type: event.EntryFailed, Error: err})
				return err
			}
			return unwrapAbort(err)
		}

		emitEvent(cfg.Events, event.Event{Type: event.RootComplete, Path: item.Arg})
	}
	return nil
}

func normalizeItems(in []Item) []Item {
	out := make([]Item, 0, len(in))
	for _, item := range in {
		if item.Arg == "" {
			continue
		}
		if item.Path == "" {
			item.Path = item.Arg
		}
		item.Arg = NormalizeArg(item.Arg)
		item.Path = NormalizeArg(item.Path)
		out = append(out, item)
	}
	return out
}

// validateItems checks that every item exists before anything is
// written, reporting each one that does not.
func validateItems(events chan<- event.Event, items []Item) error {
	var errs []error
	for _, item := range items {
		if _, err := item.Source.Lstat(item.Path); err != nil {
			ee := &EntryError{Kind: ErrArgumentMissing, Path: item.Arg, Err: err}
			emitEvent(events, event.Event{Type: event.EntryFailed, Path: item.Arg, Error: ee})
			errs = append(errs, ee)
		}
	}
	return errors.Join(errs...)
}

func emitEvent(ch chan<- event.Event, ev event.Event) {
	if ch == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	ch <- ev
}
