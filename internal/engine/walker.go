package engine

import (
	"context"
	"errors"
	"slices"

	"github.com/bamsammich/rdigest/internal/event"
	"github.com/bamsammich/rdigest/internal/transport"
)

// walker is the depth-first traversal over one top-level item.
type walker struct {
	cfg Config
	src transport.Source
}

// visit produces the records for actual (rendered as output) and, for a
// directory, everything below it. rel is the path relative to the
// top-level item ("" for the item itself). pre carries a stat already
// taken by the parent's filter pass; nil means visit stats actual itself.
//
// A failure is reported once, where it happens. The returned error is
// the entry's own failure, or an *abortError when the run must stop.
func (w *walker) visit(ctx context.Context, actual, output, rel string, pre *lstatResult) error {
	if err := ctx.Err(); err != nil {
		return &abortError{err: err}
	}

	if pre == nil {
		pre = w.lstat(actual)
	}
	err := w.visitEntry(ctx, actual, output, rel, pre)
	if isAbort(err) {
		return err
	}
	// Cancelled mid-read: the run stops here, reported as an interruption.
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil && errors.Is(err, ctxErr) {
		return &abortError{err: err}
	}
	if err != nil {
		w.fail(actual, err)
	}

	// A broken sink stops everything, however deep we are.
	if werr := w.cfg.Manifest.Err(); werr != nil {
		werr = &EntryError{Kind: ErrWrite, Path: actual, Err: werr}
		w.fail(actual, werr)
		return &abortError{err: werr}
	}
	return err
}

// lstatResult is the outcome of one non-following stat.
type lstatResult struct {
	entry transport.FileEntry
	err   error
}

func (w *walker) lstat(path string) *lstatResult {
	entry, err := w.src.Lstat(path)
	return &lstatResult{entry: entry, err: err}
}

func (w *walker) visitEntry(ctx context.Context, actual, output, rel string, st *lstatResult) error {
	if st.err != nil {
		return &EntryError{Kind: ErrStat, Path: actual, Err: st.err}
	}

	entry := st.entry
	switch entry.Kind {
	case transport.Regular:
		return w.visitFile(ctx, actual, output, entry.Size)
	case transport.Directory:
		return w.visitDir(ctx, actual, output, rel)
	case transport.Symlink:
		return w.visitSymlink(actual, output)
	default:
		return &EntryError{Kind: ErrUnsupportedType, Path: actual, Mode: entry.Mode}
	}
}

func (w *walker) visitFile(ctx context.Context, actual, output string, size int64) error {
	w.cfg.Stats.AddFiles(1)
	w.cfg.Stats.AddBytes(size)

	rec, err := w.computeDigest(ctx, actual, size)
	if err != nil {
		return err
	}

	if rec.IsSize() {
		w.cfg.Manifest.WriteSize(output, rec.Size)
	} else {
		w.cfg.Manifest.WriteDigest(w.cfg.Algorithm.Label(), output, rec.Sum)
	}
	w.emit(event.Event{Type: event.FileDigested, Path: actual, Size: size})
	return nil
}

func (w *walker) visitSymlink(actual, output string) error {
	w.cfg.Stats.AddSymlinks(1)

	target, err := w.src.Readlink(actual)
	if errors.Is(err, transport.ErrLinkTooLong) {
		return &EntryError{Kind: ErrLinkTooLong, Path: actual}
	}
	if err != nil {
		return &EntryError{Kind: ErrReadlink, Path: actual, Err: err}
	}

	w.cfg.Manifest.WriteSymlink(output, target)
	w.emit(event.Event{Type: event.SymlinkRead, Path: actual})
	return nil
}

// visitDir lists, sorts and recurses. Its result depends only on whether
// the listing succeeded: failed children are reported by their own visit
// and skipped, unless the failure aborts the run or strict mode is on.
func (w *walker) visitDir(ctx context.Context, actual, output, rel string) error {
	w.cfg.Stats.AddDirs(1)

	names, err := w.src.ReadDir(actual)
	if err != nil {
		return &EntryError{Kind: ErrListDir, Path: actual, Err: err}
	}

	// Byte-wise order, independent of enumeration order.
	slices.Sort(names)
	children := w.prune(actual, rel, names)

	if len(children) == 0 {
		w.cfg.Manifest.WriteEmptyDirectory(output)
		w.emit(event.Event{Type: event.DirEmpty, Path: actual})
		return nil
	}

	for _, c := range children {
		err := w.visit(ctx, joinPath(actual, c.name), joinPath(output, c.name), joinRel(rel, c.name), c.stat)
		if err == nil {
			continue
		}
		if isAbort(err) {
			return err
		}
		if w.cfg.Strict {
			return &abortError{err: err}
		}
	}
	return nil
}

// child is a directory entry that survived filtering. stat is set when
// the filter pass already classified it.
type child struct {
	name string
	stat *lstatResult
}

// prune drops children excluded by the filter chain. Children that
// cannot be classified are kept so their own visit reports the failure.
// The stat taken here is handed on to the child's visit.
func (w *walker) prune(actual, rel string, names []string) []child {
	children := make([]child, 0, len(names))
	if w.cfg.Filter == nil || w.cfg.Filter.Empty() {
		for _, name := range names {
			children = append(children, child{name: name})
		}
		return children
	}

	for _, name := range names {
		path := joinPath(actual, name)
		st := w.lstat(path)
		if st.err != nil || w.cfg.Filter.Match(joinRel(rel, name), st.entry.Kind == transport.Directory) {
			children = append(children, child{name: name, stat: st})
			continue
		}
		w.cfg.Stats.AddExcluded(1)
		w.emit(event.Event{Type: event.EntryExcluded, Path: path})
	}
	return children
}

func (w *walker) fail(path string, err error) {
	w.cfg.Stats.AddFailed(1)
	w.emit(event.Event{Type: event.EntryFailed, Path: path, Error: err})
}

func (w *walker) emit(ev event.Event) {
	emitEvent(w.cfg.Events, ev)
}
