package engine

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/bamsammich/rdigest/internal/transport"
)

// Error kinds. Every failure reported by the engine matches exactly one
// of these with errors.Is.
var (
	ErrStat            = errors.New("stat error")
	ErrOpen            = errors.New("open error")
	ErrRead            = errors.New("read error")
	ErrClose           = errors.New("close error")
	ErrReadlink        = errors.New("readlink error")
	ErrLinkTooLong     = transport.ErrLinkTooLong
	ErrListDir         = errors.New("readdir error")
	ErrUnsupportedType = errors.New("unexpected file type")
	ErrWrite           = errors.New("write error")
	ErrArgumentMissing = errors.New("file or directory does not exist")
)

// EntryError describes a failure to produce a record for one path.
type EntryError struct {
	Kind error  // one of the Err* kinds above
	Path string // actual path
	Mode uint32 // raw mode bits, set for ErrUnsupportedType
	Err  error  // underlying cause, may be nil
}

func (e *EntryError) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if errors.Is(e.Kind, ErrUnsupportedType) {
		msg += fmt.Sprintf(" (mode %#o)", e.Mode)
	}
	if e.Err != nil {
		msg += ": " + causeText(e.Err)
	}
	return msg
}

func (e *EntryError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// causeText strips the operation and path from *fs.PathError so the
// path is not repeated in the message.
func causeText(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}

// abortError carries a failure that stops the whole run. The wrapped
// error has already been reported when it was produced.
type abortError struct {
	err error
}

func (e *abortError) Error() string { return e.err.Error() }
func (e *abortError) Unwrap() error { return e.err }

func isAbort(err error) bool {
	var a *abortError
	return errors.As(err, &a)
}

// unwrapAbort returns the reported error inside an abortError chain.
func unwrapAbort(err error) error {
	var a *abortError
	for errors.As(err, &a) {
		err = a.err
	}
	return err
}
