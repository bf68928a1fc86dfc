package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	RootStarted Type = iota + 1
	RootComplete
	FileDigested
	SymlinkRead
	DirEmpty
	EntryExcluded
	EntryFailed
)

var typeNames = [...]string{
	RootStarted:   "RootStarted",
	RootComplete:  "RootComplete",
	FileDigested:  "FileDigested",
	SymlinkRead:   "SymlinkRead",
	DirEmpty:      "DirEmpty",
	EntryExcluded: "EntryExcluded",
	EntryFailed:   "EntryFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single progress or diagnostic event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // actual path visited
	Size      int64  // file size, when known
	Error     error
}
