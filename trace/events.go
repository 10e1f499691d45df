package trace

// ResolvedFile identifies a file by its physical identity — a key stable
// across however many times the file is included, derived by the
// preprocessor/resolver collaborator from its resolved absolute path.
type ResolvedFile struct {
	Identity string
}

// IncludeEvent describes one `#include` directive as the preprocessor
// oracle encounters it.
type IncludeEvent struct {
	// FromLine is the 1-based spelling line of the directive in the
	// including file; 0 marks a driver-implanted forced include.
	FromLine int

	// Filename is the verbatim text inside the quotes or angle brackets.
	Filename string

	// IsAngled is true for `#include <...>`, false for `#include "..."`.
	IsAngled bool

	// Resolved is nil when the filename could not be located on any
	// search path (a missing include); otherwise it names the target's
	// physical identity.
	Resolved *ResolvedFile

	// RelativePath is, for an angled include, the path relative to the
	// search directory it was found under; for a quoted include, the
	// path relative to the including file's directory. It is used only to
	// derive File.Path, never to locate the file (that already happened
	// by the time this event is built).
	RelativePath string

	// IsSystem is true if the target was found via a system ("-isystem")
	// search path.
	IsSystem bool
}

// Oracle is the external preprocessor collaborator's query surface: the
// builder asks it for the two facts it cannot derive from the event
// stream alone.
type Oracle interface {
	// IsFileGuarded reports whether the preprocessor determined the file
	// (by physical identity) has an effective include guard — a
	// `#pragma once` or a whole-file `#ifndef`/`#define` wrapper with a
	// guard symbol unique to the file.
	IsFileGuarded(identity string) bool

	// TokenCount returns the preprocessor's cumulative token count so far,
	// monotonically increasing as the event stream progresses.
	TokenCount() int64

	// FileSize returns the file's on-disk byte size.
	FileSize(identity string) (float64, error)
}

// EventSink is the push-based interface the preprocessor oracle drives as
// it scans a translation unit. *Builder implements it.
type EventSink interface {
	SourceStart(path string)
	Enter(file ResolvedFile)
	Include(ev IncludeEvent)
	Exit(file ResolvedFile)
	Pragma(text string)
	MainFileEnd()
}
