package compdb

// Adjuster rewrites an Entry's argument list before it reaches the
// preprocessor oracle — e.g. to inject a forced include or an extra
// search directory the driver's CLI flags asked for. Adjusters compose in
// the order the driver applies them.
type Adjuster func(Entry) Entry

// Apply runs every adjuster over e in order, returning the final Entry.
func Apply(e Entry, adjusters ...Adjuster) Entry {
	for _, adjust := range adjusters {
		e = adjust(e)
	}
	return e
}

// WithForcedIncludes appends `-include <path>` for every file, so it is
// processed as if it appeared at the top of every translation unit
// (matching Clang's `-include` / MSVC's `/FI`).
func WithForcedIncludes(files ...string) Adjuster {
	return func(e Entry) Entry {
		for _, f := range files {
			e.Arguments = append(e.Arguments, "-include", f)
		}
		return e
	}
}

// WithIncludeDirs appends `-I <dir>` for every quoted/angled search
// directory, in the order they should be searched.
func WithIncludeDirs(dirs ...string) Adjuster {
	return func(e Entry) Entry {
		for _, d := range dirs {
			e.Arguments = append(e.Arguments, "-I", d)
		}
		return e
	}
}

// WithSystemIncludeDirs appends `-isystem <dir>` for every system search
// directory — files found under one of these are marked external.
func WithSystemIncludeDirs(dirs ...string) Adjuster {
	return func(e Entry) Entry {
		for _, d := range dirs {
			e.Arguments = append(e.Arguments, "-isystem", d)
		}
		return e
	}
}

// WithExtraArgs appends args to the end of the argument list.
func WithExtraArgs(args ...string) Adjuster {
	return func(e Entry) Entry {
		e.Arguments = append(e.Arguments, args...)
		return e
	}
}

// WithExtraArgsBefore prepends args to the front of the argument list —
// useful for flags a later, entry-specific flag should be free to
// override (since most compiler drivers apply "last flag wins").
func WithExtraArgsBefore(args ...string) Adjuster {
	return func(e Entry) Entry {
		e.Arguments = append(append([]string{}, args...), e.Arguments...)
		return e
	}
}
