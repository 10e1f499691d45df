package compdb

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps an #include directive to a file, the "way to resolve an
// include directive to a file" spec.md §1 assumes is given.
type Resolver interface {
	// Resolve searches for filename as seen from fromDir (the directory
	// containing the including file). Quoted includes search fromDir
	// first, then IncludeDirs, then SystemIncludeDirs, each in order;
	// angled includes search IncludeDirs then SystemIncludeDirs in order —
	// the same order Clang applies. isSystem reports whether the match came from a
	// SystemIncludeDirs entry.
	Resolve(fromDir, filename string, isAngled bool) (path string, isSystem bool, ok bool)

	// ForcedIncludeFiles returns the files named by this entry's -include
	// arguments, in the order they appear — the files Clang's predefines
	// buffer prepends to every translation unit.
	ForcedIncludeFiles() []string
}

// PathResolver is the concrete, filesystem-backed Resolver built from an
// Entry's compiler arguments.
type PathResolver struct {
	IncludeDirs       []string
	SystemIncludeDirs []string
	ForcedIncludes    []string

	// Exists reports whether path names a regular file. Overridable for
	// tests; defaults to an os.Stat check.
	Exists func(path string) bool
}

// NewPathResolver extracts -I, -isystem, and -include entries, in the
// order they appear, from a compile command's argument list.
func NewPathResolver(args []string) *PathResolver {
	r := &PathResolver{Exists: defaultExists}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-I" || arg == "-isystem" || arg == "-include":
			if i+1 >= len(args) {
				continue
			}
			dir := args[i+1]
			i++
			switch arg {
			case "-I":
				r.IncludeDirs = append(r.IncludeDirs, dir)
			case "-isystem":
				r.SystemIncludeDirs = append(r.SystemIncludeDirs, dir)
			case "-include":
				r.ForcedIncludes = append(r.ForcedIncludes, dir)
			}
		case strings.HasPrefix(arg, "-I") && len(arg) > 2:
			r.IncludeDirs = append(r.IncludeDirs, arg[2:])
		case strings.HasPrefix(arg, "-isystem") && len(arg) > len("-isystem"):
			r.SystemIncludeDirs = append(r.SystemIncludeDirs, arg[len("-isystem"):])
		}
	}
	return r
}

// ForcedIncludeFiles implements Resolver.
func (r *PathResolver) ForcedIncludeFiles() []string { return r.ForcedIncludes }

func defaultExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Resolve implements Resolver.
func (r *PathResolver) Resolve(fromDir, filename string, isAngled bool) (string, bool, bool) {
	if !isAngled {
		if p := filepath.Join(fromDir, filename); r.Exists(p) {
			return p, false, true
		}
		if p, ok := r.searchOrdered(r.IncludeDirs, filename); ok {
			return p, false, true
		}
		if p, ok := r.searchOrdered(r.SystemIncludeDirs, filename); ok {
			return p, true, true
		}
		return "", false, false
	}

	if p, ok := r.searchOrdered(r.IncludeDirs, filename); ok {
		return p, false, true
	}
	if p, ok := r.searchOrdered(r.SystemIncludeDirs, filename); ok {
		return p, true, true
	}
	return "", false, false
}

func (r *PathResolver) searchOrdered(dirs []string, filename string) (string, bool) {
	for _, d := range dirs {
		p := filepath.Join(d, filename)
		if r.Exists(p) {
			return p, true
		}
	}
	return "", false
}
