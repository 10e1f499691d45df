// Package classify decides what role a physical file plays in a C/C++
// build from nothing but its path: source, header, precompiled header, or
// something to ignore entirely (spec.md §4.K).
package classify

import (
	"path/filepath"
	"strings"
)

// Kind is the role classify.Classify assigns to a file path.
type Kind int

const (
	// KindIgnore is anything that isn't a recognised source or header
	// extension — build scripts, READMEs, object files, and so on.
	KindIgnore Kind = iota
	// KindSource is a compiled translation unit.
	KindSource
	// KindHeader is an included-only file.
	KindHeader
	// KindPrecompiledHeader is a header additionally matched by one of the
	// caller's PCH glob patterns.
	KindPrecompiledHeader
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindHeader:
		return "header"
	case KindPrecompiledHeader:
		return "precompiled_header"
	default:
		return "ignore"
	}
}

var sourceExtensions = map[string]struct{}{
	".c": {}, ".cc": {}, ".cpp": {}, ".cxx": {}, ".m": {}, ".mm": {},
}

var headerExtensions = map[string]struct{}{
	".h": {}, ".hh": {}, ".hpp": {}, ".hxx": {}, ".inl": {}, ".ipp": {},
}

// Classify categorizes path by its extension, then, for headers, checks
// whether its base name matches any of pchPatterns (shell globs as
// understood by path/filepath.Match, e.g. "pch.hpp" or "stdafx.h").
func Classify(path string, pchPatterns []string) Kind {
	ext := strings.ToLower(filepath.Ext(path))

	if _, ok := sourceExtensions[ext]; ok {
		return KindSource
	}

	if _, ok := headerExtensions[ext]; ok {
		base := filepath.Base(path)
		for _, pattern := range pchPatterns {
			if matched, _ := filepath.Match(pattern, base); matched {
				return KindPrecompiledHeader
			}
		}
		return KindHeader
	}

	return KindIgnore
}
