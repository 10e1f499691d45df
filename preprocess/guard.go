package preprocess

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

var (
	pragmaOnceRe = regexp.MustCompile(`^#\s*pragma\s+once\b`)
	ifndefRe     = regexp.MustCompile(`^#\s*ifndef\s+(\w+)\s*$`)
	defineRe     = regexp.MustCompile(`^#\s*define\s+(\w+)\b`)
	endifRe      = regexp.MustCompile(`^#\s*endif\b`)
)

// isGuarded reports whether src is wrapped in the classic #pragma once,
// or #ifndef GUARD / #define GUARD ... #endif, idiom — the two patterns
// an oracle needs to recognise to answer trace.Oracle's IsFileGuarded
// (spec.md §4.I: a second #include of a guarded file contributes no
// further tokens).
//
// This is deliberately a line-oriented check over the raw source rather
// than a tree-sitter node walk: tree-sitter-cpp folds an #ifndef/#endif
// pair and everything between them into a single preproc_ifdef node, so
// the opening and closing directives are not siblings the way a flat
// per-node scan would expect — the textual top-and-tail shape is both
// simpler and unambiguous to check directly.
func isGuarded(src []byte) bool {
	lines := significantLines(src)
	if len(lines) == 0 {
		return false
	}

	for _, line := range lines {
		if pragmaOnceRe.MatchString(line) {
			return true
		}
	}

	if len(lines) < 3 {
		return false
	}
	m := ifndefRe.FindStringSubmatch(lines[0])
	if m == nil {
		return false
	}
	guardName := m[1]
	dm := defineRe.FindStringSubmatch(lines[1])
	if dm == nil || dm[1] != guardName {
		return false
	}
	return endifRe.MatchString(lines[len(lines)-1])
}

// significantLines returns src's lines with leading/trailing blank lines
// and full-line "//" comments stripped, and each remaining line trimmed
// of surrounding whitespace.
func significantLines(src []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
