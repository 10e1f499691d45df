// Package compdb loads a Clang-style compile_commands.json compilation
// database, lets a driver adjust each entry's argument list (forced
// includes, extra -I/-isystem directories, extra compiler flags), and
// resolves an #include directive to a file the same way Clang's search
// path order does (spec.md §4.J).
package compdb

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/viant/afs"
)

// Entry is one compile_commands.json record: the file compiled, the
// directory the compiler ran in, and its invocation arguments.
type Entry struct {
	File      string
	Directory string
	Arguments []string
}

// Database is the compilation database abstraction the rest of the tool
// depends on — a list of entries, one per translation unit.
type Database interface {
	Entries() []Entry
}

// rawEntry mirrors compile_commands.json's JSON shape: either an
// "arguments" array or a single "command" string (Clang accepts both).
type rawEntry struct {
	File      string   `json:"file"`
	Directory string   `json:"directory"`
	Arguments []string `json:"arguments"`
	Command   string   `json:"command"`
}

// JSONDatabase is a Database loaded from an on-disk (or remote, via
// viant/afs) compile_commands.json.
type JSONDatabase struct {
	entries []Entry
}

// LoadJSONDatabase downloads and parses the compile_commands.json at url
// using fs (pass afs.New(), or NewAFS(), in production code).
func LoadJSONDatabase(ctx context.Context, fs afs.Service, url string) (*JSONDatabase, error) {
	content, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "compdb: downloading %s", url)
	}

	entries, err := ParseEntries(content)
	if err != nil {
		return nil, errors.Wrapf(err, "compdb: parsing %s", url)
	}
	return &JSONDatabase{entries: entries}, nil
}

// ParseEntries decodes the JSON body of a compile_commands.json document,
// separated out from LoadJSONDatabase so the parsing logic is testable
// without a storage backend.
func ParseEntries(content []byte) ([]Entry, error) {
	var raw []rawEntry
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		args := r.Arguments
		if len(args) == 0 && r.Command != "" {
			args = splitCommand(r.Command)
		}
		entries = append(entries, Entry{
			File:      r.File,
			Directory: r.Directory,
			Arguments: args,
		})
	}
	return entries, nil
}

// Entries implements Database.
func (d *JSONDatabase) Entries() []Entry { return d.entries }

// NewAFS returns a ready-to-use afs.Service, the storage backend
// LoadJSONDatabase expects — a thin convenience wrapper so callers don't
// need their own import of viant/afs just to construct one.
func NewAFS() afs.Service { return afs.New() }

// splitCommand is a small, deliberately naive whitespace tokenizer for the
// legacy single-string "command" field — it does not attempt full shell
// quoting semantics, since every compile_commands.json generator this tool
// targets (CMake, Bazel's compdb extension) emits the "arguments" array
// form instead.
func splitCommand(command string) []string {
	var args []string
	var current []rune
	inQuote := rune(0)
	for _, r := range command {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current = append(current, r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case r == ' ' || r == '\t':
			if len(current) > 0 {
				args = append(args, string(current))
				current = nil
			}
		default:
			current = append(current, r)
		}
	}
	if len(current) > 0 {
		args = append(args, string(current))
	}
	return args
}

// AbsoluteFile returns e.File resolved against e.Directory when it is not
// already absolute.
func (e Entry) AbsoluteFile() string {
	if filepath.IsAbs(e.File) {
		return e.File
	}
	return filepath.Join(e.Directory, e.File)
}
