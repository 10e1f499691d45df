// Package trace turns an ordered preprocessor-event stream into the file
// dependency graph (graph.Graph), the one piece of the pipeline with real
// state: include-guard bookkeeping, cost accounting, pragma overrides, and
// header/source component pairing.
package trace

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/viant/includeguardian/graph"
)

// MissingInclude records an `#include` directive that could not be
// resolved to a file. It is data, not an error (spec.md §7).
type MissingInclude struct {
	From     string
	Filename string
	Line     int
}

// UnguardedFile records a file without an effective include guard that was
// included more than once.
type UnguardedFile struct {
	Identity string
	Path     string
}

// Result is everything the builder produced for one translation unit
// (or, after merging, for an entire compilation database).
type Result struct {
	Graph           *graph.Graph
	Sources         []graph.Handle
	MissingIncludes []MissingInclude
	UnguardedFiles  []UnguardedFile
}

// PrecompiledPredicate reports whether a logical file path should be
// treated as a precompiled header.
type PrecompiledPredicate func(path string) bool

// Option configures a Builder.
type Option func(*Builder)

// WithPrecompiledPredicate sets the predicate used to flag a freshly
// materialized node as a precompiled header.
func WithPrecompiledPredicate(p PrecompiledPredicate) Option {
	return func(b *Builder) { b.isPCH = p }
}

type fileState struct {
	handle   graph.Handle
	identity string
	// angledRel is this file's own logical path with its final component
	// dropped — the directory a subsequent quoted include nested under it
	// is joined against, so `<foo/bar.hpp>` then `"baz.hpp"` resolves to
	// foo/baz.hpp rather than foo/bar.hpp/baz.hpp.
	angledRel            string
	fullyProcessed       bool
	fileSizeOverridden   bool
	tokenCountOverridden bool
	visitCount           int
	unguardedReported    bool
}

// Builder implements EventSink, consuming one ordered event stream per
// translation unit and accumulating all of them into a single graph.Graph.
// It is not safe for concurrent use: the preprocessor collaborator is
// single-threaded per source, so sources are fed to the builder
// sequentially (spec.md §5).
type Builder struct {
	isPCH PrecompiledPredicate
	g     *graph.Graph

	// byIdentity maps a physical file identity to its builder state.
	byIdentity map[string]*fileState
	// stack is the "currently open files" stack S.
	stack []*fileState

	sources     []graph.Handle
	seenSource  map[graph.Handle]struct{}
	missing     []MissingInclude
	unguarded   []UnguardedFile
	currentFrom string // logical path of the currently-open file, for diagnostics
	oracle      Oracle
	err         error

	// accountedTokens is the preprocessor's cumulative token count as of
	// the last applyCosts call: a single global watermark, not one per
	// file, so that tokens spent inside a nested include are charged to
	// that include and never re-counted into an ancestor's delta.
	accountedTokens int64
}

var overrideFileSizeRe = regexp.MustCompile(`override_file_size\((\d+)\)`)
var overrideTokenCountRe = regexp.MustCompile(`override_token_count\((\d+)\)`)

// NewBuilder returns a Builder that queries oracle for guard and cost
// facts as it consumes events.
func NewBuilder(oracle Oracle, opts ...Option) *Builder {
	b := &Builder{
		g:          graph.New(),
		byIdentity: map[string]*fileState{},
		seenSource: map[graph.Handle]struct{}{},
		oracle:     oracle,
		isPCH:      func(string) bool { return false },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) top() *fileState {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

// SourceStart begins a new translation unit rooted at path. If this is the
// first time path is seen, a node is created and its handle added to the
// sources list exactly once (spec.md §9 open question).
func (b *Builder) SourceStart(path string) {
	st, ok := b.byIdentity[path]
	if !ok {
		h := b.g.AddNode(graph.Node{
			Path:          path,
			IsExternal:    false,
			IsPrecompiled: b.isPCH(path),
		})
		st = &fileState{handle: h, identity: path, angledRel: parentDir(path)}
		b.byIdentity[path] = st
		if _, seen := b.seenSource[h]; !seen {
			b.sources = append(b.sources, h)
			b.seenSource[h] = struct{}{}
		}
	}
	st.visitCount++
	// Each source gets its own preprocessor in the real oracle, so its
	// token counter starts back at whatever baseline that preprocessor
	// reports; resync the watermark rather than carrying over the
	// previous source's count.
	b.accountedTokens = b.oracle.TokenCount()
	b.stack = append(b.stack, st)
	b.currentFrom = path
}

// Enter pushes the already-materialized node for file onto the stack. It
// panics if file was never built by a prior Include — per spec.md §7 this
// indicates a bug in the calling oracle, not reportable data.
func (b *Builder) Enter(file ResolvedFile) {
	st, ok := b.byIdentity[file.Identity]
	if !ok {
		panic("trace: Enter for a file not already materialized by Include")
	}
	st.visitCount++
	b.stack = append(b.stack, st)
}

// Include records one `#include` directive seen in the current top of
// stack.
func (b *Builder) Include(ev IncludeEvent) {
	top := b.top()
	if top == nil {
		return
	}
	if top.fullyProcessed {
		return
	}
	if ev.Resolved == nil {
		b.missing = append(b.missing, MissingInclude{
			From:     b.g.Node(top.handle).Path,
			Filename: ev.Filename,
			Line:     ev.FromLine,
		})
		return
	}

	st, existed := b.byIdentity[ev.Resolved.Identity]
	logicalPath := b.logicalPath(top, ev)
	if !existed {
		isPCH := b.g.Node(top.handle).IsPrecompiled || b.isPCH(logicalPath)
		h := b.g.AddNode(graph.Node{
			Path:          logicalPath,
			IsExternal:    ev.IsSystem,
			IsPrecompiled: isPCH,
		})
		st = &fileState{handle: h, identity: ev.Resolved.Identity, angledRel: parentDir(logicalPath)}
		b.byIdentity[ev.Resolved.Identity] = st
	}

	isComponent := sameStem(b.g.Node(top.handle).Path, b.g.Node(st.handle).Path)
	isForced := ev.FromLine == 0
	edge := graph.Edge{
		Code:        formatDirective(ev),
		LineNumber:  ev.FromLine,
		IsRemovable: !(isComponent || isForced),
	}
	b.g.AddEdge(top.handle, st.handle, edge)

	if !b.g.Node(top.handle).IsExternal {
		b.g.Node(st.handle).InternalIncoming++
	}

	if isComponent {
		fromNode := b.g.Node(top.handle)
		toNode := b.g.Node(st.handle)
		if !fromNode.Component.Valid() && !toNode.Component.Valid() {
			fromNode.Component = graph.NewComponent(st.handle)
			toNode.Component = graph.NewComponent(top.handle)
		}
	}
}

// Exit closes the file at the top of the stack. A guarded file absorbs its
// own trailing tokens before it is popped; an unguarded one is popped first
// and its trailing tokens fall through to whatever included it, mirroring
// the preprocessor's own inability to skip a second read of an unguarded
// body (spec.md §4.D).
func (b *Builder) Exit(file ResolvedFile) {
	st := b.top()
	if st == nil {
		return
	}
	guarded := b.oracle.IsFileGuarded(file.Identity)
	if guarded {
		st.fullyProcessed = true
		err := b.applyCosts(st, file.Identity)
		b.stack = b.stack[:len(b.stack)-1]
		b.recordErr(err)
		return
	}

	b.stack = b.stack[:len(b.stack)-1]
	if st.visitCount > 1 && !st.unguardedReported {
		st.unguardedReported = true
		b.unguarded = append(b.unguarded, UnguardedFile{Identity: file.Identity, Path: b.g.Node(st.handle).Path})
	}
	if newTop := b.top(); newTop != nil {
		b.recordErr(b.applyCosts(newTop, file.Identity))
	}
}

func (b *Builder) recordErr(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// Pragma recognises `#pragma override_file_size(N)` and
// `#pragma override_token_count(N)`; any other text, or a malformed
// numeric literal, is silently ignored (spec.md §7).
func (b *Builder) Pragma(text string) {
	top := b.top()
	if top == nil {
		return
	}
	node := b.g.Node(top.handle)
	if m := overrideFileSizeRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			node.UnderlyingCost.Bytes = float64(n)
			top.fileSizeOverridden = true
		}
	}
	if m := overrideTokenCountRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			node.UnderlyingCost.Tokens = n
			top.tokenCountOverridden = true
		}
	}
}

// MainFileEnd applies any remaining accrued cost to the bottom of the
// stack (the root translation unit) and tears the stack down.
func (b *Builder) MainFileEnd() {
	if len(b.stack) == 0 {
		return
	}
	root := b.stack[0]
	b.recordErr(b.applyCosts(root, root.identity))
	b.stack = nil
}

// Result returns everything accumulated so far. It may be called after
// each translation unit or once at the end of the whole build.
func (b *Builder) Result() *Result {
	return &Result{
		Graph:           b.g,
		Sources:         b.sources,
		MissingIncludes: b.missing,
		UnguardedFiles:  b.unguarded,
	}
}

// Err returns the first catastrophic builder failure encountered (e.g. an
// I/O error reading a file's size), or nil. Per spec.md §7 this is the
// "Builder failure" error kind: the caller should report it and exit
// non-zero, unlike MissingIncludes/UnguardedFiles which are data.
func (b *Builder) Err() error {
	return b.err
}

// applyCosts folds the token delta accrued since the last applyCosts call,
// plus finishedIdentity's on-disk byte size, into target's underlying cost
// — suppressed per-field when an override pragma already set that field on
// target. It is called exactly at file-exit boundaries (spec.md §4.D): for
// a guarded file, target is the file itself, called before it is popped;
// for an unguarded one, target is the includer exposed after the pop. The
// single b.accountedTokens watermark, reset on every call, is what keeps a
// nested include's tokens from being recounted into an ancestor's delta.
func (b *Builder) applyCosts(target *fileState, finishedIdentity string) error {
	targetNode := b.g.Node(target.handle)
	if !target.tokenCountOverridden {
		delta := b.oracle.TokenCount() - b.accountedTokens
		targetNode.UnderlyingCost.Tokens += delta
	}
	b.accountedTokens = b.oracle.TokenCount()
	if !target.fileSizeOverridden {
		size, err := b.oracle.FileSize(finishedIdentity)
		if err != nil {
			return errors.Wrapf(err, "trace: reading file size for %s", finishedIdentity)
		}
		targetNode.UnderlyingCost.Bytes += size
	}
	return nil
}

func (b *Builder) logicalPath(top *fileState, ev IncludeEvent) string {
	if ev.IsAngled {
		return normalize(ev.RelativePath)
	}
	base := top.angledRel
	if base == "" {
		return normalize(ev.RelativePath)
	}
	return normalize(path.Join(base, ev.RelativePath))
}

func normalize(p string) string {
	p = filepathToSlash(p)
	return path.Clean(p)
}

// parentDir returns the directory portion of p's normalized form — the
// value seeded into a new node's angledRel, mirroring build_graph.cpp's
// `.parent_path()` on the same joined-and-normalized path. A relative
// path with no directory component normalizes to "." here, which Join
// treats identically to "" in logicalPath.
func parentDir(p string) string {
	return path.Dir(normalize(p))
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func sameStem(a, b string) bool {
	return stem(a) == stem(b) && stem(a) != ""
}

func stem(p string) string {
	base := path.Base(normalize(p))
	if idx := strings.LastIndex(base, "."); idx > 0 {
		return base[:idx]
	}
	return base
}

func formatDirective(ev IncludeEvent) string {
	if ev.IsAngled {
		return "<" + ev.Filename + ">"
	}
	return `"` + ev.Filename + `"`
}
