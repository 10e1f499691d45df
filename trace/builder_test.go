package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/trace"
)

// fakeOracle is a hand-fed preprocessor oracle for tests: a file is
// guarded only if guarded[identity] is true, and the token counter is advanced
// explicitly by the test as it narrates each file's own body being lexed.
type fakeOracle struct {
	guarded    map[string]bool
	sizes      map[string]float64
	cumulative int64
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{guarded: map[string]bool{}, sizes: map[string]float64{}}
}

func (f *fakeOracle) IsFileGuarded(identity string) bool { return f.guarded[identity] }
func (f *fakeOracle) TokenCount() int64                  { return f.cumulative }
func (f *fakeOracle) FileSize(identity string) (float64, error) {
	return f.sizes[identity], nil
}

// advance bumps the cumulative token counter by n, simulating the
// preprocessor having scanned n more tokens of body text.
func (f *fakeOracle) advance(n int64) { f.cumulative += n }

func findNode(g *graph.Graph, path string) *graph.Node {
	for h := 0; h < g.Len(); h++ {
		if n := g.Node(graph.Handle(h)); n.Path == path {
			return n
		}
	}
	return nil
}

// siblingHarness builds a → b, a → c where b and c are processed one after
// the other (Enter/Exit fully closing each before the next opens), so each
// file's own token count can be attributed without one bleeding into the
// next — the case the single global watermark is designed to get right.
func siblingHarness(t *testing.T) (*trace.Result, *fakeOracle) {
	t.Helper()
	oracle := newFakeOracle()
	oracle.guarded["a"] = true
	oracle.guarded["b"] = true
	oracle.guarded["c"] = true
	oracle.sizes["b"] = 200
	oracle.sizes["c"] = 2000

	b := trace.NewBuilder(oracle)
	b.SourceStart("a")
	b.Include(trace.IncludeEvent{FromLine: 1, Filename: "b.hpp", Resolved: &trace.ResolvedFile{Identity: "b"}, RelativePath: "b.hpp"})
	b.Enter(trace.ResolvedFile{Identity: "b"})
	oracle.advance(10)
	b.Exit(trace.ResolvedFile{Identity: "b"})

	b.Include(trace.IncludeEvent{FromLine: 2, Filename: "c.hpp", Resolved: &trace.ResolvedFile{Identity: "c"}, RelativePath: "c.hpp"})
	b.Enter(trace.ResolvedFile{Identity: "c"})
	oracle.advance(100)
	b.Exit(trace.ResolvedFile{Identity: "c"})

	b.MainFileEnd()
	return b.Result(), oracle
}

func TestSiblingIncludesGetOwnTokenCounts(t *testing.T) {
	res, _ := siblingHarness(t)
	assert.Equal(t, int64(10), findNode(res.Graph, "b.hpp").UnderlyingCost.Tokens)
	assert.Equal(t, int64(100), findNode(res.Graph, "c.hpp").UnderlyingCost.Tokens)
	assert.Equal(t, float64(200), findNode(res.Graph, "b.hpp").UnderlyingCost.Bytes)
	assert.Equal(t, float64(2000), findNode(res.Graph, "c.hpp").UnderlyingCost.Bytes)
	// a has no body tokens of its own in this fixture: nothing was advanced
	// before b was entered or after c exited.
	assert.Equal(t, int64(0), findNode(res.Graph, "a").UnderlyingCost.Tokens)
}

func TestUnguardedIncludeChargesTheIncluder(t *testing.T) {
	oracle := newFakeOracle()
	oracle.guarded["a"] = true
	// d is not guarded: its cost always falls through to whoever included it.
	oracle.guarded["d"] = false

	b := trace.NewBuilder(oracle)
	b.SourceStart("a")
	b.Include(trace.IncludeEvent{FromLine: 1, Filename: "d.hpp", Resolved: &trace.ResolvedFile{Identity: "d"}, RelativePath: "d.hpp"})
	b.Enter(trace.ResolvedFile{Identity: "d"})
	oracle.advance(7)
	b.Exit(trace.ResolvedFile{Identity: "d"})
	b.MainFileEnd()

	res := b.Result()
	assert.Equal(t, int64(7), findNode(res.Graph, "a").UnderlyingCost.Tokens)
	assert.Equal(t, int64(0), findNode(res.Graph, "d.hpp").UnderlyingCost.Tokens)
}

func TestUnguardedFileIncludedTwiceIsReported(t *testing.T) {
	oracle := newFakeOracle()
	oracle.guarded["a"] = true
	oracle.guarded["d"] = false

	b := trace.NewBuilder(oracle)
	b.SourceStart("a")
	b.Include(trace.IncludeEvent{FromLine: 1, Filename: "d.hpp", Resolved: &trace.ResolvedFile{Identity: "d"}, RelativePath: "d.hpp"})
	b.Enter(trace.ResolvedFile{Identity: "d"})
	b.Exit(trace.ResolvedFile{Identity: "d"})

	b.Include(trace.IncludeEvent{FromLine: 2, Filename: "d.hpp", Resolved: &trace.ResolvedFile{Identity: "d"}, RelativePath: "d.hpp"})
	b.Enter(trace.ResolvedFile{Identity: "d"})
	b.Exit(trace.ResolvedFile{Identity: "d"})
	b.MainFileEnd()

	res := b.Result()
	require.Len(t, res.UnguardedFiles, 1)
	assert.Equal(t, "d", res.UnguardedFiles[0].Identity)
}

func TestMissingIncludeIsRecordedNotFatal(t *testing.T) {
	oracle := newFakeOracle()
	oracle.guarded["a"] = true

	b := trace.NewBuilder(oracle)
	b.SourceStart("a")
	b.Include(trace.IncludeEvent{FromLine: 3, Filename: "nowhere.hpp"})
	b.MainFileEnd()

	res := b.Result()
	require.NoError(t, b.Err())
	require.Len(t, res.MissingIncludes, 1)
	assert.Equal(t, "nowhere.hpp", res.MissingIncludes[0].Filename)
	assert.Equal(t, 3, res.MissingIncludes[0].Line)
}

func TestPragmaOverrideTokenCountWins(t *testing.T) {
	oracle := newFakeOracle()
	oracle.guarded["a"] = true
	oracle.guarded["b"] = true

	b := trace.NewBuilder(oracle)
	b.SourceStart("a")
	b.Include(trace.IncludeEvent{FromLine: 1, Filename: "b.hpp", Resolved: &trace.ResolvedFile{Identity: "b"}, RelativePath: "b.hpp"})
	b.Enter(trace.ResolvedFile{Identity: "b"})
	b.Pragma("override_token_count(42)")
	oracle.advance(999)
	b.Exit(trace.ResolvedFile{Identity: "b"})
	b.MainFileEnd()

	res := b.Result()
	assert.Equal(t, int64(42), findNode(res.Graph, "b.hpp").UnderlyingCost.Tokens)
}

func TestSourceHandleEmittedExactlyOnce(t *testing.T) {
	oracle := newFakeOracle()
	oracle.guarded["a"] = true

	b := trace.NewBuilder(oracle)
	b.SourceStart("a")
	b.MainFileEnd()
	b.SourceStart("a")
	b.MainFileEnd()

	res := b.Result()
	assert.Len(t, res.Sources, 1)
}

func TestForcedIncludeEdgeIsNeverRemovable(t *testing.T) {
	oracle := newFakeOracle()
	oracle.guarded["a"] = true
	oracle.guarded["forced"] = true

	b := trace.NewBuilder(oracle)
	b.SourceStart("a")
	b.Include(trace.IncludeEvent{FromLine: 0, Filename: "forced.hpp", Resolved: &trace.ResolvedFile{Identity: "forced"}, RelativePath: "forced.hpp"})
	b.Enter(trace.ResolvedFile{Identity: "forced"})
	oracle.advance(5)
	b.Exit(trace.ResolvedFile{Identity: "forced"})
	b.MainFileEnd()

	res := b.Result()
	var edge graph.Edge
	var found bool
	for _, e := range res.Graph.Edges() {
		if res.Graph.Node(e.To).Path == "forced.hpp" {
			edge, found = e, true
		}
	}
	require.True(t, found, "expected an edge into forced.hpp")
	assert.Equal(t, 0, edge.LineNumber)
	assert.False(t, edge.IsRemovable)
}

func TestComponentPairingIsSymmetricByStem(t *testing.T) {
	oracle := newFakeOracle()
	oracle.guarded["a.h"] = true

	b := trace.NewBuilder(oracle)
	b.SourceStart("a.c")
	b.Include(trace.IncludeEvent{FromLine: 1, Filename: "a.h", Resolved: &trace.ResolvedFile{Identity: "a.h"}, RelativePath: "a.h"})
	b.MainFileEnd()

	res := b.Result()
	var sourceHandle, headerHandle graph.Handle
	res.Graph.ForEachNode(func(h graph.Handle) {
		switch res.Graph.Node(h).Path {
		case "a.c":
			sourceHandle = h
		case "a.h":
			headerHandle = h
		}
	})
	source := res.Graph.Node(sourceHandle)
	header := res.Graph.Node(headerHandle)
	require.True(t, source.Component.Valid())
	require.True(t, header.Component.Valid())
	assert.Equal(t, headerHandle, source.Component.Peer)
	assert.Equal(t, sourceHandle, header.Component.Peer)
}
