package preprocess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/preprocess"
	"github.com/viant/includeguardian/trace"
)

// memFiles is an in-memory preprocess.FileReader for tests: maps an
// identity directly to its source text, with every file reporting a
// file size equal to its source length.
type memFiles map[string]string

func (m memFiles) ReadFile(path string) ([]byte, error) {
	return []byte(m[path]), nil
}

func (m memFiles) FileSize(path string) (float64, error) {
	return float64(len(m[path])), nil
}

// memResolver resolves a bare filename against a fixed table, ignoring
// fromDir and isAngled — enough to drive the diamond fixture without
// needing compdb.PathResolver's real search-path semantics.
type memResolver map[string]string

func (m memResolver) Resolve(fromDir, filename string, isAngled bool) (string, bool, bool) {
	id, ok := m[filename]
	return id, false, ok
}

func (m memResolver) ForcedIncludeFiles() []string { return nil }

// memResolverWithForced extends memResolver with a fixed forced-include
// file list, for exercising TreeSitterOracle.Scan's -include handling.
type memResolverWithForced struct {
	memResolver
	forced []string
}

func (m memResolverWithForced) ForcedIncludeFiles() []string { return m.forced }

func TestTreeSitterOracleDiamondGuardedHeadersCountOnce(t *testing.T) {
	files := memFiles{
		"a.c": "#include \"b.h\"\n#include \"c.h\"\n",
		"b.h": "#ifndef B_H\n#define B_H\n#include \"d.h\"\nint b;\n#endif\n",
		"c.h": "#ifndef C_H\n#define C_H\n#include \"d.h\"\nint c;\n#endif\n",
		"d.h": "#ifndef D_H\n#define D_H\nint d;\n#endif\n",
	}
	resolver := memResolver{"b.h": "b.h", "c.h": "c.h", "d.h": "d.h"}

	oracle := preprocess.NewTreeSitterOracle(files)
	builder := trace.NewBuilder(oracle)

	require.NoError(t, oracle.Scan(builder, "a.c", resolver))

	result := builder.Result()
	assert.Empty(t, result.MissingIncludes)
	assert.Empty(t, result.UnguardedFiles)

	d := findNode(t, result, "d.h")
	assert.True(t, oracle.IsFileGuarded("d.h"))
	assert.Greater(t, d.UnderlyingCost.Tokens, int64(0))
}

func TestTreeSitterOracleReportsUnguardedRevisit(t *testing.T) {
	files := memFiles{
		"a.c": "#include \"b.h\"\n#include \"c.h\"\n",
		"b.h": "#include \"d.h\"\nint b;\n",
		"c.h": "#include \"d.h\"\nint c;\n",
		"d.h": "int d;\n",
	}
	resolver := memResolver{"b.h": "b.h", "c.h": "c.h", "d.h": "d.h"}

	oracle := preprocess.NewTreeSitterOracle(files)
	builder := trace.NewBuilder(oracle)

	require.NoError(t, oracle.Scan(builder, "a.c", resolver))

	result := builder.Result()
	require.Len(t, result.UnguardedFiles, 1)
	assert.Equal(t, "d.h", result.UnguardedFiles[0].Identity)
	assert.False(t, oracle.IsFileGuarded("d.h"))
}

func TestTreeSitterOracleReportsMissingInclude(t *testing.T) {
	files := memFiles{
		"a.c": "#include \"missing.h\"\nint a;\n",
	}
	resolver := memResolver{}

	oracle := preprocess.NewTreeSitterOracle(files)
	builder := trace.NewBuilder(oracle)

	require.NoError(t, oracle.Scan(builder, "a.c", resolver))

	result := builder.Result()
	require.Len(t, result.MissingIncludes, 1)
	assert.Equal(t, "missing.h", result.MissingIncludes[0].Filename)
	assert.Equal(t, 1, result.MissingIncludes[0].Line)
}

func TestTreeSitterOraclePragmaOnceIsGuard(t *testing.T) {
	files := memFiles{
		"a.c": "#include \"b.h\"\n#include \"b.h\"\n",
		"b.h": "#pragma once\nint b;\n",
	}
	resolver := memResolver{"b.h": "b.h"}

	oracle := preprocess.NewTreeSitterOracle(files)
	builder := trace.NewBuilder(oracle)

	require.NoError(t, oracle.Scan(builder, "a.c", resolver))

	result := builder.Result()
	assert.Empty(t, result.UnguardedFiles)
	assert.True(t, oracle.IsFileGuarded("b.h"))
}

func TestTreeSitterOracleWalksForcedIncludesBeforeMainFile(t *testing.T) {
	files := memFiles{
		"a.c":      "int a;\n",
		"forced.h": "int forced;\n",
	}
	resolver := memResolverWithForced{
		memResolver: memResolver{"forced.h": "forced.h"},
		forced:      []string{"forced.h"},
	}

	oracle := preprocess.NewTreeSitterOracle(files)
	builder := trace.NewBuilder(oracle)

	require.NoError(t, oracle.Scan(builder, "a.c", resolver))

	result := builder.Result()
	forced := findNode(t, result, "forced.h")
	assert.Greater(t, forced.UnderlyingCost.Tokens, int64(0))

	var forcedHandle graph.Handle
	result.Graph.ForEachNode(func(h graph.Handle) {
		if result.Graph.Node(h).Path == "forced.h" {
			forcedHandle = h
		}
	})
	in := result.Graph.InEdges(forcedHandle)
	require.Len(t, in, 1)
	edge := result.Graph.Edge(in[0])
	assert.Equal(t, 0, edge.LineNumber)
	assert.False(t, edge.IsRemovable)
}

func findNode(t *testing.T, result *trace.Result, path string) *graph.Node {
	t.Helper()
	var found *graph.Node
	result.Graph.ForEachNode(func(h graph.Handle) {
		n := result.Graph.Node(h)
		if n.Path == path {
			found = n
		}
	})
	if found == nil {
		t.Fatalf("node %s not found", path)
	}
	return found
}
