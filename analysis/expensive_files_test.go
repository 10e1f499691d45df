package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/includeguardian/analysis"
)

func TestExpensiveFilesDiamond(t *testing.T) {
	g, idx, _, sources := buildDiamond(t)

	results := analysis.ExpensiveFiles(g, idx, sources, 1)
	assert.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, 1, r.Sources)
	}
}

func TestExpensiveFilesEmptySources(t *testing.T) {
	g, idx, _, _ := buildDiamond(t)
	assert.Nil(t, analysis.ExpensiveFiles(g, idx, nil, 0))
}

func TestExpensiveFilesSkipsExternal(t *testing.T) {
	g, idx, h, sources := buildDiamond(t)
	g.Node(h["d"]).IsExternal = true

	results := analysis.ExpensiveFiles(g, idx, sources, 0)
	for _, r := range results {
		assert.NotEqual(t, "d", r.Node.Path)
	}
	assert.Len(t, results, 3)
}
