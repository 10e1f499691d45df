// Package report aggregates the analysis package's typed results into a
// single Result, orders them by descending savings, and formats that
// Result as a colourised YAML document (spec.md §6 "Report format").
package report

import (
	"sort"

	"github.com/viant/includeguardian/analysis"
	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/levelize"
	"github.com/viant/includeguardian/reachability"
	"github.com/viant/includeguardian/trace"
)

// Config gathers the cutoffs every analysis needs.
type Config struct {
	Analyze           bool
	MinTokenCutOff    int64
	IncludedByAtMost  int
	PCHMinSavingRatio float64
	TopologicalOrder  bool
	ShowSources       bool
}

// Result is everything the driver prints: every analysis's findings,
// sorted by descending token saving, plus the diagnostics trace.Builder
// collected along the way.
type Result struct {
	TotalCost analysis.TotalCostResult `yaml:"total_cost"`

	ExpensiveFiles       []FileFinding        `yaml:"expensive_files,omitempty"`
	ExpensiveIncludes    []IncludeFinding     `yaml:"expensive_includes,omitempty"`
	ExpensiveHeaders     []NodeFinding        `yaml:"expensive_headers,omitempty"`
	UnusedComponents     []NodeFinding        `yaml:"unused_components,omitempty"`
	UnnecessarySources   []SourceFinding      `yaml:"unnecessary_sources,omitempty"`
	RecommendPrecompiled []PrecompiledFinding `yaml:"recommend_precompiled,omitempty"`

	TopologicalLevels [][]string `yaml:"topological_levels,omitempty"`

	Sources []string `yaml:"sources,omitempty"`

	MissingIncludes []MissingInclude `yaml:"missing_includes,omitempty"`
	UnguardedFiles  []string         `yaml:"unguarded_files,omitempty"`
}

// FileFinding is the YAML-friendly projection of analysis.FileAndSources.
type FileFinding struct {
	Path    string `yaml:"path"`
	Sources int    `yaml:"sources"`
	Cost    Cost   `yaml:"cost"`
}

// IncludeFinding is the YAML-friendly projection of analysis.IncludeAndSaving.
type IncludeFinding struct {
	From   string `yaml:"from"`
	Line   int    `yaml:"line"`
	Saving Cost   `yaml:"saving"`
}

// NodeFinding covers both ExpensiveHeaders and UnusedComponents, which
// share the same (node, saving) shape.
type NodeFinding struct {
	Path   string `yaml:"path"`
	Saving Cost   `yaml:"saving"`
}

// SourceFinding is the YAML-friendly projection of analysis.UnnecessarySource.
type SourceFinding struct {
	Path      string `yaml:"path"`
	Saving    Cost   `yaml:"saving"`
	ExtraCost Cost   `yaml:"extra_cost"`
}

// PrecompiledFinding is the YAML-friendly projection of
// analysis.PrecompiledRecommendation.
type PrecompiledFinding struct {
	Path                 string `yaml:"path"`
	Saving               Cost   `yaml:"saving"`
	ExtraPrecompiledSize Cost   `yaml:"extra_precompiled_size"`
}

// MissingInclude is the YAML-friendly projection of trace.MissingInclude.
type MissingInclude struct {
	From     string `yaml:"from"`
	Filename string `yaml:"filename"`
	Line     int    `yaml:"line"`
}

// Cost is the YAML-friendly projection of cost.Cost.
type Cost struct {
	Tokens int64   `yaml:"tokens"`
	Bytes  float64 `yaml:"bytes"`
}

func fromCost(c cost.Cost) Cost { return Cost{Tokens: c.Tokens, Bytes: c.Bytes} }

// Build runs every analysis the config selects against g and idx, sorts
// each finding list by descending token saving, and folds in the
// diagnostics already collected by buildResult.
func Build(g *graph.Graph, idx *reachability.Index, sources []graph.Handle, cfg Config, buildResult *trace.Result) Result {
	var out Result
	out.TotalCost = analysis.TotalCost(g, sources)

	if !cfg.Analyze {
		if cfg.TopologicalOrder {
			out.TopologicalLevels = formatLevels(g, levelize.Build(g, sources))
		}
		if cfg.ShowSources {
			for _, s := range sources {
				out.Sources = append(out.Sources, g.Node(s).Path)
			}
		}
		return out
	}

	for _, f := range analysis.ExpensiveFiles(g, idx, sources, cfg.MinTokenCutOff) {
		out.ExpensiveFiles = append(out.ExpensiveFiles, FileFinding{
			Path: f.Node.Path, Sources: f.Sources, Cost: fromCost(f.Node.TrueCost()),
		})
	}
	sort.Slice(out.ExpensiveFiles, func(i, j int) bool {
		return out.ExpensiveFiles[i].Cost.Tokens > out.ExpensiveFiles[j].Cost.Tokens
	})

	for _, inc := range analysis.ExpensiveIncludes(g, idx, sources, cfg.MinTokenCutOff) {
		out.ExpensiveIncludes = append(out.ExpensiveIncludes, IncludeFinding{
			From: inc.From.Path, Line: g.Edge(inc.EdgeIdx).LineNumber, Saving: fromCost(inc.Saving),
		})
	}
	sort.Slice(out.ExpensiveIncludes, func(i, j int) bool {
		return out.ExpensiveIncludes[i].Saving.Tokens > out.ExpensiveIncludes[j].Saving.Tokens
	})

	for _, h := range analysis.ExpensiveHeaders(g, idx, sources, cfg.MinTokenCutOff) {
		out.ExpensiveHeaders = append(out.ExpensiveHeaders, NodeFinding{Path: h.Node.Path, Saving: fromCost(h.Saving)})
	}
	sortNodeFindings(out.ExpensiveHeaders)

	for _, c := range analysis.UnusedComponents(g, sources, cfg.IncludedByAtMost, cfg.MinTokenCutOff) {
		out.UnusedComponents = append(out.UnusedComponents, NodeFinding{Path: c.Source.Path, Saving: fromCost(c.Saving)})
	}
	sortNodeFindings(out.UnusedComponents)

	for _, s := range analysis.UnnecessarySources(g, idx, sources, cfg.MinTokenCutOff) {
		out.UnnecessarySources = append(out.UnnecessarySources, SourceFinding{
			Path: s.Source.Path, Saving: fromCost(s.Saving), ExtraCost: fromCost(s.ExtraCost),
		})
	}
	sort.Slice(out.UnnecessarySources, func(i, j int) bool {
		return out.UnnecessarySources[i].Saving.Tokens > out.UnnecessarySources[j].Saving.Tokens
	})

	for _, p := range analysis.RecommendPrecompiled(g, sources, cfg.MinTokenCutOff, cfg.PCHMinSavingRatio) {
		out.RecommendPrecompiled = append(out.RecommendPrecompiled, PrecompiledFinding{
			Path: p.Node.Path, Saving: fromCost(p.Saving), ExtraPrecompiledSize: fromCost(p.ExtraPrecompiledSize),
		})
	}
	sort.Slice(out.RecommendPrecompiled, func(i, j int) bool {
		return out.RecommendPrecompiled[i].Saving.Tokens > out.RecommendPrecompiled[j].Saving.Tokens
	})

	if cfg.TopologicalOrder {
		out.TopologicalLevels = formatLevels(g, levelize.Build(g, sources))
	}

	if cfg.ShowSources {
		for _, s := range sources {
			out.Sources = append(out.Sources, g.Node(s).Path)
		}
	}

	if buildResult != nil {
		for _, m := range buildResult.MissingIncludes {
			out.MissingIncludes = append(out.MissingIncludes, MissingInclude{From: m.From, Filename: m.Filename, Line: m.Line})
		}
		for _, u := range buildResult.UnguardedFiles {
			out.UnguardedFiles = append(out.UnguardedFiles, u.Path)
		}
	}

	return out
}

func sortNodeFindings(findings []NodeFinding) {
	sort.Slice(findings, func(i, j int) bool { return findings[i].Saving.Tokens > findings[j].Saving.Tokens })
}

// formatLevels renders levelize.Levels as a list of levels, each a list
// of groups, each group a list of file paths — cycles (a group with more
// than one member) stay grouped together so the reader can see a guard
// is missing.
func formatLevels(g *graph.Graph, levels levelize.Levels) [][]string {
	var out [][]string
	for _, level := range levels {
		var rendered []string
		for _, group := range level {
			if len(group) == 1 {
				rendered = append(rendered, g.Node(group[0]).Path)
				continue
			}
			cycle := "cycle("
			for i, h := range group {
				if i > 0 {
					cycle += ", "
				}
				cycle += g.Node(h).Path
			}
			cycle += ")"
			rendered = append(rendered, cycle)
		}
		out = append(out, rendered)
	}
	return out
}
