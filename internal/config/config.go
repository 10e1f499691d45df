// Package config parses and validates the CLI flag surface of
// cmd/includeguardian independent of the Cobra layer, so both the command
// and tests can construct an Options value directly.
package config

import (
	"github.com/pkg/errors"
)

// Options is the fully validated set of driver inputs (spec.md §6's CLI
// surface).
type Options struct {
	// Sources are the positional translation-unit entry points.
	Sources []string

	// BuildDir is the directory containing compile_commands.json (-p).
	BuildDir string
	// ProjectDir is the directory relative Sources are resolved against
	// when no database is given (--dir); it is not scanned for sources.
	ProjectDir string

	IncludeDirs       []string // -I<dir>
	SystemIncludeDirs []string // -isystem<dir>
	ForcedIncludes    []string // --forced-includes
	ExtraArgs         []string // --extra-arg
	ExtraArgsBefore   []string // --extra-arg-before

	LoadPath string // --load
	SavePath string // --save

	CutoffPercent float64 // --cutoff
	PCHRatio      float64 // --pch-ratio

	Analyze          bool // --analyze
	TopologicalOrder bool // --topological-order
	ShowSources      bool // --show-sources
	SmallerFileOpt   bool // --smaller-file-opt
	PrecompiledGlobs []string
}

// Validate checks the combination of options for a configuration error
// (spec.md §7): a malformed cutoff or ratio, or a load/database conflict.
func (o Options) Validate() error {
	if o.CutoffPercent < 0 || o.CutoffPercent > 100 {
		return errors.Errorf("config: --cutoff must be within [0, 100], got %g", o.CutoffPercent)
	}
	if o.PCHRatio < 0 || o.PCHRatio > 1 {
		return errors.Errorf("config: --pch-ratio must be within [0, 1], got %g", o.PCHRatio)
	}
	if o.LoadPath != "" && o.BuildDir != "" {
		return errors.New("config: --load and -p are mutually exclusive")
	}
	if o.LoadPath == "" && o.BuildDir == "" && len(o.Sources) == 0 {
		return errors.New("config: one of --load, -p, or a source path is required")
	}
	if !o.Analyze && !o.TopologicalOrder {
		return errors.New("config: at least one of --analyze or --topological-order is required")
	}
	return nil
}

// MinTokenCutOff converts CutoffPercent against totalTokens into the
// absolute token-count cutoff the analysis package expects.
func (o Options) MinTokenCutOff(totalTokens int64) int64 {
	return int64(o.CutoffPercent / 100 * float64(totalTokens))
}
