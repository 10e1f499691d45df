package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"

	"github.com/viant/includeguardian/classify"
	"github.com/viant/includeguardian/compdb"
	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/internal/config"
	"github.com/viant/includeguardian/internal/logging"
	"github.com/viant/includeguardian/persist"
	"github.com/viant/includeguardian/preprocess"
	"github.com/viant/includeguardian/reachability"
	"github.com/viant/includeguardian/report"
	"github.com/viant/includeguardian/trace"
)

// run executes the full pipeline described by spec.md §2's dataflow:
// (compilation-database + filesystem) → preprocess → trace → graph →
// reachability → analysis → report, with persist able to substitute a
// prior snapshot for the first three stages.
func run(ctx context.Context, opts config.Options, logger *logrus.Logger) (report.Result, error) {
	var (
		g       *graph.Graph
		sources []graph.Handle
		built   *trace.Result
	)

	if opts.LoadPath != "" {
		f, err := os.Open(opts.LoadPath)
		if err != nil {
			return report.Result{}, errors.Wrapf(err, "includeguardian: opening %s", opts.LoadPath)
		}
		defer f.Close()
		g, sources, err = persist.Load(f)
		if err != nil {
			return report.Result{}, errors.Wrapf(err, "includeguardian: loading %s", opts.LoadPath)
		}
	} else {
		var err error
		g, sources, built, err = build(ctx, opts, logger)
		if err != nil {
			return report.Result{}, err
		}
	}

	if opts.SavePath != "" {
		f, err := os.Create(opts.SavePath)
		if err != nil {
			return report.Result{}, errors.Wrapf(err, "includeguardian: creating %s", opts.SavePath)
		}
		if err := persist.Save(f, g, sources); err != nil {
			f.Close()
			return report.Result{}, errors.Wrapf(err, "includeguardian: saving %s", opts.SavePath)
		}
		if err := f.Close(); err != nil {
			return report.Result{}, errors.Wrapf(err, "includeguardian: closing %s", opts.SavePath)
		}
	}

	idx, err := reachability.Build(g)
	if err != nil {
		return report.Result{}, errors.Wrap(err, "includeguardian: computing reachability")
	}

	cfg := report.Config{
		Analyze:           opts.Analyze,
		MinTokenCutOff:    opts.MinTokenCutOff(totalRawTokens(g)),
		IncludedByAtMost:  0,
		PCHMinSavingRatio: opts.PCHRatio,
		TopologicalOrder:  opts.TopologicalOrder,
		ShowSources:       opts.ShowSources,
	}
	return report.Build(g, idx, sources, cfg, built), nil
}

// totalRawTokens sums every internal node's own underlying cost, the
// denominator --cutoff's percentage is taken against.
func totalRawTokens(g *graph.Graph) int64 {
	var total int64
	g.ForEachNode(func(h graph.Handle) {
		n := g.Node(h)
		if !n.IsExternal {
			total += n.UnderlyingCost.Tokens
		}
	})
	return total
}

// build runs the compilation database through the preprocessor oracle and
// the trace builder to produce a fresh graph.
func build(ctx context.Context, opts config.Options, logger *logrus.Logger) (*graph.Graph, []graph.Handle, *trace.Result, error) {
	fs := compdb.NewAFS()

	entries, err := loadEntries(ctx, fs, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	isPCH := func(path string) bool {
		return classify.Classify(path, opts.PrecompiledGlobs) == classify.KindPrecompiledHeader
	}

	reader := preprocess.NewAFSReader(ctx, fs)
	oracle := preprocess.NewTreeSitterOracle(reader)
	builder := trace.NewBuilder(oracle, trace.WithPrecompiledPredicate(isPCH))

	for _, entry := range entries {
		entry = applyAdjusters(entry, opts)
		if classify.Classify(entry.AbsoluteFile(), opts.PrecompiledGlobs) != classify.KindSource {
			continue
		}

		resolver := compdb.NewPathResolver(entry.Arguments)

		sourceLog := logging.WithSource(logger, entry.AbsoluteFile())
		if err := oracle.Scan(builder, entry.AbsoluteFile(), resolver); err != nil {
			sourceLog.WithError(err).Error("includeguardian: builder failure")
			return nil, nil, nil, errors.Wrapf(err, "includeguardian: scanning %s", entry.AbsoluteFile())
		}
	}

	result := builder.Result()
	for _, m := range result.MissingIncludes {
		logging.WithFile(logging.WithSource(logger, m.From), m.Filename).Warn("includeguardian: unresolved include")
	}
	for _, u := range result.UnguardedFiles {
		logging.WithFile(logger.WithField("source", u.Identity), u.Path).Warn("includeguardian: unguarded file")
	}

	return result.Graph, result.Sources, result, nil
}

// loadEntries loads compile_commands.json from opts.BuildDir, or, when no
// compilation database is configured, synthesizes one entry per positional
// source path in opts.Sources with opts.ProjectDir as its directory. The
// project directory itself is not walked for further sources.
func loadEntries(ctx context.Context, fs afs.Service, opts config.Options) ([]compdb.Entry, error) {
	if opts.BuildDir != "" {
		url := opts.BuildDir + "/compile_commands.json"
		db, err := compdb.LoadJSONDatabase(ctx, fs, url)
		if err != nil {
			return nil, errors.Wrapf(err, "includeguardian: loading compilation database from %s", url)
		}
		return db.Entries(), nil
	}

	entries := make([]compdb.Entry, 0, len(opts.Sources))
	for _, src := range opts.Sources {
		entries = append(entries, compdb.Entry{File: src, Directory: opts.ProjectDir})
	}
	return entries, nil
}

func applyAdjusters(entry compdb.Entry, opts config.Options) compdb.Entry {
	var adjusters []compdb.Adjuster
	if len(opts.ForcedIncludes) > 0 {
		adjusters = append(adjusters, compdb.WithForcedIncludes(opts.ForcedIncludes...))
	}
	if len(opts.IncludeDirs) > 0 {
		adjusters = append(adjusters, compdb.WithIncludeDirs(opts.IncludeDirs...))
	}
	if len(opts.SystemIncludeDirs) > 0 {
		adjusters = append(adjusters, compdb.WithSystemIncludeDirs(opts.SystemIncludeDirs...))
	}
	if len(opts.ExtraArgsBefore) > 0 {
		adjusters = append(adjusters, compdb.WithExtraArgsBefore(opts.ExtraArgsBefore...))
	}
	if len(opts.ExtraArgs) > 0 {
		adjusters = append(adjusters, compdb.WithExtraArgs(opts.ExtraArgs...))
	}
	return compdb.Apply(entry, adjusters...)
}
