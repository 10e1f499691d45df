package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/includeguardian/internal/config"
	"github.com/viant/includeguardian/internal/logging"
	"github.com/viant/includeguardian/report"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var opts config.Options

var rootCmd = &cobra.Command{
	Use:   "includeguardian [source...]",
	Short: "Analyze a C/C++ include graph and report compilation-cost reductions",
	Long: `includeguardian walks a compilation database (or the source paths
given on the command line), builds the #include dependency graph it implies, and reports where
compile time can be saved: expensive headers, removable includes, unused
translation units, and candidates for precompilation.`,
	RunE: runRoot,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringArrayVarP(&opts.IncludeDirs, "I", "I", nil, "additional quoted/angled include search directory")
	flags.StringArrayVar(&opts.SystemIncludeDirs, "isystem", nil, "additional system include search directory (clang -isystem)")
	flags.StringArrayVar(&opts.ForcedIncludes, "forced-includes", nil, "file forced-included ahead of every translation unit (clang -include)")
	flags.StringArrayVar(&opts.ExtraArgs, "extra-arg", nil, "extra compiler argument appended to every entry's command line")
	flags.StringArrayVar(&opts.ExtraArgsBefore, "extra-arg-before", nil, "extra compiler argument prepended to every entry's command line")

	flags.StringVar(&opts.ProjectDir, "dir", "", "directory that relative source paths are resolved against when no compilation database is given")
	flags.StringVarP(&opts.BuildDir, "build-dir", "p", "", "build directory containing compile_commands.json")

	flags.StringVar(&opts.LoadPath, "load", "", "load a previously saved graph snapshot instead of scanning")
	flags.StringVar(&opts.SavePath, "save", "", "save the scanned graph snapshot to this path")

	flags.Float64Var(&opts.CutoffPercent, "cutoff", 1, "minimum saving, as a percent of total cost, worth reporting")
	flags.Float64Var(&opts.PCHRatio, "pch-ratio", 0.5, "minimum saving ratio for a precompiled-header recommendation")
	flags.StringArrayVar(&opts.PrecompiledGlobs, "pch-glob", nil, "header basename glob (e.g. \"stdafx.h\") treated as a precompiled header")

	flags.BoolVar(&opts.Analyze, "analyze", true, "run the cost/saving analyses")
	flags.BoolVar(&opts.TopologicalOrder, "topological-order", false, "report the include graph's topological levels")
	flags.BoolVar(&opts.ShowSources, "show-sources", false, "include the resolved source list in the report")
	flags.BoolVar(&opts.SmallerFileOpt, "smaller-file-opt", false, "accepted but has no effect: no analysis reads this option")
}

func runRoot(cmd *cobra.Command, args []string) error {
	opts.Sources = args
	if err := opts.Validate(); err != nil {
		return err
	}

	logger := logging.New()
	result, err := run(context.Background(), opts, logger)
	if err != nil {
		logger.WithError(err).Error("includeguardian: run failed")
		return err
	}

	writer := report.NewYAMLWriter(cmd.OutOrStdout())
	return writer.Write(cmd.OutOrStdout(), result)
}
