package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	gotfm "github.com/albertocavalcante/go-tfm"
	"github.com/albertocavalcante/go-tfm/internal/config"
	"github.com/albertocavalcante/go-tfm/selector"
)

func newGetTestAssembliesCmd(root *rootOptions) *cobra.Command {
	var solution, outfile string

	cmd := &cobra.Command{
		Use:   "get-test-assemblies",
		Short: "List the test assemblies of a solution or Bazel workspace",
		Long: `List the test assemblies of a solution or Bazel workspace, one path per
selected target framework.

Exits with status 1 when the solution is missing or an assembly file does not
exist, and with status 2 when no test assembly was found.`,
		Example: `  tfm get-test-assemblies --solution App.sln --outfile tests.txt
  tfm get-test-assemblies --solution App.sln --framework-selector App --configuration Release
  tfm get-test-assemblies --solution . --framework-selector MaxNoWindows`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGetTestAssemblies(cmd.Context(), root, solution, outfile, cmd.OutOrStdout())
		},
	}

	d := config.Default()
	f := cmd.Flags()
	f.StringVar(&solution, "solution", "", "solution file or Bazel workspace directory")
	f.StringVar(&outfile, "outfile", "", "file to write assembly paths to (default stdout)")
	f.String("configuration", d.Configuration, "MSBuild configuration")
	f.String("framework", d.Framework, "framework pattern for the All and Regex selectors")
	f.String("framework-selector", d.FrameworkSelector, "framework selector: "+selector.KindList())
	f.StringSlice("include-assemblies", nil, "only keep assemblies matching one of these patterns")
	f.StringSlice("exclude-assemblies", nil, "drop assemblies matching one of these patterns")
	f.String("test-regex", d.TestRegex, "pattern identifying test projects by name")
	f.Bool("get-published-output", d.PublishedOutput, "use the publish directory")
	f.Bool("skip-existence-check", d.SkipExistenceCheck, "do not fail on missing assembly files")
	f.String("file-mode", d.FileMode, "Overwrite or Append to the output file")
	f.Int("concurrency", d.Concurrency, "number of projects evaluated at once")
	_ = cmd.MarkFlagRequired("solution")

	return cmd
}

func runGetTestAssemblies(ctx context.Context, root *rootOptions, solution, outfile string, stdout io.Writer) error {
	cfg := root.cfg
	log := root.logger

	opts, err := cfg.DiscoverOptions()
	if err != nil {
		return err
	}
	opts = append(opts, gotfm.WithLogger(log))

	result, err := gotfm.Discover(ctx, solution, opts...)
	if errors.Is(err, gotfm.ErrSolutionNotFound) {
		log.Error("Unable to find specified solution file", "solution", solution)
		return &ExitError{Code: exitFailure}
	}
	if err != nil {
		return err
	}

	if len(result.Assemblies) == 0 {
		log.Error("Unable to find any test assemblies", "solution", solution)
		return &ExitError{Code: exitNoAssemblies, Err: gotfm.ErrNoAssemblies}
	}

	if err := writeAssemblies(result.Paths(), outfile, cfg.FileMode, stdout); err != nil {
		return err
	}

	if result.ErrorsFound {
		return &ExitError{Code: exitFailure}
	}
	return nil
}

func writeAssemblies(paths []string, outfile, fileMode string, stdout io.Writer) error {
	if outfile == "" || outfile == "-" {
		for _, p := range paths {
			if _, err := fmt.Fprintln(stdout, p); err != nil {
				return err
			}
		}
		return nil
	}

	mode, err := gotfm.ParseFileMode(fileMode)
	if err != nil {
		return err
	}
	return gotfm.WriteList(outfile, paths, mode)
}
