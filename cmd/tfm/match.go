package main

import (
	"fmt"

	"github.com/spf13/cobra"

	gotfm "github.com/albertocavalcante/go-tfm"
)

func newMatchCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "match REFERENCE CANDIDATE...",
		Short: "Print the candidate framework that best matches a reference framework",
		Long: `Print the candidate framework that best matches a reference framework.

An identical candidate wins. A netstandard reference takes the highest
candidate. Otherwise the highest candidate of the same family and major
version, at least the reference version and without a conflicting platform
wins. Exits with status 1 when nothing matches.`,
		Example: `  tfm match netcoreapp3.0 netcoreapp3.1 net5.0`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			match, ok, err := gotfm.MatchFramework(args[0], args[1:])
			if err != nil {
				return err
			}
			if !ok {
				return &ExitError{Code: exitFailure, Err: fmt.Errorf("no framework matches %s", args[0])}
			}
			fmt.Fprintln(cmd.OutOrStdout(), match)
			return nil
		},
	}
}
