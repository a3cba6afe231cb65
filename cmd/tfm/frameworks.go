package main

import (
	"fmt"

	"github.com/spf13/cobra"

	gotfm "github.com/albertocavalcante/go-tfm"
	"github.com/albertocavalcante/go-tfm/internal/config"
	"github.com/albertocavalcante/go-tfm/moniker"
	"github.com/albertocavalcante/go-tfm/selector"
)

func newFrameworksCmd(root *rootOptions) *cobra.Command {
	var name string
	var app []string

	cmd := &cobra.Command{
		Use:   "frameworks FRAMEWORK...",
		Short: "Apply a framework selector to a list of frameworks",
		Example: `  tfm frameworks --framework-selector Max net48 netcoreapp3.1 net6.0
  tfm frameworks --framework-selector App --app net6.0,net48 net48 net6.0 net7.0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := selector.ParseKind(root.cfg.FrameworkSelector)
			if err != nil {
				return err
			}
			application, err := moniker.ParseAll(app)
			if err != nil {
				return err
			}
			policy, err := selector.New(selector.Config{
				Kind:        kind,
				Pattern:     root.cfg.Framework,
				Application: application,
			}, selector.WithLogger(root.logger))
			if err != nil {
				return err
			}

			selected, err := gotfm.SelectFrameworks(policy, name, args)
			if err != nil {
				return err
			}
			for _, fw := range selected {
				fmt.Fprintln(cmd.OutOrStdout(), fw)
			}
			return nil
		},
	}

	d := config.Default()
	f := cmd.Flags()
	f.String("framework-selector", d.FrameworkSelector, "framework selector: "+selector.KindList())
	f.String("framework", d.Framework, "framework pattern for the All and Regex selectors")
	f.StringSliceVar(&app, "app", nil, "application frameworks for the App selector")
	f.StringVar(&name, "name", "project", "project name used in messages")
	return cmd
}
