package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/albertocavalcante/go-tfm/internal/config"
)

// flagKeys maps command-line flags to config keys. A flag is bound only
// for the command that declares it.
var flagKeys = map[string]string{
	"configuration":        config.KeyConfiguration,
	"framework":            config.KeyFramework,
	"framework-selector":   config.KeyFrameworkSelector,
	"include-assemblies":   config.KeyIncludeAssemblies,
	"exclude-assemblies":   config.KeyExcludeAssemblies,
	"test-regex":           config.KeyTestRegex,
	"get-published-output": config.KeyPublishedOutput,
	"skip-existence-check": config.KeySkipExistenceCheck,
	"file-mode":            config.KeyFileMode,
	"concurrency":          config.KeyConcurrency,
	"verbose":              config.KeyVerbose,
}

// rootOptions is shared by all subcommands. cfg and logger are set before
// any subcommand runs.
type rootOptions struct {
	configFile string
	verbose    bool

	v      *viper.Viper
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	cmd := &cobra.Command{
		Use:   "tfm",
		Short: "Discover .NET test assemblies and select target frameworks",
		Long: `tfm reads a Visual Studio solution or a Bazel workspace using rules_dotnet,
finds its test projects and prints the assembly path of each project for
every target framework kept by the framework selector.

Settings come from flags, TFM_* environment variables and tfm.toml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is ./tfm.toml)")

	cmd.AddCommand(newGetTestAssembliesCmd(opts))
	cmd.AddCommand(newFrameworksCmd(opts))
	cmd.AddCommand(newMatchCmd(opts))
	cmd.AddCommand(newParseCmd(opts))
	return cmd
}

// load binds the running command's flags, reads the config and sets up
// logging.
func (o *rootOptions) load(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := o.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, used, err := config.Load(o.v, o.configFile)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if used != "" {
		o.logger.Debug("Loaded config", "file", used)
	}
	return nil
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(stderr, "Error:", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitFailure
}
