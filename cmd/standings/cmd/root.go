// Package cmd holds the standings CLI commands.
package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-standings/internal/logging"
	"github.com/ahrav/go-standings/internal/settings"
)

// cliState is the state every subcommand shares once the root command has
// loaded settings.
type cliState struct {
	envFile  string
	verbose  bool
	settings settings.Settings
	logger   zerolog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	rt := &cliState{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "standings",
		Short: "Tournament ranking engine",
		Long: `Computes school robotics tournament rankings.

Commands:
    rank       rank a tournament from YAML and snapshot files
    serve      run the HTTP ranking and submission API
    migrate    apply Postgres schema migrations`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&rt.envFile, "env", ".env", "dotenv file with process settings")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newRankCommand(rt), newServeCommand(rt), newMigrateCommand(rt))
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func (rt *cliState) init(cmd *cobra.Command) error {
	s, err := settings.Load(rt.envFile)
	if err != nil {
		return err
	}
	if rt.verbose {
		s.Log.Level = "debug"
	}
	s.Log.Out = cmd.ErrOrStderr()

	logger, err := logging.Init(s.Log)
	if err != nil {
		return err
	}
	rt.settings = s
	rt.logger = logger
	return nil
}
