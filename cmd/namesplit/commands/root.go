// Package commands implements the namesplit command line.
package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kerem-kaynak/authorname/internal/config"
	"github.com/kerem-kaynak/authorname/internal/logger"
)

var (
	configPath string
	jsonLogs   bool
	verbosity  int

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

// RootCmd is the namesplit command.
var RootCmd = &cobra.Command{
	Use:   "namesplit",
	Short: "Split author names into given and family components",
	Long: `namesplit - Author name component extraction.

Filters initials, suffixes and nobiliary particles out of given-name fields,
and tells given names from family names in undelimited author strings using
a frequency table trained on labeled names.

Examples:
  namesplit parse "Bryanne Brissian de Souza" "Langhi Júnior"
  namesplit author "Smith, John Maynard W"
  namesplit train corpus/                 # Train from XML author lists
  namesplit import table.csv              # Load a frequency table
  namesplit classify Thomas Smith`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return errors.Wrap(err, "load configuration")
		}

		level := cfg.Log.Level
		if verbosity > 0 {
			level = logger.VerbosityToLevel(verbosity).String()
		}
		if err := logger.Initialize(jsonLogs || cfg.Log.JSON, level); err != nil {
			return errors.Wrap(err, "initialize logger")
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	RootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
	RootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v, -vv)")
	RootCmd.PersistentFlags().String("db", "", "Frequency database (overrides store.path)")
	RootCmd.PersistentFlags().String("snapshot", "", "Read-only FST snapshot to query instead of the database")

	RootCmd.AddCommand(parseCmd)
	RootCmd.AddCommand(authorCmd)
	RootCmd.AddCommand(explainCmd)
	RootCmd.AddCommand(classifyCmd)
	RootCmd.AddCommand(trainCmd)
	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(snapshotCmd)
	RootCmd.AddCommand(RulesCmd)
	RootCmd.AddCommand(benchCmd)
}
