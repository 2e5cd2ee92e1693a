package main

import (
	"github.com/spf13/cobra"

	"modguard/internal/version"
)

var (
	projectFlag  string
	formatFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "modguard",
	Short: "modguard - module boundary verification",
	Long: `modguard analyzes the module structure of a single-deployable codebase and
verifies that inter-module references obey declared visibility and dependency
rules. It consumes a code universe (YAML snapshot or SCIP index) produced by an
external indexer.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("modguard version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", ".",
		"Project root containing the .modguard directory")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "json",
		"Output format (json, human)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level override (debug, info, warn, error)")
}
