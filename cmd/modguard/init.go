package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"modguard/internal/config"
	"modguard/internal/modules"
)

var initRootFlag string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the .modguard configuration for a project",
	Long: `Init writes a default config.json and an example declaration file into the
project's .modguard directory.

Examples:
  modguard init --root=com.acme.app
  modguard init --project=path/to/app --root=com.acme.app`,
	Args: cobra.NoArgs,
	Run:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initRootFlag, "root", "", "Root package of the application (required)")
	_ = initCmd.MarkFlagRequired("root")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig()
	cfg.Analysis.RootPackages = []string{initRootFlag}
	if err := cfg.Save(projectFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}

	declPath := filepath.Join(projectFlag, config.ConfigDir, modules.DeclarationFile)
	if _, err := os.Stat(declPath); os.IsNotExist(err) {
		example := modules.ExampleDeclarationFile(initRootFlag)
		if err := modules.WriteDeclarationFile(declPath, example); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing declaration file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Initialized %s\n", filepath.Join(projectFlag, config.ConfigDir))
}
