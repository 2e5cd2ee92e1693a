package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modguard/internal/output"
	"modguard/internal/store"
)

var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent verification runs",
	Long: `History lists the most recent verification runs recorded in the run-history
store. The store must be enabled in the configuration (store.enabled).

Examples:
  modguard history
  modguard history --limit=5 --format=human`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum runs to return")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	e, err := loadEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dir := e.storeDir()
	if dir == "" {
		fmt.Fprintln(os.Stderr, "Error: run-history store is disabled; enable store.enabled in config")
		os.Exit(1)
	}

	s, err := store.OpenStore(dir, e.logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run-history store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	runs, err := s.RecentRuns(historyLimitFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading runs: %v\n", err)
		os.Exit(1)
	}

	if output.ParseFormat(formatFlag) == output.Human {
		lines := make([]string, 0, len(runs))
		for _, run := range runs {
			lines = append(lines, fmt.Sprintf("%s %s: %d module(s), %d violation(s)",
				run.CreatedAt, run.ID[:8], run.ModuleCount, run.ViolationCount))
		}
		_ = output.WriteLines(os.Stdout, lines)
		return
	}

	if runs == nil {
		runs = []*store.Run{}
	}
	if err := output.WriteJSON(os.Stdout, runs); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}
