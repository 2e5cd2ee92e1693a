package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modguard/internal/output"
)

var violationsCmd = &cobra.Command{
	Use:   "violations",
	Short: "Detect violations without failing",
	Long: `Violations recomputes all findings and prints them without aborting, for
tooling that wants to inspect rather than fail.

Examples:
  modguard violations
  modguard violations --format=human`,
	Args: cobra.NoArgs,
	Run:  runViolations,
}

func init() {
	rootCmd.AddCommand(violationsCmd)
}

// violationsResponse is the JSON shape of the violations command
type violationsResponse struct {
	Modules    int      `json:"modules"`
	Violations []string `json:"violations"`
}

func runViolations(cmd *cobra.Command, args []string) {
	e, err := loadEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	am, err := e.collection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building module collection: %v\n", err)
		os.Exit(1)
	}

	violations := am.DetectViolations()
	messages := violations.Messages()
	saveRun(e, am.RootPackages(), len(am.Modules()), messages)

	if output.ParseFormat(formatFlag) == output.Human {
		if len(messages) == 0 {
			fmt.Printf("OK: %s, no violations\n", am.Describe())
			return
		}
		_ = output.WriteLines(os.Stdout, messages)
		return
	}

	resp := violationsResponse{Modules: len(am.Modules()), Violations: messages}
	if resp.Violations == nil {
		resp.Violations = []string{}
	}
	if err := output.WriteJSON(os.Stdout, resp); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}
