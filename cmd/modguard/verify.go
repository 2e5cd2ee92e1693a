package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modguard/internal/store"
	"modguard/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify module boundaries and fail on violations",
	Long: `Verify builds the module collection for the configured roots, extracts every
cross-module dependency and checks it against declared allow-lists, exposed
surfaces and the cycle rule. Any violation fails the command with a multi-line
message and exit code 1.

Examples:
  modguard verify
  modguard verify --project=path/to/app
  modguard verify --format=human`,
	Args: cobra.NoArgs,
	Run:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) {
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

	verifyErr := am.Verify()

	var messages []string
	if verifyErr != nil {
		if agg, ok := verifyErr.(*verify.AggregateError); ok {
			messages = agg.Violations().Messages()
		} else {
			messages = []string{verifyErr.Error()}
		}
	}
	saveRun(e, am.RootPackages(), len(am.Modules()), messages)

	if verifyErr != nil {
		fmt.Fprintln(os.Stderr, verifyErr.Error())
		os.Exit(1)
	}

	fmt.Printf("OK: %s, no violations\n", am.Describe())
}

// saveRun appends the outcome to the run-history store when enabled
func saveRun(e *engine, roots []string, moduleCount int, messages []string) {
	dir := e.storeDir()
	if dir == "" {
		return
	}

	s, err := store.OpenStore(dir, e.logger)
	if err != nil {
		e.logger.Warn("Failed to open run-history store", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer s.Close()

	if _, err := s.SaveRun(roots, moduleCount, messages); err != nil {
		e.logger.Warn("Failed to save verification run", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
