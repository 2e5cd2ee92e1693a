package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modguard/internal/modules"
	"modguard/internal/output"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List published domain events per module",
	Long: `Events lists every domain event type published by each module, together
with the call sites instantiating it. The listing is documentation output and
never fails on violations.

Examples:
  modguard events
  modguard events --format=human`,
	Args: cobra.NoArgs,
	Run:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

// moduleEvents is the JSON shape of one module's published events
type moduleEvents struct {
	Module string                   `json:"module"`
	Events []modules.PublishedEvent `json:"events"`
}

func runEvents(cmd *cobra.Command, args []string) {
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

	var out []moduleEvents
	for _, m := range am.Modules() {
		events := m.PublishedEvents()
		if len(events) == 0 {
			continue
		}
		out = append(out, moduleEvents{Module: m.Name(), Events: events})
	}

	if output.ParseFormat(formatFlag) == output.Human {
		var lines []string
		for _, me := range out {
			for _, ev := range me.Events {
				line := fmt.Sprintf("%s publishes %s", me.Module, ev.Name)
				for _, site := range ev.Sites {
					line += fmt.Sprintf(" [%s]", site.Caller)
				}
				lines = append(lines, line)
			}
		}
		_ = output.WriteLines(os.Stdout, lines)
		return
	}

	if out == nil {
		out = []moduleEvents{}
	}
	if err := output.WriteJSON(os.Stdout, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}
