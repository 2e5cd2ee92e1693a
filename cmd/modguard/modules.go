package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"modguard/internal/dependency"
	"modguard/internal/modules"
	"modguard/internal/output"
)

var modulesKindFlag string

var modulesCmd = &cobra.Command{
	Use:   "modules [name]",
	Short: "List modules or show one module in detail",
	Long: `Without arguments, lists every module of the configured roots with its
exposed surface and allowed dependencies. With a module name, shows named
interfaces, aggregate roots and outgoing dependencies.

Examples:
  modguard modules
  modguard modules order
  modguard modules order --kind=uses-component
  modguard modules --format=human`,
	Args: cobra.MaximumNArgs(1),
	Run:  runModules,
}

func init() {
	modulesCmd.Flags().StringVar(&modulesKindFlag, "kind", "",
		"Filter dependencies by kind (uses-component, entity, event-listener, default)")
	rootCmd.AddCommand(modulesCmd)
}

// moduleSummary is the JSON shape of one module in the listing
type moduleSummary struct {
	Name                string   `json:"name"`
	DisplayName         string   `json:"displayName"`
	BasePackage         string   `json:"basePackage"`
	Types               int      `json:"types"`
	ExposedTypes        int      `json:"exposedTypes"`
	NamedInterfaces     []string `json:"namedInterfaces,omitempty"`
	AllowedDependencies []string `json:"allowedDependencies,omitempty"`
	Shared              bool     `json:"shared,omitempty"`
}

// moduleDetail extends moduleSummary for the single-module view
type moduleDetail struct {
	moduleSummary
	Exposed        []string `json:"exposed"`
	AggregateRoots []string `json:"aggregateRoots,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`
}

func runModules(cmd *cobra.Command, args []string) {
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

	if len(args) == 1 {
		showModule(am, args[0])
		return
	}

	summaries := make([]moduleSummary, 0, len(am.Modules()))
	for _, m := range am.Modules() {
		summaries = append(summaries, summarize(am, m))
	}

	if output.ParseFormat(formatFlag) == output.Human {
		lines := make([]string, 0, len(summaries))
		for _, s := range summaries {
			line := fmt.Sprintf("%s (%s): %d type(s), %d exposed", s.Name, s.BasePackage, s.Types, s.ExposedTypes)
			if len(s.AllowedDependencies) > 0 {
				line += ", allowed: " + strings.Join(s.AllowedDependencies, ", ")
			}
			lines = append(lines, line)
		}
		_ = output.WriteLines(os.Stdout, lines)
		return
	}

	if err := output.WriteJSON(os.Stdout, summaries); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}

func showModule(am *modules.ApplicationModules, name string) {
	m, ok := am.Module(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: module '%s' not found\n", name)
		os.Exit(1)
	}

	detail := moduleDetail{moduleSummary: summarize(am, m)}
	for _, t := range m.Types() {
		if m.IsExposed(t) {
			detail.Exposed = append(detail.Exposed, t.QualifiedName)
		}
	}
	for _, t := range m.AggregateRoots() {
		detail.AggregateRoots = append(detail.AggregateRoots, t.QualifiedName)
	}

	var kinds []dependency.Kind
	if modulesKindFlag != "" {
		kind, ok := dependency.ParseKind(modulesKindFlag)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown dependency kind '%s'\n", modulesKindFlag)
			os.Exit(1)
		}
		kinds = append(kinds, kind)
	}
	for _, dep := range m.Dependencies(am, kinds...) {
		detail.Dependencies = append(detail.Dependencies, dep.String())
	}

	if output.ParseFormat(formatFlag) == output.Human {
		lines := []string{
			fmt.Sprintf("%s (%s)", detail.DisplayName, detail.BasePackage),
			fmt.Sprintf("  exposed: %s", strings.Join(detail.Exposed, ", ")),
		}
		for _, dep := range detail.Dependencies {
			lines = append(lines, "  -> "+dep)
		}
		_ = output.WriteLines(os.Stdout, lines)
		return
	}

	if err := output.WriteJSON(os.Stdout, detail); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}

func summarize(am *modules.ApplicationModules, m *modules.Module) moduleSummary {
	s := moduleSummary{
		Name:        m.Name(),
		DisplayName: m.DisplayName(),
		BasePackage: m.BasePackage(),
		Types:       len(m.Types()),
		Shared:      am.IsShared(m.Name()),
	}
	for _, t := range m.Types() {
		if m.IsExposed(t) {
			s.ExposedTypes++
		}
	}
	for _, iface := range m.Interfaces().All() {
		if !iface.IsUnnamed() {
			s.NamedInterfaces = append(s.NamedInterfaces, iface.Name())
		}
	}
	for _, dd := range m.AllowedDependencies() {
		s.AllowedDependencies = append(s.AllowedDependencies, dd.String())
	}
	return s
}
