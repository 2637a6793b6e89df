package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/output"
	"github.com/shopcarts-project/shopctl/internal/plan"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List deployable resources",
	Long: `List all deployable resources with their kinds and dependencies.

Examples:
  shopctl list                 # List all resources
  shopctl list --deps          # Show dependency graph
  shopctl list --json          # Output as JSON`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("deps", false, "show dependency graph")
	listCmd.Flags().Bool("json", false, "output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	registry := plan.NewRegistry()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	showDeps, _ := cmd.Flags().GetBool("deps")

	if jsonOutput {
		return outputListJSON(registry)
	}

	if showDeps {
		return outputDependencyGraph(printer, registry)
	}

	return outputResourceList(printer, registry)
}

func outputListJSON(registry *plan.Registry) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(registry.All())
}

func outputResourceList(printer *output.Printer, registry *plan.Registry) error {
	printer.Header("Deployable Resources")

	table := output.NewTable([]string{"RESOURCE", "KIND", "READINESS", "REQUIRES"})

	for _, res := range registry.All() {
		readiness := string(res.Readiness.Kind)
		if readiness == "" {
			readiness = "none"
		}

		requires := ""
		if len(res.DependsOn) > 0 {
			requires = strings.Join(res.DependsOn, ", ")
		}

		table.AddRow([]string{
			printer.Bold(res.Name),
			string(res.Kind),
			readiness,
			requires,
		})
	}
	table.Render()
	fmt.Println()

	// Show default resources
	printer.Info("Default resources: %s", strings.Join(cfg.Defaults.Resources, ", "))
	return nil
}

func outputDependencyGraph(printer *output.Printer, registry *plan.Registry) error {
	printer.Header("Dependency Graph")

	resolver := plan.NewResolver(registry)
	graph := resolver.GetDependencyGraph()

	// Print ASCII dependency graph
	fmt.Println()
	fmt.Println("              namespace")
	fmt.Println("                  │")
	fmt.Println("         ┌────────┴────────┐")
	fmt.Println("         │                 │")
	fmt.Println("    app-config         postgres")
	fmt.Println("         │                 │")
	fmt.Println("         └────────┬────────┘")
	fmt.Println("                  │")
	fmt.Println("              shopcarts")
	fmt.Println("                  │")
	fmt.Println("          shopcarts-service")
	fmt.Println("                  │")
	fmt.Println("          shopcarts-ingress")
	fmt.Println()

	// Detailed dependencies
	printer.Header("Detailed Dependencies")
	for name, deps := range graph {
		if len(deps) == 0 {
			printer.Print("%s: %s", printer.Bold(name), printer.Dim("(no dependencies)"))
		} else {
			printer.Print("%s: %s", printer.Bold(name), strings.Join(deps, " → "))
		}
	}

	return nil
}
