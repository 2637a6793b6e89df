package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/output"
	"github.com/shopcarts-project/shopctl/internal/plan"
)

var undeployCmd = &cobra.Command{
	Use:     "undeploy [resources...]",
	Aliases: []string{"down"},
	Short:   "Delete deployed resources in reverse dependency order",
	Long: `Delete the application's Kubernetes resources.

Resources are deleted in reverse dependency order so that dependents
go away before the resources they rely on. Missing resources are
skipped, so undeploy is safe to run repeatedly.

If no resources are specified, deletes the full default set.

Examples:
  shopctl undeploy             # Delete everything
  shopctl undeploy shopcarts   # Delete the app workload and its dependents
  shopctl undeploy --keep-namespace`,
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: completeResourceNames,
	RunE:              runUndeploy,
}

func init() {
	rootCmd.AddCommand(undeployCmd)

	undeployCmd.Flags().Bool("keep-namespace", false, "keep the namespace and its remaining objects")
	undeployCmd.Flags().Duration("timeout", 5*time.Minute, "timeout for resource deletion")
}

func runUndeploy(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	registry := plan.NewRegistry()
	resolver := plan.NewResolver(registry)

	// Determine which resources to delete
	var names []string
	if len(args) > 0 {
		names = args
	} else {
		names = cfg.Defaults.Resources
	}

	p, err := resolver.ResolveReverse(names)
	if err != nil {
		return &output.CLIError{
			Summary:    "failed resolving dependencies",
			Detail:     err.Error(),
			Suggestion: "Check resource definitions with 'shopctl list --deps'",
			ExitCode:   output.ExitUsageError,
		}
	}

	keepNamespace, _ := cmd.Flags().GetBool("keep-namespace")

	printer.Header("Deleting Resources")
	for _, res := range p.Resources {
		if keepNamespace && res.Kind == plan.KindNamespace {
			continue
		}
		printer.Info("  • %s", printer.Bold(res.Name))
	}
	fmt.Println()

	client := newKubeClient()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, res := range p.Resources {
		if keepNamespace && res.Kind == plan.KindNamespace {
			continue
		}
		if _, err := client.Delete(ctx, res.Manifest); err != nil {
			printer.Error("Failed to delete %s: %v", res.Name, err)
			return &output.CLIError{
				Summary:    fmt.Sprintf("failed deleting resource '%s'", res.Name),
				Detail:     err.Error(),
				Suggestion: "Run 'shopctl status' to inspect remaining objects",
				ExitCode:   output.ExitKubectlError,
			}
		}
		printer.Info("  deleted %s", res.Name)
	}

	printer.Success("Resources deleted")
	printer.PrintHints("undeploy")
	return nil
}
