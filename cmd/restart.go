package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/orchestrate"
	"github.com/shopcarts-project/shopctl/internal/output"
	"github.com/shopcarts-project/shopctl/internal/plan"
)

var restartCmd = &cobra.Command{
	Use:   "restart [workloads...]",
	Short: "Restart workloads with a rolling restart",
	Long: `Trigger a rolling restart of one or more workloads and wait for
them to become ready again.

If no workloads are specified, restarts all workload resources.

Examples:
  shopctl restart              # Restart all workloads
  shopctl restart shopcarts    # Restart the app deployment
  shopctl restart postgres --no-wait`,
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: completeWorkloadNames,
	RunE:              runRestart,
}

func init() {
	rootCmd.AddCommand(restartCmd)

	restartCmd.Flags().Bool("no-wait", false, "don't wait for readiness after restart")
	restartCmd.Flags().Duration("timeout", 5*time.Minute, "timeout per workload")
}

func runRestart(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	registry := plan.NewRegistry()

	// Determine which workloads to restart
	var resources []*plan.Resource
	if len(args) > 0 {
		for _, name := range args {
			res, ok := registry.Get(name)
			if !ok {
				return &output.CLIError{
					Summary:    fmt.Sprintf("unknown resource: %s", name),
					Suggestion: "Run 'shopctl list' to see available resources",
					ExitCode:   output.ExitUsageError,
				}
			}
			if !res.Kind.IsWorkload() {
				return &output.CLIError{
					Summary:    fmt.Sprintf("resource '%s' is a %s, not a workload", name, res.Kind),
					Suggestion: "Only deployments and statefulsets can be restarted",
					ExitCode:   output.ExitUsageError,
				}
			}
			resources = append(resources, res)
		}
	} else {
		for _, res := range registry.All() {
			if res.Kind.IsWorkload() {
				resources = append(resources, res)
			}
		}
	}

	client := newKubeClient()
	probe := orchestrate.NewProbe(client, logger)

	noWait, _ := cmd.Flags().GetBool("no-wait")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	printer.Header("Restarting Workloads")
	for _, res := range resources {
		printer.Info("  • %s", printer.Bold(res.Name))
	}
	fmt.Println()

	for _, res := range resources {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)

		if err := client.RolloutRestart(ctx, res.Kind, res.Name); err != nil {
			cancel()
			return &output.CLIError{
				Summary:    fmt.Sprintf("failed restarting '%s'", res.Name),
				Detail:     err.Error(),
				Suggestion: "Run 'shopctl status' to inspect the cluster",
				ExitCode:   output.ExitKubectlError,
			}
		}

		if !noWait && res.Readiness.Enabled() {
			if err := probe.Wait(ctx, res); err != nil {
				cancel()
				return &output.CLIError{
					Summary:    fmt.Sprintf("workload '%s' did not become ready after restart", res.Name),
					Detail:     err.Error(),
					Suggestion: fmt.Sprintf("Run 'shopctl logs %s' to inspect the workload", res.Name),
					ExitCode:   output.ExitTimeout,
				}
			}
		}
		cancel()
		printer.Info("  restarted %s", res.Name)
	}

	printer.Success("Workloads restarted successfully")
	printer.PrintHints("restart")
	return nil
}
