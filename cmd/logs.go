package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/kube"
	"github.com/shopcarts-project/shopctl/internal/plan"
)

var logsCmd = &cobra.Command{
	Use:   "logs <workload>",
	Short: "Tail logs for a workload",
	Long: `Stream logs from a workload's pods.

Examples:
  shopctl logs shopcarts       # Tail app logs
  shopctl logs shopcarts -f    # Follow log output
  shopctl logs shopcarts -n 100   # Show last 100 lines
  shopctl logs postgres --since 1h   # Show logs from last hour`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeWorkloadNames,
	RunE:              runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().BoolP("follow", "f", false, "follow log output")
	logsCmd.Flags().IntP("tail", "n", 100, "number of lines to show")
	logsCmd.Flags().BoolP("timestamps", "t", false, "show timestamps")
	logsCmd.Flags().String("since", "", "show logs since duration (e.g., 2h, 30m)")
	logsCmd.Flags().StringP("container", "c", "", "container name within the pod")
}

func runLogs(cmd *cobra.Command, args []string) error {
	target := args[0]
	printer := newPrinter()

	// Resolve a resource name to its workload target when possible
	registry := plan.NewRegistry()
	if res, ok := registry.Get(target); ok && !res.Kind.IsWorkload() {
		printer.Warning("'%s' is a %s, not a workload", target, res.Kind)
	}

	// Get flags
	follow, _ := cmd.Flags().GetBool("follow")
	tail, _ := cmd.Flags().GetInt("tail")
	timestamps, _ := cmd.Flags().GetBool("timestamps")
	since, _ := cmd.Flags().GetString("since")
	container, _ := cmd.Flags().GetString("container")

	client := newKubeClient()

	// Create context (no timeout for follow mode)
	var ctx context.Context
	var cancel context.CancelFunc
	if follow {
		ctx, cancel = context.WithCancel(context.Background())
	} else {
		ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	}
	defer cancel()

	if err := client.Logs(ctx, target, kube.LogsOptions{
		Follow:     follow,
		Tail:       tail,
		Timestamps: timestamps,
		Since:      since,
		Container:  container,
	}, os.Stdout, os.Stderr); err != nil {
		return err
	}

	printer.PrintHints("logs")
	return nil
}

// completeWorkloadNames provides shell completion for workload resource names
func completeWorkloadNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	registry := plan.NewRegistry()
	var completions []string
	for _, res := range registry.All() {
		if res.Kind.IsWorkload() {
			completions = append(completions, res.Name)
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}
