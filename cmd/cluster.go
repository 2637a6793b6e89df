package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/k3d"
	"github.com/shopcarts-project/shopctl/internal/kube"
	"github.com/shopcarts-project/shopctl/internal/output"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Manage the local k3d cluster",
	Long: `Create and delete the k3d cluster that hosts the application.

The cluster is created with a local image registry and load balancer
port mappings so the application is reachable from the host.

Example usage:
  shopctl cluster create       # Create the cluster and registry
  shopctl cluster list         # List k3d clusters
  shopctl cluster rm           # Delete the cluster`,
}

var clusterCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the k3d cluster with a local registry",
	Long: `Create the k3d cluster with a local image registry and load
balancer port mappings.

Creating a cluster that already exists is an error unless
--ignore-existing is set, in which case the existing cluster is kept
as is.

Examples:
  shopctl cluster create               # Create with configured defaults
  shopctl cluster create --agents 3    # Create with three agent nodes
  shopctl cluster create --ignore-existing`,
	RunE: runClusterCreate,
}

var clusterListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List k3d clusters",
	RunE:    runClusterList,
}

var clusterRmCmd = &cobra.Command{
	Use:     "rm",
	Aliases: []string{"delete"},
	Short:   "Delete the k3d cluster",
	Long: `Delete the k3d cluster along with everything deployed on it.

This removes the cluster nodes, the local registry, and all workloads.
Deleting a cluster that does not exist is not an error.`,
	RunE: runClusterRm,
}

// teardownCmd is a top-level alias for 'cluster rm'
var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Delete the k3d cluster (alias for 'cluster rm')",
	RunE:  runClusterRm,
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(teardownCmd)
	clusterCmd.AddCommand(clusterCreateCmd)
	clusterCmd.AddCommand(clusterListCmd)
	clusterCmd.AddCommand(clusterRmCmd)

	clusterCreateCmd.Flags().Int("agents", 0, "number of agent nodes (default from config)")
	clusterCreateCmd.Flags().Bool("ignore-existing", false, "keep an already existing cluster instead of failing")
	clusterCreateCmd.Flags().Duration("timeout", 5*time.Minute, "timeout for cluster creation")
}

func newK3dClient() *k3d.Client {
	executor := kube.NewExecutor(getProjectRoot(), logger, dryRun)
	return k3d.NewClient(executor, logger)
}

func runClusterCreate(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	client := newK3dClient()

	agents := cfg.Cluster.Agents
	if flagAgents, _ := cmd.Flags().GetInt("agents"); flagAgents > 0 {
		agents = flagAgents
	}
	ignoreExisting, _ := cmd.Flags().GetBool("ignore-existing")

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	printer.Header("Creating Cluster")
	printer.Info("  cluster:  %s", printer.Bold(cfg.Cluster.Name))
	printer.Info("  registry: %s", cfg.RegistryAddr())
	printer.Info("  agents:   %d", agents)
	fmt.Println()

	err := client.Create(ctx, k3d.CreateOptions{
		Name:           cfg.Cluster.Name,
		Agents:         agents,
		RegistryName:   cfg.Registry.Host,
		RegistryPort:   cfg.Registry.Port,
		HTTPPort:       cfg.Cluster.HTTPPort,
		HTTPSPort:      cfg.Cluster.HTTPSPort,
		IgnoreExisting: ignoreExisting,
	})
	if err != nil {
		return &output.CLIError{
			Summary:    "cluster creation failed",
			Detail:     err.Error(),
			Suggestion: "Check that docker is running and the k3d binary is installed",
			ExitCode:   output.ExitClusterError,
		}
	}

	printer.Success("Cluster '%s' is ready", cfg.Cluster.Name)
	printer.PrintHints("cluster create")
	return nil
}

func runClusterList(cmd *cobra.Command, args []string) error {
	client := newK3dClient()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clusters, err := client.List(ctx)
	if err != nil {
		return &output.CLIError{
			Summary:    "failed listing clusters",
			Detail:     err.Error(),
			Suggestion: "Check that docker is running and the k3d binary is installed",
			ExitCode:   output.ExitClusterError,
		}
	}

	table := output.NewTable([]string{"NAME", "SERVERS", "AGENTS"})
	for _, c := range clusters {
		table.AddRow([]string{c.Name, fmt.Sprintf("%d", c.ServersCount), fmt.Sprintf("%d", c.AgentsCount)})
	}
	table.Render()
	return nil
}

func runClusterRm(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	client := newK3dClient()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	exists, err := client.Exists(ctx, cfg.Cluster.Name)
	if err != nil {
		return &output.CLIError{
			Summary:    "failed checking cluster state",
			Detail:     err.Error(),
			Suggestion: "Check that docker is running and the k3d binary is installed",
			ExitCode:   output.ExitClusterError,
		}
	}
	if !exists {
		printer.Info("Cluster '%s' does not exist, nothing to do", cfg.Cluster.Name)
		return nil
	}

	printer.Info("Deleting cluster '%s'", cfg.Cluster.Name)
	if err := client.Delete(ctx, cfg.Cluster.Name); err != nil {
		return &output.CLIError{
			Summary:    "cluster deletion failed",
			Detail:     err.Error(),
			Suggestion: "Run 'k3d cluster delete " + cfg.Cluster.Name + "' manually to inspect the error",
			ExitCode:   output.ExitClusterError,
		}
	}

	printer.Success("Cluster '%s' deleted", cfg.Cluster.Name)
	printer.PrintHints("cluster rm")
	return nil
}
