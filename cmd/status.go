package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/kube"
	"github.com/shopcarts-project/shopctl/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pod and service status",
	Long: `Display the status of pods and services in the application namespace.

Examples:
  shopctl status               # Show pod and service status
  shopctl status --json        # Output as JSON
  shopctl status --watch       # Continuous status updates`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("json", false, "output as JSON")
	statusCmd.Flags().BoolP("watch", "w", false, "watch for changes")
	statusCmd.Flags().Duration("interval", 2*time.Second, "watch interval")
}

func runStatus(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	watch, _ := cmd.Flags().GetBool("watch")
	interval, _ := cmd.Flags().GetDuration("interval")

	if watch {
		return watchStatus(interval, jsonOutput)
	}

	return showStatus(jsonOutput)
}

func showStatus(jsonOutput bool) error {
	printer := newPrinter()
	client := newKubeClient()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pods, err := client.ListPods(ctx)
	if err != nil {
		// Non-fatal: the namespace might not exist yet
		logger.Debug("failed to list pods", "error", err)
	}

	services, err := client.ListServices(ctx)
	if err != nil {
		logger.Debug("failed to list services", "error", err)
	}

	if jsonOutput {
		return outputStatusJSON(pods, services)
	}

	return outputStatusTable(printer, pods, services)
}

func outputStatusJSON(pods []kube.PodStatus, services []kube.ServiceStatus) error {
	result := struct {
		Pods     []kube.PodStatus     `json:"pods"`
		Services []kube.ServiceStatus `json:"services"`
	}{Pods: pods, Services: services}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func outputStatusTable(printer *output.Printer, pods []kube.PodStatus, services []kube.ServiceStatus) error {
	if len(pods) > 0 {
		printer.Header("Pods")

		table := output.NewTable([]string{"POD", "PHASE", "READY", "RESTARTS", "REASON"})
		for _, pod := range pods {
			phase := pod.Phase
			if pod.Reason != "" {
				phase = pod.Reason
			}
			reason := pod.Reason
			if reason == "" {
				reason = "-"
			}
			table.AddRow([]string{
				pod.Name,
				printer.StatusBadge(phase) + " " + pod.Phase,
				pod.Ready,
				fmt.Sprintf("%d", pod.Restarts),
				reason,
			})
		}
		table.Render()
		fmt.Println()
	}

	if len(services) > 0 {
		printer.Header("Services")

		table := output.NewTable([]string{"SERVICE", "TYPE", "CLUSTER-IP", "PORTS"})
		for _, svc := range services {
			ports := svc.Ports
			if ports == "" {
				ports = "-"
			}
			table.AddRow([]string{svc.Name, svc.Type, svc.ClusterIP, ports})
		}
		table.Render()
		fmt.Println()
	}

	// Summary
	if len(pods) == 0 && len(services) == 0 {
		printer.Warning("No resources found in namespace '%s'", cfg.Kube.Namespace)
	} else {
		running := 0
		for _, pod := range pods {
			if pod.Phase == "Running" && !pod.CrashLooping() {
				running++
			}
		}
		printer.Info("Pods running: %d/%d | Services: %d", running, len(pods), len(services))
	}

	printer.PrintHints("status")
	return nil
}

func watchStatus(interval time.Duration, jsonOutput bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial display
	if err := showStatus(jsonOutput); err != nil {
		return err
	}

	for range ticker.C {
		// Clear screen (ANSI escape)
		fmt.Print("\033[H\033[2J")
		if err := showStatus(jsonOutput); err != nil {
			return err
		}
	}

	return nil
}
