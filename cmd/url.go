package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/output"
)

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the application URL",
	Long: `Print the URL where the deployed application can be reached.

The URL is derived from the configured ingress base URL. With --wait,
the command polls until the ingress has a bound address.

Examples:
  shopctl url                  # Print the app URL
  shopctl url --wait           # Wait for the ingress address first
  shopctl url --address        # Print the raw ingress address instead`,
	RunE: runURL,
}

func init() {
	rootCmd.AddCommand(urlCmd)

	urlCmd.Flags().Bool("wait", false, "wait for the ingress address to be bound")
	urlCmd.Flags().Bool("address", false, "print the raw ingress address instead of the URL")
	urlCmd.Flags().Duration("timeout", 60*time.Second, "timeout when waiting for the address")
}

func runURL(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	client := newKubeClient()

	wait, _ := cmd.Flags().GetBool("wait")
	rawAddress, _ := cmd.Flags().GetBool("address")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	addr, err := client.IngressAddress(ctx, "shopcarts-ingress")
	if err != nil {
		return &output.CLIError{
			Summary:    "failed reading ingress address",
			Detail:     err.Error(),
			Suggestion: "Run 'shopctl deploy' first, or 'shopctl status' to inspect the cluster",
			ExitCode:   output.ExitKubectlError,
		}
	}

	if addr.Empty() && wait {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for addr.Empty() {
			select {
			case <-ctx.Done():
				return &output.CLIError{
					Summary:    "ingress address not bound",
					Detail:     fmt.Sprintf("no address after %s", timeout),
					Suggestion: "Check the ingress controller with 'shopctl status'",
					ExitCode:   output.ExitTimeout,
				}
			case <-ticker.C:
			}
			addr, err = client.IngressAddress(ctx, "shopcarts-ingress")
			if err != nil {
				return err
			}
		}
	}

	if rawAddress {
		if addr.Empty() {
			return &output.CLIError{
				Summary:    "ingress has no bound address yet",
				Suggestion: "Use --wait, or check the ingress controller with 'shopctl status'",
				ExitCode:   output.ExitGeneral,
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), addr.Addr())
		return nil
	}

	if addr.Empty() {
		printer.Warning("Ingress address not bound yet, the URL may not be reachable")
	}

	fmt.Fprintln(cmd.OutOrStdout(), cfg.Ingress.BaseURL)
	printer.PrintHints("url")
	return nil
}
