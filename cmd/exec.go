package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/output"
)

var execCmd = &cobra.Command{
	Use:   "exec <pod> -- <command...>",
	Short: "Execute a command in a running pod",
	Long: `Run a command inside a running pod.

Uses 'kubectl exec' under the hood.

Examples:
  shopctl exec shopcarts-0 -- sh
  shopctl exec postgres-0 -- psql -U postgres
  shopctl exec shopcarts-7d4f9 -- env`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	pod := args[0]

	// Get command to execute (everything after --)
	var execArgs []string
	if cmd.ArgsLenAtDash() > 0 {
		execArgs = args[cmd.ArgsLenAtDash():]
	} else if len(args) > 1 {
		execArgs = args[1:]
	} else {
		return &output.CLIError{
			Summary:    "no command specified",
			Suggestion: "Usage: shopctl exec <pod> -- <command>",
			ExitCode:   output.ExitUsageError,
		}
	}

	client := newKubeClient()

	ctx := context.Background()
	return client.Exec(ctx, pod, execArgs, os.Stdout, os.Stderr)
}
