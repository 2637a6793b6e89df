package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/output"
	"github.com/shopcarts-project/shopctl/internal/release"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past deploy records",
	Long: `List the release records written by successful deploys, newest first.

Examples:
  shopctl history              # List past deploys
  shopctl history --json       # Output as JSON
  shopctl history --verify     # Check the latest deploy for manifest drift`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.Flags().Bool("verify", false, "check the latest record for manifest drift")
	historyCmd.Flags().Int("limit", 10, "maximum number of records to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	store := release.NewStore(cfg.ReleaseDir())

	records, err := store.List()
	if err != nil {
		return &output.CLIError{
			Summary:    "failed reading release records",
			Detail:     err.Error(),
			ExitCode:   output.ExitGeneral,
			Suggestion: "Check permissions on " + cfg.ReleaseDir(),
		}
	}

	if len(records) == 0 {
		printer.Info("No deploys recorded yet")
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	printer.Header("Deploy History")
	table := output.NewTable([]string{"DEPLOYED AT", "IMAGE TAG", "RESOURCES", "CHECKSUM"})
	for _, rec := range records {
		checksum := rec.Checksum
		if len(checksum) > 19 {
			checksum = checksum[:19]
		}
		table.AddRow([]string{
			rec.CreatedAt.Local().Format(time.RFC3339),
			rec.ImageTag,
			fmt.Sprintf("%d", len(rec.Resources)),
			checksum,
		})
	}
	table.Render()
	fmt.Println()

	verify, _ := cmd.Flags().GetBool("verify")
	if verify {
		latest := records[0]
		drifted, err := latest.Verify(getManifestDir())
		if err != nil {
			printer.Warning("Verify failed: %v", err)
		} else if len(drifted) == 0 {
			printer.Success("Latest deploy matches current manifests")
		} else {
			printer.Warning("Manifests changed since latest deploy: %v", drifted)
		}
	}

	printer.PrintHints("history")
	return nil
}
