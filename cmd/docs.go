package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/shopcarts-project/shopctl/internal/output"
)

var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate CLI documentation",
	Hidden: true,
	Long: `Generate man pages or markdown documentation for all commands.

Examples:
  shopctl docs --format man --output ./man
  shopctl docs --format markdown --output ./docs`,
	RunE: runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)

	docsCmd.Flags().String("format", "markdown", "output format (man, markdown)")
	docsCmd.Flags().String("output", "./docs", "output directory")
}

func runDocs(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("output")

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	switch format {
	case "man":
		header := &doc.GenManHeader{Title: "SHOPCTL", Section: "1"}
		return doc.GenManTree(rootCmd, header, outDir)
	case "markdown":
		return doc.GenMarkdownTree(rootCmd, outDir)
	default:
		return &output.CLIError{
			Summary:    fmt.Sprintf("unknown docs format: %s", format),
			Suggestion: "Use --format man or --format markdown",
			ExitCode:   output.ExitUsageError,
		}
	}
}
