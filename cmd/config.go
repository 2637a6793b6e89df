package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shopcarts-project/shopctl/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Display the current shopctl configuration.

Examples:
  shopctl config               # Show all config
  shopctl config --path        # Show config file path
  shopctl config --json        # Output as JSON`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("path", false, "show config file path")
	configCmd.Flags().Bool("json", false, "output as JSON")
}

func runConfig(cmd *cobra.Command, args []string) error {
	printer := newPrinter()

	showPath, _ := cmd.Flags().GetBool("path")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if showPath {
		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			printer.Info("No config file found (using defaults)")
		} else {
			printer.Info("Config file: %s", configFile)
		}
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	// Print configuration as table
	printer.Header("Current Configuration")

	table := output.NewTable([]string{"KEY", "VALUE"})
	table.AddRow([]string{"project.root", cfg.Project.Root})
	table.AddRow([]string{"cluster.name", cfg.Cluster.Name})
	table.AddRow([]string{"cluster.agents", fmt.Sprintf("%d", cfg.Cluster.Agents)})
	table.AddRow([]string{"cluster.http_port", fmt.Sprintf("%d", cfg.Cluster.HTTPPort)})
	table.AddRow([]string{"registry.host", cfg.Registry.Host})
	table.AddRow([]string{"registry.port", fmt.Sprintf("%d", cfg.Registry.Port)})
	table.AddRow([]string{"image.name", cfg.Image.Name})
	table.AddRow([]string{"image.tag", cfg.Image.Tag})
	table.AddRow([]string{"ingress.base_url", cfg.Ingress.BaseURL})
	table.AddRow([]string{"kube.namespace", cfg.Kube.Namespace})
	table.AddRow([]string{"kube.context", cfg.KubeContext()})
	table.AddRow([]string{"manifests.dir", cfg.Manifests.Dir})
	table.AddRow([]string{"defaults.resources", fmt.Sprintf("%v", cfg.Defaults.Resources)})
	table.AddRow([]string{"logging.level", cfg.Logging.Level})
	table.AddRow([]string{"logging.format", cfg.Logging.Format})
	table.AddRow([]string{"output.colors", fmt.Sprintf("%v", cfg.Output.Colors)})
	table.AddRow([]string{"output.progress", fmt.Sprintf("%v", cfg.Output.Progress)})
	table.Render()

	// Show effective paths
	fmt.Println()
	printer.Info("Effective manifest dir: %s", getManifestDir())
	printer.Info("Image reference:        %s", cfg.ImageRef())

	printer.PrintHints("config")
	return nil
}
