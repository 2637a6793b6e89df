// Package cmd contains all CLI commands for shopctl
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shopcarts-project/shopctl/internal/config"
	"github.com/shopcarts-project/shopctl/internal/kube"
	"github.com/shopcarts-project/shopctl/internal/output"
)

var (
	cfgFile    string
	verbose    bool
	quiet      bool
	dryRun     bool
	colorMode  string
	projectDir string
	cfg        *config.Config
	logger     *slog.Logger
	version    = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Shopcarts deployment CLI",
	Long: `shopctl is a CLI tool for deploying the shopcarts application onto a
local k3d Kubernetes cluster.

It applies the application's manifests in dependency order, waits for
each resource to become ready, and collects cluster diagnostics when a
deployment fails.

Example usage:
  shopctl cluster create       # Create the k3d cluster with local registry
  shopctl deploy               # Apply all resources in dependency order
  shopctl url                  # Print the application URL
  shopctl status               # Show pod and service status
  shopctl undeploy             # Delete resources in reverse order
  shopctl teardown             # Delete the whole cluster`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .shopctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "show commands without executing")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "color output (auto, always, never)")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project-dir", "", "shopcarts project directory (default: auto-detect)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("dry_run", rootCmd.PersistentFlags().Lookup("dry-run"))
	_ = viper.BindPFlag("project.root", rootCmd.PersistentFlags().Lookup("project-dir"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error

	// Setup logger
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Load configuration
	cfg, err = config.Load(cfgFile, projectDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Update logger based on config
	if cfg.Logging.Level == "debug" || verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	logger.Debug("configuration loaded",
		"project_root", cfg.Project.Root,
		"cluster", cfg.Cluster.Name,
		"namespace", cfg.Kube.Namespace,
	)

	return nil
}

// newPrinter builds a printer honoring the color and quiet flags
func newPrinter() *output.Printer {
	mode, err := output.ParseColorMode(colorMode)
	if err != nil {
		mode = output.ColorAuto
	}
	configColors := true
	if cfg != nil {
		configColors = cfg.Output.Colors
	}
	return output.NewPrinterWithOptions(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: configColors,
		Quiet:        quiet,
	})
}

// newKubeClient builds a kubectl client against the configured cluster
func newKubeClient() *kube.Client {
	executor := kube.NewExecutor(getProjectRoot(), logger, dryRun)
	return kube.NewClient(
		executor,
		cfg.Kube.Namespace,
		cfg.KubeContext(),
		getManifestDir(),
		logger,
	)
}

// getProjectRoot returns the project root directory
func getProjectRoot() string {
	if cfg != nil && cfg.Project.Root != "" {
		return cfg.Project.Root
	}
	// Try to find project root by looking for the manifest directory
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, "k8s")); err == nil {
			return dir
		}
		if _, err := os.Stat(filepath.Join(dir, ".shopctl.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd
		}
		dir = parent
	}
}

// getManifestDir returns the Kubernetes manifest directory
func getManifestDir() string {
	root := getProjectRoot()
	if cfg != nil && cfg.Manifests.Dir != "" {
		if filepath.IsAbs(cfg.Manifests.Dir) {
			return cfg.Manifests.Dir
		}
		return filepath.Join(root, cfg.Manifests.Dir)
	}
	return filepath.Join(root, "k8s")
}
