package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/kube"
	"github.com/shopcarts-project/shopctl/internal/output"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build and push the application image",
	Long: `Build the application's Docker image and push it to the cluster's
local registry.

The image is tagged for the registry created by 'shopctl cluster create'
so the in-cluster workloads can pull it.

Examples:
  shopctl build                # Build and push with configured tag
  shopctl build --tag v2       # Build with a specific tag
  shopctl build --no-cache     # Build without Docker cache
  shopctl build --no-push      # Build only, skip the registry push`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("tag", "", "image tag (default from config)")
	buildCmd.Flags().Bool("no-cache", false, "build without cache")
	buildCmd.Flags().Bool("pull", false, "pull base images before building")
	buildCmd.Flags().Bool("no-push", false, "skip pushing to the local registry")
	buildCmd.Flags().Duration("timeout", 30*time.Minute, "timeout for the build")
}

func runBuild(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	executor := kube.NewExecutor(getProjectRoot(), logger, dryRun)

	tag := cfg.Image.Tag
	if flagTag, _ := cmd.Flags().GetString("tag"); flagTag != "" {
		tag = flagTag
	}

	// The registry is published on localhost from the host's viewpoint
	imageRef := fmt.Sprintf("localhost:%d/%s:%s", cfg.Registry.Port, cfg.Image.Name, tag)

	noCache, _ := cmd.Flags().GetBool("no-cache")
	pull, _ := cmd.Flags().GetBool("pull")
	noPush, _ := cmd.Flags().GetBool("no-push")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	printer.Header("Building Image")
	printer.Info("  image: %s", printer.Bold(imageRef))
	fmt.Println()

	buildArgs := []string{"build", "-t", imageRef}
	if noCache {
		buildArgs = append(buildArgs, "--no-cache")
	}
	if pull {
		buildArgs = append(buildArgs, "--pull")
	}
	buildArgs = append(buildArgs, getProjectRoot())

	if err := executor.Run(ctx, "docker", buildArgs); err != nil {
		printer.Error("Build failed: %v", err)
		return &output.CLIError{
			Summary:    "image build failed",
			Detail:     err.Error(),
			Suggestion: "Check the Dockerfile and build output above",
			ExitCode:   output.ExitGeneral,
		}
	}
	printer.Success("Image built")

	if noPush {
		return nil
	}

	printer.Info("Pushing %s", imageRef)
	if err := executor.Run(ctx, "docker", []string{"push", imageRef}); err != nil {
		printer.Error("Push failed: %v", err)
		return &output.CLIError{
			Summary:    "image push failed",
			Detail:     err.Error(),
			Suggestion: "Ensure the registry is running: shopctl cluster create",
			ExitCode:   output.ExitClusterError,
		}
	}

	printer.Success("Image pushed to local registry")
	printer.PrintHints("build")
	return nil
}
