package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/orchestrate"
	"github.com/shopcarts-project/shopctl/internal/output"
	"github.com/shopcarts-project/shopctl/internal/plan"
	"github.com/shopcarts-project/shopctl/internal/release"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [resources...]",
	Short: "Deploy resources in dependency order",
	Long: `Apply the application's Kubernetes manifests in dependency order.

Each resource is applied with create-or-update semantics and then
gated on its readiness condition before the next one starts. The first
failure halts the run and prints a cluster diagnostics snapshot.

If no resources are specified, deploys the full default set.

Examples:
  shopctl deploy                      # Deploy everything
  shopctl deploy postgres             # Deploy postgres and its dependencies
  shopctl deploy shopcarts --no-deps  # Deploy only the app workload
  shopctl deploy --plan custom.yaml   # Deploy from a plan file
  shopctl deploy --verify             # Warn about drift from the last deploy`,
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: completeResourceNames,
	RunE:              runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().Bool("no-deps", false, "don't deploy dependency resources")
	deployCmd.Flags().String("plan", "", "deploy from a YAML plan file instead of the built-in set")
	deployCmd.Flags().Duration("timeout", 10*time.Minute, "overall deploy timeout")
	deployCmd.Flags().Bool("verify", false, "report manifest drift against the last recorded deploy")
	deployCmd.Flags().Bool("no-record", false, "skip writing a release record on success")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	printer := newPrinter()

	registry, err := loadRegistry(cmd)
	if err != nil {
		return err
	}
	resolver := plan.NewResolver(registry)

	// Determine which resources to deploy
	var names []string
	if len(args) > 0 {
		names = args
	} else {
		names = cfg.Defaults.Resources
	}

	noDeps, _ := cmd.Flags().GetBool("no-deps")
	var p *plan.Plan

	if noDeps {
		var resources []*plan.Resource
		for _, name := range names {
			res, ok := registry.Get(name)
			if !ok {
				return &output.CLIError{
					Summary:    fmt.Sprintf("unknown resource: %s", name),
					Suggestion: "Run 'shopctl list' to see available resources",
					ExitCode:   output.ExitUsageError,
				}
			}
			resources = append(resources, res)
		}
		p = &plan.Plan{Resources: resources}
	} else {
		p, err = resolver.Resolve(names)
		if err != nil {
			return &output.CLIError{
				Summary:    "failed resolving dependencies",
				Detail:     err.Error(),
				Suggestion: "Check resource definitions with 'shopctl list --deps'",
				ExitCode:   output.ExitUsageError,
			}
		}
	}

	// Apply the configured poll interval where the plan has none
	if cfg.Defaults.ProbeInterval > 0 {
		for _, res := range p.Resources {
			if res.Readiness.PollInterval == 0 {
				res.Readiness.PollInterval = cfg.Defaults.ProbeInterval
			}
		}
	}

	// Drift check against the last recorded deploy
	verify, _ := cmd.Flags().GetBool("verify")
	if verify {
		warnDrift(printer)
	}

	// Print what we're going to do
	printer.Header("Deploying Resources")
	for _, res := range p.Resources {
		printer.Info("  • %s: %s", printer.Bold(res.Name), res.Description)
	}
	fmt.Println()

	client := newKubeClient()
	probe := orchestrate.NewProbe(client, logger)
	collector := orchestrate.NewCollector(client, logger)
	orch := orchestrate.NewOrchestrator(client, probe, collector, logger)

	orch.OnProgress(func(res *plan.Resource, position, total int) {
		printer.Info("[%d/%d] %s (%s)", position, total, res.Name, res.Kind)
	})

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if !cmd.Flags().Changed("timeout") && cfg.Defaults.DeployTimeout > 0 {
		timeout = cfg.Defaults.DeployTimeout
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report, runErr := orch.Run(ctx, p)
	if runErr != nil {
		return deployFailure(printer, report, runErr)
	}

	printer.Success("All %d resources deployed in %s", len(report.Results), report.Elapsed.Round(time.Millisecond))

	noRecord, _ := cmd.Flags().GetBool("no-record")
	if !noRecord && !dryRun {
		if dir, err := writeReleaseRecord(p, report); err != nil {
			printer.Warning("Could not write release record: %v", err)
		} else {
			logger.Debug("release record written", "dir", dir)
		}
	}

	printer.PrintHints("deploy")
	return nil
}

// loadRegistry returns the resource registry, honoring --plan
func loadRegistry(cmd *cobra.Command) (*plan.Registry, error) {
	planFile, _ := cmd.Flags().GetString("plan")
	if planFile == "" {
		return plan.NewRegistry(), nil
	}

	registry, err := plan.LoadFile(planFile)
	if err != nil {
		return nil, &output.CLIError{
			Summary:    fmt.Sprintf("invalid plan file: %s", planFile),
			Detail:     err.Error(),
			Suggestion: "Check the plan file syntax",
			ExitCode:   output.ExitPlanError,
		}
	}
	return registry, nil
}

// warnDrift compares current manifests against the last release record
func warnDrift(printer *output.Printer) {
	store := release.NewStore(cfg.ReleaseDir())
	latest, err := store.Latest()
	if err != nil || latest == nil {
		printer.Info("No previous deploy recorded, skipping drift check")
		return
	}

	drifted, err := latest.Verify(getManifestDir())
	if err != nil {
		printer.Warning("Drift check failed: %v", err)
		return
	}
	if len(drifted) == 0 {
		printer.Info("Manifests unchanged since last deploy (%s)", latest.CreatedAt.Format(time.RFC3339))
		return
	}
	printer.Warning("Manifests changed since last deploy: %s", strings.Join(drifted, ", "))
}

// writeReleaseRecord persists a record of what was just deployed
func writeReleaseRecord(p *plan.Plan, report *orchestrate.RunReport) (string, error) {
	rec := release.NewRecord(version, cfg.Cluster.Name, cfg.Kube.Namespace)
	rec.ImageTag = cfg.Image.Tag

	elapsed := make(map[string]time.Duration, len(report.Results))
	for _, res := range report.Results {
		elapsed[res.Resource] = res.Elapsed
	}

	for _, res := range p.Resources {
		path := res.Manifest
		if !filepath.IsAbs(path) {
			path = filepath.Join(getManifestDir(), path)
		}
		checksum, err := release.FileChecksum(path)
		if err != nil {
			return "", fmt.Errorf("checksum for %s: %w", res.Name, err)
		}
		rec.AddResource(release.ResourceRecord{
			Name:     res.Name,
			Kind:     string(res.Kind),
			Manifest: res.Manifest,
			Checksum: checksum,
			Elapsed:  elapsed[res.Name],
		})
	}
	rec.Finalize()

	store := release.NewStore(cfg.ReleaseDir())
	return store.Write(rec)
}

// deployFailure turns a failed run into a CLIError and prints diagnostics
func deployFailure(printer *output.Printer, report *orchestrate.RunReport, runErr error) error {
	var invalidErr *plan.InvalidPlanError
	if errors.As(runErr, &invalidErr) {
		return &output.CLIError{
			Summary:    "invalid deploy plan",
			Detail:     runErr.Error(),
			Suggestion: "Check resource definitions with 'shopctl list --deps'",
			ExitCode:   output.ExitPlanError,
		}
	}

	if report != nil && report.Diagnostics != nil {
		fmt.Println()
		printDiagnostics(printer, report.Diagnostics)
	}

	summary := "deployment failed"
	suggestion := "Run 'shopctl status' to inspect the cluster"
	exitCode := output.ExitKubectlError

	var timeoutErr *orchestrate.TimeoutError
	switch {
	case errors.As(runErr, &timeoutErr):
		summary = fmt.Sprintf("resource '%s' did not become ready within %s", timeoutErr.Resource, timeoutErr.Timeout)
		suggestion = fmt.Sprintf("Run 'shopctl logs %s' to inspect the workload", timeoutErr.Resource)
		exitCode = output.ExitTimeout
	case errors.Is(runErr, context.Canceled):
		summary = "deployment cancelled"
		suggestion = "Re-run 'shopctl deploy' to continue; already applied resources are unchanged"
		exitCode = output.ExitGeneral
	case report != nil && report.FailedAt != "":
		summary = fmt.Sprintf("failed applying resource '%s'", report.FailedAt)
	}

	return &output.CLIError{
		Summary:    summary,
		Detail:     runErr.Error(),
		Suggestion: suggestion,
		ExitCode:   exitCode,
	}
}

// printDiagnostics renders the cluster snapshot taken after a failure
func printDiagnostics(printer *output.Printer, diag *orchestrate.Diagnostics) {
	printer.Header("Cluster State After Failure")

	if len(diag.Pods) > 0 {
		table := output.NewTable([]string{"POD", "PHASE", "READY", "RESTARTS", "REASON"})
		for _, pod := range diag.Pods {
			reason := pod.Reason
			if reason == "" {
				reason = "-"
			}
			table.AddRow([]string{
				pod.Name,
				printer.StatusBadge(pod.Phase) + " " + pod.Phase,
				pod.Ready,
				fmt.Sprintf("%d", pod.Restarts),
				reason,
			})
		}
		table.Render()
		fmt.Println()
	}

	if len(diag.Endpoints) > 0 {
		table := output.NewTable([]string{"SERVICE", "ENDPOINTS", "NOT READY"})
		for _, ep := range diag.Endpoints {
			addrs := strings.Join(ep.Addresses, ", ")
			if addrs == "" {
				addrs = "-"
			}
			notReady := strings.Join(ep.NotReady, ", ")
			if notReady == "" {
				notReady = "-"
			}
			table.AddRow([]string{ep.Name, addrs, notReady})
		}
		table.Render()
		fmt.Println()
	}

	if diag.Events != "" {
		printer.Header("Recent Events")
		fmt.Println(diag.Events)
	}

	if diag.LogTail != "" {
		printer.Header("Log Tail")
		fmt.Println(diag.LogTail)
	}

	for scope, msg := range diag.Errors {
		printer.Warning("%s: %s", scope, msg)
	}
}

// completeResourceNames provides shell completion for resource names
func completeResourceNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	registry := plan.NewRegistry()
	names := registry.Names()

	// Filter out already specified resources
	seen := make(map[string]bool)
	for _, arg := range args {
		seen[arg] = true
	}

	var completions []string
	for _, name := range names {
		if !seen[name] {
			completions = append(completions, name)
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}
