package orchestrate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopcarts-project/shopctl/internal/kube"
	"github.com/shopcarts-project/shopctl/internal/plan"
)

// Applier applies one manifest to the cluster. Implemented by
// kube.Client.
type Applier interface {
	Apply(ctx context.Context, manifest string) (kube.Result, error)
}

// ProgressFunc is called before each resource is applied so the CLI
// can report progress
type ProgressFunc func(res *plan.Resource, position, total int)

// Orchestrator applies a plan's resources strictly in order, gating
// each on its readiness condition. The first failure halts the run;
// there is no rollback and no automatic retry.
type Orchestrator struct {
	applier   Applier
	probe     *Probe
	collector *Collector
	logger    *slog.Logger
	progress  ProgressFunc
}

// NewOrchestrator creates an orchestrator from its collaborators
func NewOrchestrator(applier Applier, probe *Probe, collector *Collector, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		applier:   applier,
		probe:     probe,
		collector: collector,
		logger:    logger,
	}
}

// OnProgress registers a progress callback
func (o *Orchestrator) OnProgress(fn ProgressFunc) {
	o.progress = fn
}

// Run executes the plan. The plan is validated before any cluster
// operation: a structural problem yields InvalidPlanError and a nil
// report. Otherwise a report is always returned; its Err field carries
// the cause for non-succeeded statuses.
func (o *Orchestrator) Run(ctx context.Context, p *plan.Plan) (*RunReport, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	report := &RunReport{
		Status:  StatusSucceeded,
		Results: make([]ExecutionResult, 0, len(p.Resources)),
	}

	for i, res := range p.Resources {
		if o.progress != nil {
			o.progress(res, i+1, len(p.Resources))
		}

		o.logger.Info("applying resource",
			"resource", res.Name,
			"kind", res.Kind,
			"manifest", res.Manifest,
		)

		applyRes, err := o.applier.Apply(ctx, res.Manifest)
		if err != nil {
			return o.fail(ctx, report, res, applyRes, err, start), err
		}

		result := ExecutionResult{
			Resource:  res.Name,
			Kind:      res.Kind,
			Succeeded: true,
			ExitCode:  applyRes.ExitCode,
			Stdout:    string(applyRes.Stdout),
			Stderr:    string(applyRes.Stderr),
			Elapsed:   applyRes.Elapsed,
		}

		if res.Readiness.Enabled() {
			waitStart := time.Now()
			if err := o.probe.Wait(ctx, res); err != nil {
				result.Succeeded = false
				result.Elapsed += time.Since(waitStart)
				report.Results = append(report.Results, result)
				return o.gateFailure(ctx, report, res, err, start), err
			}
			result.Elapsed += time.Since(waitStart)
		}

		report.Results = append(report.Results, result)
	}

	report.Elapsed = time.Since(start)
	o.logger.Info("plan applied",
		"resources", len(report.Results),
		"elapsed", report.Elapsed,
	)
	return report, nil
}

// fail finalizes the report after a failed apply
func (o *Orchestrator) fail(ctx context.Context, report *RunReport, res *plan.Resource, applyRes kube.Result, err error, start time.Time) *RunReport {
	result := ExecutionResult{
		Resource: res.Name,
		Kind:     res.Kind,
		ExitCode: applyRes.ExitCode,
		Stdout:   string(applyRes.Stdout),
		Stderr:   string(applyRes.Stderr),
		Elapsed:  applyRes.Elapsed,
	}
	report.Results = append(report.Results, result)

	report.Status = StatusFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		report.Status = StatusCancelled
	}
	return o.finalize(ctx, report, res, err, start)
}

// gateFailure finalizes the report after a readiness gate failure
func (o *Orchestrator) gateFailure(ctx context.Context, report *RunReport, res *plan.Resource, err error, start time.Time) *RunReport {
	var timeoutErr *TimeoutError
	switch {
	case errors.As(err, &timeoutErr):
		report.Status = StatusTimedOut
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		report.Status = StatusCancelled
	default:
		report.Status = StatusFailed
	}
	return o.finalize(ctx, report, res, err, start)
}

func (o *Orchestrator) finalize(ctx context.Context, report *RunReport, res *plan.Resource, err error, start time.Time) *RunReport {
	report.FailedAt = res.Name
	report.Err = err
	report.Elapsed = time.Since(start)

	o.logger.Error("run halted",
		"resource", res.Name,
		"status", report.Status,
		"error", err,
	)

	if o.collector != nil {
		report.Diagnostics = o.collector.Collect(ctx, res)
	}
	return report
}
