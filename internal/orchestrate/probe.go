package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopcarts-project/shopctl/internal/plan"
)

// ReadinessChecker answers whether a resource's readiness condition
// currently holds. Implemented by kube.Client.
type ReadinessChecker interface {
	WorkloadReady(ctx context.Context, kind plan.Kind, name string) (bool, string, error)
	EndpointsReady(ctx context.Context, name string) (bool, string, error)
	CheckCommand(ctx context.Context, command []string) (bool, error)
}

// TimeoutError reports that a readiness condition never held within
// the resource's deadline. Terminal for the current run.
type TimeoutError struct {
	Resource string
	Timeout  time.Duration
	Reason   string
}

func (e *TimeoutError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("resource %q not ready after %s: %s", e.Resource, e.Timeout, e.Reason)
	}
	return fmt.Sprintf("resource %q not ready after %s", e.Resource, e.Timeout)
}

// Probe polls the cluster until a resource's readiness condition holds
// or its deadline passes
type Probe struct {
	checker ReadinessChecker
	logger  *slog.Logger
}

// NewProbe creates a readiness probe backed by the given checker
func NewProbe(checker ReadinessChecker, logger *slog.Logger) *Probe {
	return &Probe{checker: checker, logger: logger}
}

// Wait blocks until the resource's readiness condition holds, the
// deadline passes, or the context is cancelled. The condition is
// checked once immediately, then once per poll interval. Transient
// query errors count as not-ready and are retried on the next poll.
func (p *Probe) Wait(ctx context.Context, res *plan.Resource) error {
	if !res.Readiness.Enabled() {
		return nil
	}

	timeout := res.GetTimeout()
	interval := res.Readiness.GetPollInterval()

	p.logger.Debug("waiting for readiness",
		"resource", res.Name,
		"condition", res.Readiness.Kind,
		"timeout", timeout,
		"interval", interval,
	)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastReason string
	for {
		ready, reason, err := p.check(waitCtx, res)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Debug("readiness query failed, retrying",
				"resource", res.Name, "error", err)
			reason = err.Error()
		}
		if ready {
			p.logger.Debug("resource ready", "resource", res.Name)
			return nil
		}
		if reason != "" {
			lastReason = reason
		}

		select {
		case <-waitCtx.Done():
			// Caller cancellation wins over the per-resource deadline
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TimeoutError{Resource: res.Name, Timeout: timeout, Reason: lastReason}
		case <-ticker.C:
		}
	}
}

func (p *Probe) check(ctx context.Context, res *plan.Resource) (bool, string, error) {
	switch res.Readiness.Kind {
	case plan.ReadinessRollout:
		return p.checker.WorkloadReady(ctx, res.Kind, res.Name)
	case plan.ReadinessEndpoints:
		return p.checker.EndpointsReady(ctx, res.Name)
	case plan.ReadinessCommand:
		ready, err := p.checker.CheckCommand(ctx, res.Readiness.Command)
		if err != nil || ready {
			return ready, "", err
		}
		return false, "check command exited non-zero", nil
	}
	return false, "", fmt.Errorf("unknown readiness kind: %q", res.Readiness.Kind)
}
