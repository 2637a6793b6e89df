// Package orchestrate sequences resource application against the
// cluster with readiness gating and failure diagnostics
package orchestrate

import (
	"time"

	"github.com/shopcarts-project/shopctl/internal/plan"
)

// RunStatus is the terminal state of one orchestration run
type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
	StatusTimedOut  RunStatus = "timed-out"
	StatusCancelled RunStatus = "cancelled"
)

// ExecutionResult records the outcome of applying one resource.
// Immutable once produced.
type ExecutionResult struct {
	Resource  string        `json:"resource"`
	Kind      plan.Kind     `json:"kind"`
	Succeeded bool          `json:"succeeded"`
	ExitCode  int           `json:"exit_code"`
	Stdout    string        `json:"stdout,omitempty"`
	Stderr    string        `json:"stderr,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// RunReport is the aggregate outcome of a plan run, owned by a single
// orchestrator invocation
type RunReport struct {
	Status      RunStatus         `json:"status"`
	FailedAt    string            `json:"failed_at,omitempty"`
	Err         error             `json:"-"`
	Results     []ExecutionResult `json:"results"`
	Diagnostics *Diagnostics      `json:"diagnostics,omitempty"`
	Elapsed     time.Duration     `json:"elapsed"`
}

// Succeeded reports whether every resource was applied and gated
func (r *RunReport) Succeeded() bool {
	return r.Status == StatusSucceeded
}
