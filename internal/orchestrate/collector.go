package orchestrate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shopcarts-project/shopctl/internal/kube"
	"github.com/shopcarts-project/shopctl/internal/plan"
)

// SnapshotSource provides the cluster-state queries used for failure
// diagnostics. Implemented by kube.Client.
type SnapshotSource interface {
	ListPods(ctx context.Context) ([]kube.PodStatus, error)
	ListServices(ctx context.Context) ([]kube.ServiceStatus, error)
	ListEndpoints(ctx context.Context) ([]kube.EndpointStatus, error)
	RecentEvents(ctx context.Context) (string, error)
	LogTail(ctx context.Context, kind plan.Kind, name string, lines int) (string, error)
}

// Diagnostics is a best-effort snapshot of cluster state taken after a
// failed run. Sub-collections that could not be gathered are recorded
// as placeholder entries in Errors.
type Diagnostics struct {
	Pods      []kube.PodStatus      `json:"pods,omitempty"`
	Services  []kube.ServiceStatus  `json:"services,omitempty"`
	Endpoints []kube.EndpointStatus `json:"endpoints,omitempty"`
	Events    string                `json:"events,omitempty"`
	LogTail   string                `json:"log_tail,omitempty"`
	Errors    map[string]string     `json:"errors,omitempty"`
}

// Collector gathers failure diagnostics from the cluster
type Collector struct {
	source    SnapshotSource
	logger    *slog.Logger
	tailLines int
	timeout   time.Duration
}

// NewCollector creates a diagnostics collector
func NewCollector(source SnapshotSource, logger *slog.Logger) *Collector {
	return &Collector{
		source:    source,
		logger:    logger,
		tailLines: 50,
		timeout:   15 * time.Second,
	}
}

// Collect gathers a snapshot for operator-facing output. It never
// fails: every sub-collection error becomes a placeholder entry, since
// diagnostics must not mask the original failure. The snapshot is
// taken on a fresh deadline detached from the (possibly cancelled)
// run context.
func (c *Collector) Collect(ctx context.Context, failed *plan.Resource) *Diagnostics {
	snapCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	diag := &Diagnostics{Errors: make(map[string]string)}
	var mu sync.Mutex
	record := func(name string, err error) {
		c.logger.Debug("diagnostic sub-collection failed", "collection", name, "error", err)
		mu.Lock()
		diag.Errors[name] = "unavailable: " + err.Error()
		mu.Unlock()
	}

	var g errgroup.Group

	g.Go(func() error {
		pods, err := c.source.ListPods(snapCtx)
		if err != nil {
			record("pods", err)
			return nil
		}
		diag.Pods = pods
		return nil
	})

	g.Go(func() error {
		services, err := c.source.ListServices(snapCtx)
		if err != nil {
			record("services", err)
			return nil
		}
		diag.Services = services
		return nil
	})

	g.Go(func() error {
		endpoints, err := c.source.ListEndpoints(snapCtx)
		if err != nil {
			record("endpoints", err)
			return nil
		}
		diag.Endpoints = endpoints
		return nil
	})

	g.Go(func() error {
		events, err := c.source.RecentEvents(snapCtx)
		if err != nil {
			record("events", err)
			return nil
		}
		diag.Events = events
		return nil
	})

	if failed != nil && failed.Kind.IsWorkload() {
		g.Go(func() error {
			tail, err := c.source.LogTail(snapCtx, failed.Kind, failed.Name, c.tailLines)
			if err != nil {
				record("logs", err)
				return nil
			}
			diag.LogTail = tail
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes
	_ = g.Wait()

	if len(diag.Errors) == 0 {
		diag.Errors = nil
	}
	return diag
}
