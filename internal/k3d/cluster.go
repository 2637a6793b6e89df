// Package k3d manages the local K3D cluster lifecycle for shopctl
package k3d

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopcarts-project/shopctl/internal/kube"
)

// Client wraps the k3d command line tool
type Client struct {
	executor kube.Executor
	logger   *slog.Logger
}

// CreateOptions configures cluster creation
type CreateOptions struct {
	Name         string
	Agents       int
	RegistryName string
	RegistryPort int
	HTTPPort     int
	HTTPSPort    int
	// IgnoreExisting makes creation a no-op when the cluster already
	// exists instead of failing
	IgnoreExisting bool
}

// ClusterInfo summarizes one cluster as reported by k3d
type ClusterInfo struct {
	Name          string `json:"name"`
	ServersCount  int    `json:"serversCount"`
	AgentsCount   int    `json:"agentsCount"`
	ServersActive int    `json:"serversRunning"`
	AgentsActive  int    `json:"agentsRunning"`
}

// NewClient creates a new k3d client
func NewClient(executor kube.Executor, logger *slog.Logger) *Client {
	return &Client{executor: executor, logger: logger}
}

// Create provisions a new cluster with a local registry and the
// load-balancer port mappings the ingress needs
func (c *Client) Create(ctx context.Context, opts CreateOptions) error {
	if opts.IgnoreExisting {
		exists, err := c.Exists(ctx, opts.Name)
		if err != nil {
			c.logger.Debug("could not check for existing cluster", "error", err)
		} else if exists {
			c.logger.Info("cluster already exists, skipping creation", "cluster", opts.Name)
			return nil
		}
	}

	args := []string{"cluster", "create", opts.Name}
	if opts.Agents > 0 {
		args = append(args, "--agents", fmt.Sprintf("%d", opts.Agents))
	}
	if opts.RegistryName != "" {
		args = append(args, "--registry-create",
			fmt.Sprintf("%s:0.0.0.0:%d", opts.RegistryName, opts.RegistryPort))
	}
	if opts.HTTPPort > 0 {
		args = append(args, "-p", fmt.Sprintf("%d:80@loadbalancer", opts.HTTPPort))
	}
	if opts.HTTPSPort > 0 {
		args = append(args, "-p", fmt.Sprintf("%d:443@loadbalancer", opts.HTTPSPort))
	}

	return c.executor.Run(ctx, "k3d", args)
}

// Delete removes a cluster and its registry
func (c *Client) Delete(ctx context.Context, name string) error {
	return c.executor.Run(ctx, "k3d", []string{"cluster", "delete", name})
}

// List returns all known clusters
func (c *Client) List(ctx context.Context) ([]ClusterInfo, error) {
	out, err := c.executor.RunWithOutput(ctx, "k3d", []string{"cluster", "list", "-o", "json"})
	if err != nil {
		return nil, fmt.Errorf("listing clusters: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	var clusters []ClusterInfo
	if err := json.Unmarshal(out, &clusters); err != nil {
		return nil, fmt.Errorf("parsing cluster list: %w", err)
	}
	return clusters, nil
}

// Exists reports whether a cluster with the given name is known to k3d
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	clusters, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	for _, cluster := range clusters {
		if cluster.Name == name {
			return true, nil
		}
	}
	return false, nil
}
