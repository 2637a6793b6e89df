package kube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopcarts-project/shopctl/internal/plan"
)

// Client provides kubectl operations scoped to one namespace
type Client struct {
	executor    Executor
	namespace   string
	kubeContext string
	manifestDir string
	logger      *slog.Logger
}

// LogsOptions configures log streaming
type LogsOptions struct {
	Follow     bool
	Tail       int
	Timestamps bool
	Since      string
	Container  string
}

// PodStatus summarizes one pod for status and diagnostics output
type PodStatus struct {
	Name     string `json:"name"`
	Phase    string `json:"phase"`
	Ready    string `json:"ready"`
	Restarts int    `json:"restarts"`
	Reason   string `json:"reason,omitempty"`
}

// CrashLooping reports whether the pod is stuck in a container restart loop
func (p PodStatus) CrashLooping() bool {
	return p.Reason == "CrashLoopBackOff" || p.Reason == "ImagePullBackOff" || p.Reason == "ErrImagePull"
}

// ServiceStatus summarizes one service
type ServiceStatus struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	ClusterIP string `json:"cluster_ip"`
	Ports     string `json:"ports"`
}

// EndpointStatus summarizes the backends registered for one service
type EndpointStatus struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
	NotReady  []string `json:"not_ready,omitempty"`
}

// IngressAddress is the externally bound entry point of an ingress
type IngressAddress struct {
	IP       string `json:"ip,omitempty"`
	Hostname string `json:"hostname,omitempty"`
}

// Empty reports whether no address has been bound yet
func (a IngressAddress) Empty() bool {
	return a.IP == "" && a.Hostname == ""
}

// Addr returns the preferred address: IP when bound, hostname otherwise
func (a IngressAddress) Addr() string {
	if a.IP != "" {
		return a.IP
	}
	return a.Hostname
}

// NewClient creates a new kubectl client
func NewClient(executor Executor, namespace, kubeContext, manifestDir string, logger *slog.Logger) *Client {
	return &Client{
		executor:    executor,
		namespace:   namespace,
		kubeContext: kubeContext,
		manifestDir: manifestDir,
		logger:      logger,
	}
}

// Namespace returns the namespace this client operates in
func (c *Client) Namespace() string {
	return c.namespace
}

// ManifestPath returns the full path to a manifest file
func (c *Client) ManifestPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(c.manifestDir, filename)
}

// Apply applies a manifest file (create-or-update semantics)
func (c *Client) Apply(ctx context.Context, manifest string) (Result, error) {
	args := c.baseArgs()
	args = append(args, "apply", "-f", c.ManifestPath(manifest))
	return c.executor.RunWithResult(ctx, "kubectl", args)
}

// Delete removes the objects defined in a manifest file
func (c *Client) Delete(ctx context.Context, manifest string) (Result, error) {
	args := c.baseArgs()
	args = append(args, "delete", "-f", c.ManifestPath(manifest), "--ignore-not-found")
	return c.executor.RunWithResult(ctx, "kubectl", args)
}

// WorkloadReady reports whether a workload's rollout is complete:
// observed generation caught up, ready replicas equal to desired, and
// no pod of the namespace stuck in a crash loop. The reason describes
// what is still pending.
func (c *Client) WorkloadReady(ctx context.Context, kind plan.Kind, name string) (bool, string, error) {
	kubectlKind, err := workloadArg(kind)
	if err != nil {
		return false, "", err
	}

	args := c.baseArgs()
	args = append(args, "get", kubectlKind, name, "-o", "json")
	out, err := c.executor.RunWithOutput(ctx, "kubectl", args)
	if err != nil {
		return false, "", fmt.Errorf("querying %s/%s: %w", kubectlKind, name, err)
	}
	if len(out) == 0 {
		// dry-run mode produces no output
		return true, "", nil
	}

	var obj struct {
		Metadata struct {
			Generation int64 `json:"generation"`
		} `json:"metadata"`
		Spec struct {
			Replicas *int64 `json:"replicas"`
		} `json:"spec"`
		Status struct {
			ObservedGeneration int64 `json:"observedGeneration"`
			ReadyReplicas      int64 `json:"readyReplicas"`
			UpdatedReplicas    int64 `json:"updatedReplicas"`
		} `json:"status"`
	}
	if err := json.Unmarshal(out, &obj); err != nil {
		return false, "", fmt.Errorf("parsing %s/%s status: %w", kubectlKind, name, err)
	}

	desired := int64(1)
	if obj.Spec.Replicas != nil {
		desired = *obj.Spec.Replicas
	}

	if obj.Status.ObservedGeneration < obj.Metadata.Generation {
		return false, "rollout not observed yet", nil
	}
	if obj.Status.ReadyReplicas < desired {
		pods, podsErr := c.ListPods(ctx)
		if podsErr == nil {
			for _, pod := range pods {
				if pod.CrashLooping() {
					return false, fmt.Sprintf("pod %s is %s", pod.Name, pod.Reason), nil
				}
			}
		}
		return false, fmt.Sprintf("%d/%d replicas ready", obj.Status.ReadyReplicas, desired), nil
	}
	return true, "", nil
}

// EndpointsReady reports whether a service has at least one ready
// backend address registered
func (c *Client) EndpointsReady(ctx context.Context, service string) (bool, string, error) {
	args := c.baseArgs()
	args = append(args, "get", "endpoints", service, "-o", "json")
	out, err := c.executor.RunWithOutput(ctx, "kubectl", args)
	if err != nil {
		return false, "", fmt.Errorf("querying endpoints %s: %w", service, err)
	}
	if len(out) == 0 {
		// dry-run mode produces no output
		return true, "", nil
	}

	var obj endpointsObject
	if err := json.Unmarshal(out, &obj); err != nil {
		return false, "", fmt.Errorf("parsing endpoints %s: %w", service, err)
	}

	ep := obj.toStatus()
	if len(ep.Addresses) == 0 {
		if len(ep.NotReady) > 0 {
			return false, fmt.Sprintf("%d backend(s) not ready", len(ep.NotReady)), nil
		}
		return false, "no backends registered", nil
	}
	return true, "", nil
}

// CheckCommand runs an external readiness check; exit zero means ready
func (c *Client) CheckCommand(ctx context.Context, command []string) (bool, error) {
	if len(command) == 0 {
		return false, fmt.Errorf("empty readiness command")
	}
	_, err := c.executor.RunWithResult(ctx, command[0], command[1:])
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListPods returns pod summaries for the namespace
func (c *Client) ListPods(ctx context.Context) ([]PodStatus, error) {
	args := c.baseArgs()
	args = append(args, "get", "pods", "-o", "json")
	out, err := c.executor.RunWithOutput(ctx, "kubectl", args)
	if err != nil {
		return nil, fmt.Errorf("listing pods: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	var list podList
	if err := json.Unmarshal(out, &list); err != nil {
		return nil, fmt.Errorf("parsing pod list: %w", err)
	}

	statuses := make([]PodStatus, 0, len(list.Items))
	for _, item := range list.Items {
		statuses = append(statuses, item.toStatus())
	}
	return statuses, nil
}

// ListServices returns service summaries for the namespace
func (c *Client) ListServices(ctx context.Context) ([]ServiceStatus, error) {
	args := c.baseArgs()
	args = append(args, "get", "services", "-o", "json")
	out, err := c.executor.RunWithOutput(ctx, "kubectl", args)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	var list serviceList
	if err := json.Unmarshal(out, &list); err != nil {
		return nil, fmt.Errorf("parsing service list: %w", err)
	}

	statuses := make([]ServiceStatus, 0, len(list.Items))
	for _, item := range list.Items {
		statuses = append(statuses, item.toStatus())
	}
	return statuses, nil
}

// ListEndpoints returns endpoint summaries for the namespace
func (c *Client) ListEndpoints(ctx context.Context) ([]EndpointStatus, error) {
	args := c.baseArgs()
	args = append(args, "get", "endpoints", "-o", "json")
	out, err := c.executor.RunWithOutput(ctx, "kubectl", args)
	if err != nil {
		return nil, fmt.Errorf("listing endpoints: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	var list struct {
		Items []endpointsObject `json:"items"`
	}
	if err := json.Unmarshal(out, &list); err != nil {
		return nil, fmt.Errorf("parsing endpoint list: %w", err)
	}

	statuses := make([]EndpointStatus, 0, len(list.Items))
	for _, item := range list.Items {
		statuses = append(statuses, *item.toStatus())
	}
	return statuses, nil
}

// IngressAddress returns the address bound to an ingress, if any
func (c *Client) IngressAddress(ctx context.Context, name string) (IngressAddress, error) {
	args := c.baseArgs()
	args = append(args, "get", "ingress", name, "-o", "json")
	out, err := c.executor.RunWithOutput(ctx, "kubectl", args)
	if err != nil {
		return IngressAddress{}, fmt.Errorf("querying ingress %s: %w", name, err)
	}
	if len(out) == 0 {
		return IngressAddress{}, nil
	}

	var obj struct {
		Status struct {
			LoadBalancer struct {
				Ingress []struct {
					IP       string `json:"ip"`
					Hostname string `json:"hostname"`
				} `json:"ingress"`
			} `json:"loadBalancer"`
		} `json:"status"`
	}
	if err := json.Unmarshal(out, &obj); err != nil {
		return IngressAddress{}, fmt.Errorf("parsing ingress %s: %w", name, err)
	}

	for _, ing := range obj.Status.LoadBalancer.Ingress {
		if ing.IP != "" || ing.Hostname != "" {
			return IngressAddress{IP: ing.IP, Hostname: ing.Hostname}, nil
		}
	}
	return IngressAddress{}, nil
}

// RecentEvents returns the namespace's recent events as raw text
func (c *Client) RecentEvents(ctx context.Context) (string, error) {
	args := c.baseArgs()
	args = append(args, "get", "events", "--sort-by=.lastTimestamp")
	out, err := c.executor.RunWithOutput(ctx, "kubectl", args)
	if err != nil {
		return "", fmt.Errorf("listing events: %w", err)
	}
	return string(out), nil
}

// LogTail returns the last lines of a workload's logs
func (c *Client) LogTail(ctx context.Context, kind plan.Kind, name string, lines int) (string, error) {
	kubectlKind, err := workloadArg(kind)
	if err != nil {
		return "", err
	}

	args := c.baseArgs()
	args = append(args, "logs", fmt.Sprintf("%s/%s", kubectlKind, name),
		"--tail", fmt.Sprintf("%d", lines), "--all-containers")
	out, err := c.executor.RunWithOutput(ctx, "kubectl", args)
	if err != nil {
		return "", fmt.Errorf("tailing logs of %s/%s: %w", kubectlKind, name, err)
	}
	return string(out), nil
}

// Logs streams logs from a workload or pod
func (c *Client) Logs(ctx context.Context, target string, opts LogsOptions, stdout, stderr io.Writer) error {
	args := c.baseArgs()
	args = append(args, "logs", target)

	if opts.Follow {
		args = append(args, "-f")
	}
	if opts.Tail > 0 {
		args = append(args, "--tail", fmt.Sprintf("%d", opts.Tail))
	}
	if opts.Timestamps {
		args = append(args, "--timestamps")
	}
	if opts.Since != "" {
		args = append(args, "--since", opts.Since)
	}
	if opts.Container != "" {
		args = append(args, "-c", opts.Container)
	}

	return c.executor.RunWithPipes(ctx, "kubectl", args, stdout, stderr)
}

// Exec runs a command inside a running pod
func (c *Client) Exec(ctx context.Context, pod string, command []string, stdout, stderr io.Writer) error {
	args := c.baseArgs()
	args = append(args, "exec", pod, "--")
	args = append(args, command...)
	return c.executor.RunWithPipes(ctx, "kubectl", args, stdout, stderr)
}

// RolloutRestart triggers a fresh rollout of a workload
func (c *Client) RolloutRestart(ctx context.Context, kind plan.Kind, name string) error {
	kubectlKind, err := workloadArg(kind)
	if err != nil {
		return err
	}

	args := c.baseArgs()
	args = append(args, "rollout", "restart", fmt.Sprintf("%s/%s", kubectlKind, name))
	return c.executor.Run(ctx, "kubectl", args)
}

// CreateSecret creates a generic secret from literal values. Literals
// are passed in sorted key order so the invocation is stable.
func (c *Client) CreateSecret(ctx context.Context, name string, literals map[string]string) (Result, error) {
	keys := make([]string, 0, len(literals))
	for key := range literals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := c.baseArgs()
	args = append(args, "create", "secret", "generic", name)
	for _, key := range keys {
		args = append(args, fmt.Sprintf("--from-literal=%s=%s", key, literals[key]))
	}
	return c.executor.RunWithResult(ctx, "kubectl", args)
}

// DeleteSecret removes a secret, tolerating absence
func (c *Client) DeleteSecret(ctx context.Context, name string) error {
	args := c.baseArgs()
	args = append(args, "delete", "secret", name, "--ignore-not-found")
	_, err := c.executor.RunWithResult(ctx, "kubectl", args)
	return err
}

// baseArgs constructs the namespace and context arguments
func (c *Client) baseArgs() []string {
	var args []string
	if c.kubeContext != "" {
		args = append(args, "--context", c.kubeContext)
	}
	if c.namespace != "" {
		args = append(args, "-n", c.namespace)
	}
	return args
}

// workloadArg maps a resource kind to its kubectl argument
func workloadArg(kind plan.Kind) (string, error) {
	switch kind {
	case plan.KindDeployment:
		return "deployment", nil
	case plan.KindStatefulSet:
		return "statefulset", nil
	}
	return "", fmt.Errorf("kind %s does not support rollout status", kind)
}

// JSON shapes returned by kubectl

type podList struct {
	Items []podObject `json:"items"`
}

type podObject struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Status struct {
		Phase             string `json:"phase"`
		ContainerStatuses []struct {
			Ready        bool `json:"ready"`
			RestartCount int  `json:"restartCount"`
			State        struct {
				Waiting *struct {
					Reason string `json:"reason"`
				} `json:"waiting"`
			} `json:"state"`
		} `json:"containerStatuses"`
	} `json:"status"`
}

func (p podObject) toStatus() PodStatus {
	status := PodStatus{
		Name:  p.Metadata.Name,
		Phase: p.Status.Phase,
	}

	ready := 0
	for _, cs := range p.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
		status.Restarts += cs.RestartCount
		if cs.State.Waiting != nil && status.Reason == "" {
			status.Reason = cs.State.Waiting.Reason
		}
	}
	status.Ready = fmt.Sprintf("%d/%d", ready, len(p.Status.ContainerStatuses))
	return status
}

type serviceList struct {
	Items []serviceObject `json:"items"`
}

type serviceObject struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Spec struct {
		Type      string `json:"type"`
		ClusterIP string `json:"clusterIP"`
		Ports     []struct {
			Port     int64  `json:"port"`
			Protocol string `json:"protocol"`
		} `json:"ports"`
	} `json:"spec"`
}

func (s serviceObject) toStatus() ServiceStatus {
	var ports []string
	for _, p := range s.Spec.Ports {
		ports = append(ports, fmt.Sprintf("%d/%s", p.Port, p.Protocol))
	}
	return ServiceStatus{
		Name:      s.Metadata.Name,
		Type:      s.Spec.Type,
		ClusterIP: s.Spec.ClusterIP,
		Ports:     strings.Join(ports, ","),
	}
}

type endpointsObject struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Subsets []struct {
		Addresses []struct {
			IP string `json:"ip"`
		} `json:"addresses"`
		NotReadyAddresses []struct {
			IP string `json:"ip"`
		} `json:"notReadyAddresses"`
	} `json:"subsets"`
}

func (e endpointsObject) toStatus() *EndpointStatus {
	status := &EndpointStatus{Name: e.Metadata.Name}
	for _, subset := range e.Subsets {
		for _, addr := range subset.Addresses {
			status.Addresses = append(status.Addresses, addr.IP)
		}
		for _, addr := range subset.NotReadyAddresses {
			status.NotReady = append(status.NotReady, addr.IP)
		}
	}
	return status
}
