// Package plan provides resource definitions and dependency management for shopctl
package plan

import (
	"fmt"
	"time"
)

// Kind identifies the cluster object type a resource describes
type Kind string

const (
	KindNamespace   Kind = "Namespace"
	KindConfigMap   Kind = "ConfigMap"
	KindSecret      Kind = "Secret"
	KindStatefulSet Kind = "StatefulSet"
	KindDeployment  Kind = "Deployment"
	KindService     Kind = "Service"
	KindIngress     Kind = "Ingress"
)

// ParseKind validates and converts a string into a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNamespace, KindConfigMap, KindSecret, KindStatefulSet,
		KindDeployment, KindService, KindIngress:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown resource kind: %q", s)
}

// IsWorkload returns true for kinds that run pods and support rollout status
func (k Kind) IsWorkload() bool {
	return k == KindDeployment || k == KindStatefulSet
}

// ReadinessKind selects the condition a resource must satisfy before
// its dependents may be applied
type ReadinessKind string

const (
	// ReadinessNone skips the readiness gate entirely
	ReadinessNone ReadinessKind = ""
	// ReadinessRollout waits until observed ready replicas match desired
	// and no pod is crash-looping
	ReadinessRollout ReadinessKind = "rollout"
	// ReadinessEndpoints waits until at least one backend address is registered
	ReadinessEndpoints ReadinessKind = "endpoints"
	// ReadinessCommand waits until an external check command exits zero
	ReadinessCommand ReadinessKind = "command"
)

// Readiness describes how a resource is gated after apply
type Readiness struct {
	Kind         ReadinessKind `json:"kind"`
	PollInterval time.Duration `json:"poll_interval,omitempty"`
	// Command is the external check invoked for ReadinessCommand
	Command []string `json:"command,omitempty"`
}

// Enabled returns true if a readiness gate is configured
func (r Readiness) Enabled() bool {
	return r.Kind != ReadinessNone
}

// GetPollInterval returns the poll interval, defaulted when unset
func (r Readiness) GetPollInterval() time.Duration {
	if r.PollInterval > 0 {
		return r.PollInterval
	}
	return 2 * time.Second
}

// Resource represents one deployable unit: a manifest applied to the
// cluster plus the readiness condition its dependents wait on
type Resource struct {
	Name        string        `json:"name"`
	Kind        Kind          `json:"kind"`
	Description string        `json:"description,omitempty"`
	Manifest    string        `json:"manifest"`
	DependsOn   []string      `json:"depends_on,omitempty"`
	Readiness   Readiness     `json:"readiness,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
}

// GetTimeout returns the readiness deadline for this resource
func (r *Resource) GetTimeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	// Default deadline
	return 5 * time.Minute
}

// DependsOnResource checks whether this resource declares a direct
// dependency on the named resource
func (r *Resource) DependsOnResource(name string) bool {
	for _, dep := range r.DependsOn {
		if dep == name {
			return true
		}
	}
	return false
}
