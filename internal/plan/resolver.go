package plan

import (
	"fmt"
	"slices"
)

// InvalidPlanError reports a structural problem detected before any
// cluster operation takes place
type InvalidPlanError struct {
	Resource string
	Reason   string
}

func (e *InvalidPlanError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("invalid plan: resource %q: %s", e.Resource, e.Reason)
	}
	return fmt.Sprintf("invalid plan: %s", e.Reason)
}

// Plan is a topologically ordered sequence of resources, computed once
// per run and discarded afterwards
type Plan struct {
	Resources []*Resource
}

// Names returns the resource names in plan order
func (p *Plan) Names() []string {
	names := make([]string, len(p.Resources))
	for i, res := range p.Resources {
		names[i] = res.Name
	}
	return names
}

// Validate checks that names are unique and every dependency appears
// before its dependent. Used as the execution input gate.
func (p *Plan) Validate() error {
	seen := make(map[string]bool, len(p.Resources))
	for _, res := range p.Resources {
		if seen[res.Name] {
			return &InvalidPlanError{Resource: res.Name, Reason: "duplicate resource name"}
		}
		for _, dep := range res.DependsOn {
			if !seen[dep] {
				return &InvalidPlanError{
					Resource: res.Name,
					Reason:   fmt.Sprintf("dependency %q does not precede it in the plan", dep),
				}
			}
		}
		seen[res.Name] = true
	}
	return nil
}

// Resolver computes ordered plans from a resource registry
type Resolver struct {
	registry *Registry
}

// NewResolver creates a new resolver with the given registry
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns all resources needed to deploy the requested ones,
// dependencies first. Uses depth-first topological sort; a dependency
// cycle or a reference to an unknown resource yields InvalidPlanError.
func (r *Resolver) Resolve(names []string) (*Plan, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	var result []*Resource

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return &InvalidPlanError{Resource: name, Reason: "dependency cycle"}
		}

		res, ok := r.registry.Get(name)
		if !ok {
			return &InvalidPlanError{Resource: name, Reason: "unknown resource"}
		}

		state[name] = visiting
		for _, dep := range res.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		result = append(result, res)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return &Plan{Resources: result}, nil
}

// ResolveReverse returns resources in reverse dependency order, for
// teardown (dependents first, then dependencies)
func (r *Resolver) ResolveReverse(names []string) (*Plan, error) {
	p, err := r.Resolve(names)
	if err != nil {
		return nil, err
	}
	slices.Reverse(p.Resources)
	return p, nil
}

// GetDependents returns resources that directly depend on the given resource
func (r *Resolver) GetDependents(name string) []*Resource {
	var dependents []*Resource
	for _, res := range r.registry.All() {
		if res.DependsOnResource(name) {
			dependents = append(dependents, res)
		}
	}
	return dependents
}

// DetectCycles checks the whole registry for circular dependencies
// using Kahn's algorithm
func (r *Resolver) DetectCycles() error {
	inDegree := make(map[string]int)
	for _, res := range r.registry.All() {
		if _, ok := inDegree[res.Name]; !ok {
			inDegree[res.Name] = 0
		}
		for _, dep := range res.DependsOn {
			inDegree[dep]++
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}

	var sorted []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		sorted = append(sorted, name)

		res, ok := r.registry.Get(name)
		if !ok {
			continue
		}

		for _, dep := range res.DependsOn {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(sorted) != len(r.registry.All()) {
		return &InvalidPlanError{Reason: "circular dependency detected in resource definitions"}
	}
	return nil
}

// GetDependencyGraph returns the adjacency list of the registry
func (r *Resolver) GetDependencyGraph() map[string][]string {
	graph := make(map[string][]string)
	for _, res := range r.registry.All() {
		graph[res.Name] = res.DependsOn
	}
	return graph
}
