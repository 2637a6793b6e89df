package plan

import (
	"sort"
	"time"
)

// Registry holds all available resource definitions
type Registry struct {
	resources map[string]*Resource
}

// defaultResources contains the predefined shopcarts deployment resources
var defaultResources = []Resource{
	{
		Name:        "namespace",
		Kind:        KindNamespace,
		Description: "shopcarts namespace",
		Manifest:    "namespace.yaml",
		DependsOn:   []string{},
		Timeout:     30 * time.Second,
	},
	{
		Name:        "app-config",
		Kind:        KindConfigMap,
		Description: "Application configuration (database URI, log level)",
		Manifest:    "configmap.yaml",
		DependsOn:   []string{"namespace"},
		Timeout:     30 * time.Second,
	},
	{
		Name:        "postgres",
		Kind:        KindStatefulSet,
		Description: "PostgreSQL database",
		Manifest:    "postgres.yaml",
		DependsOn:   []string{"namespace"},
		Readiness:   Readiness{Kind: ReadinessRollout},
		Timeout:     3 * time.Minute,
	},
	{
		Name:        "shopcarts",
		Kind:        KindDeployment,
		Description: "Shopcarts REST API",
		Manifest:    "deployment.yaml",
		DependsOn:   []string{"namespace", "app-config", "postgres"},
		Readiness:   Readiness{Kind: ReadinessRollout},
		Timeout:     2 * time.Minute,
	},
	{
		Name:        "shopcarts-service",
		Kind:        KindService,
		Description: "Cluster-internal service for the API pods",
		Manifest:    "service.yaml",
		DependsOn:   []string{"shopcarts"},
		Readiness:   Readiness{Kind: ReadinessEndpoints},
		Timeout:     90 * time.Second,
	},
	{
		Name:        "shopcarts-ingress",
		Kind:        KindIngress,
		Description: "External entry point routing to the service",
		Manifest:    "ingress.yaml",
		DependsOn:   []string{"shopcarts-service"},
		Timeout:     30 * time.Second,
	},
}

// NewRegistry creates a new resource registry with the default resources
func NewRegistry() *Registry {
	r := &Registry{
		resources: make(map[string]*Resource),
	}
	for i := range defaultResources {
		r.resources[defaultResources[i].Name] = &defaultResources[i]
	}
	return r
}

// NewEmptyRegistry creates a registry without any predefined resources
func NewEmptyRegistry() *Registry {
	return &Registry{resources: make(map[string]*Resource)}
}

// Get returns a resource by name
func (r *Registry) Get(name string) (*Resource, bool) {
	res, ok := r.resources[name]
	return res, ok
}

// All returns all registered resources
func (r *Registry) All() []*Resource {
	result := make([]*Resource, 0, len(r.resources))
	for _, res := range r.resources {
		result = append(result, res)
	}
	// Sort by name for consistent ordering
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns all resource names
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindByKind returns resources of the given kind
func (r *Registry) FindByKind(kind Kind) []*Resource {
	var result []*Resource
	for _, res := range r.All() {
		if res.Kind == kind {
			result = append(result, res)
		}
	}
	return result
}

// Register adds or updates a resource in the registry
func (r *Registry) Register(res *Resource) {
	r.resources[res.Name] = res
}
