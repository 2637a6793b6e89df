package plan

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// planFile is the on-disk representation of a custom plan.
// Durations are written as Go duration strings ("90s", "3m").
type planFile struct {
	Resources []fileResource `yaml:"resources"`
}

type fileResource struct {
	Name        string        `yaml:"name"`
	Kind        string        `yaml:"kind"`
	Description string        `yaml:"description"`
	Manifest    string        `yaml:"manifest"`
	DependsOn   []string      `yaml:"depends_on"`
	Readiness   fileReadiness `yaml:"readiness"`
	Timeout     string        `yaml:"timeout"`
}

type fileReadiness struct {
	Kind         string   `yaml:"kind"`
	PollInterval string   `yaml:"poll_interval"`
	Command      []string `yaml:"command"`
}

// LoadFile reads resource definitions from a YAML plan file and returns
// a registry containing them
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	var pf planFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing plan file %s: %w", path, err)
	}

	if len(pf.Resources) == 0 {
		return nil, fmt.Errorf("plan file %s defines no resources", path)
	}

	registry := NewEmptyRegistry()
	for _, fr := range pf.Resources {
		res, err := fr.toResource()
		if err != nil {
			return nil, fmt.Errorf("plan file %s: %w", path, err)
		}
		if _, exists := registry.Get(res.Name); exists {
			return nil, &InvalidPlanError{Resource: res.Name, Reason: "duplicate resource name"}
		}
		registry.Register(res)
	}

	return registry, nil
}

func (fr fileResource) toResource() (*Resource, error) {
	if fr.Name == "" {
		return nil, fmt.Errorf("resource without a name")
	}

	kind, err := ParseKind(fr.Kind)
	if err != nil {
		return nil, fmt.Errorf("resource %q: %w", fr.Name, err)
	}

	if fr.Manifest == "" {
		return nil, fmt.Errorf("resource %q: manifest is required", fr.Name)
	}

	res := &Resource{
		Name:        fr.Name,
		Kind:        kind,
		Description: fr.Description,
		Manifest:    fr.Manifest,
		DependsOn:   fr.DependsOn,
	}

	if fr.Timeout != "" {
		d, err := time.ParseDuration(fr.Timeout)
		if err != nil {
			return nil, fmt.Errorf("resource %q: invalid timeout: %w", fr.Name, err)
		}
		res.Timeout = d
	}

	if fr.Readiness.Kind != "" {
		readiness, err := fr.Readiness.toReadiness()
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", fr.Name, err)
		}
		res.Readiness = readiness
	}

	return res, nil
}

func (f fileReadiness) toReadiness() (Readiness, error) {
	var r Readiness

	switch ReadinessKind(f.Kind) {
	case ReadinessRollout, ReadinessEndpoints:
		r.Kind = ReadinessKind(f.Kind)
	case ReadinessCommand:
		if len(f.Command) == 0 {
			return r, fmt.Errorf("readiness kind %q requires a command", f.Kind)
		}
		r.Kind = ReadinessCommand
		r.Command = f.Command
	default:
		return r, fmt.Errorf("unknown readiness kind: %q", f.Kind)
	}

	if f.PollInterval != "" {
		d, err := time.ParseDuration(f.PollInterval)
		if err != nil {
			return r, fmt.Errorf("invalid poll_interval: %w", err)
		}
		r.PollInterval = d
	}

	return r, nil
}
