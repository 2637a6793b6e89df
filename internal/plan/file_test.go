package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_Valid(t *testing.T) {
	path := writePlanFile(t, `
resources:
  - name: namespace
    kind: Namespace
    manifest: namespace.yaml
    timeout: 30s
  - name: api
    kind: Deployment
    manifest: deployment.yaml
    depends_on: [namespace]
    timeout: 2m
    readiness:
      kind: rollout
      poll_interval: 5s
`)

	registry, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	api, ok := registry.Get("api")
	if !ok {
		t.Fatal("expected resource 'api' in registry")
	}
	if api.Kind != KindDeployment {
		t.Errorf("expected kind Deployment, got %s", api.Kind)
	}
	if api.Timeout != 2*time.Minute {
		t.Errorf("expected timeout 2m, got %s", api.Timeout)
	}
	if api.Readiness.Kind != ReadinessRollout {
		t.Errorf("expected rollout readiness, got %q", api.Readiness.Kind)
	}
	if api.Readiness.GetPollInterval() != 5*time.Second {
		t.Errorf("expected poll interval 5s, got %s", api.Readiness.GetPollInterval())
	}
	if !api.DependsOnResource("namespace") {
		t.Error("expected api to depend on namespace")
	}
}

func TestLoadFile_CommandReadiness(t *testing.T) {
	path := writePlanFile(t, `
resources:
  - name: probe-target
    kind: Service
    manifest: svc.yaml
    readiness:
      kind: command
      command: ["curl", "-fsS", "http://localhost:8080/health"]
`)

	registry, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	res, _ := registry.Get("probe-target")
	if res.Readiness.Kind != ReadinessCommand {
		t.Errorf("expected command readiness, got %q", res.Readiness.Kind)
	}
	if len(res.Readiness.Command) != 3 {
		t.Errorf("expected 3 command args, got %v", res.Readiness.Command)
	}
}

func TestLoadFile_UnknownKind(t *testing.T) {
	path := writePlanFile(t, `
resources:
  - name: thing
    kind: CronJob
    manifest: thing.yaml
`)

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "CronJob") {
		t.Errorf("expected error to mention the kind, got: %v", err)
	}
}

func TestLoadFile_CommandReadinessWithoutCommand(t *testing.T) {
	path := writePlanFile(t, `
resources:
  - name: thing
    kind: Service
    manifest: thing.yaml
    readiness:
      kind: command
`)

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for command readiness without command")
	}
}

func TestLoadFile_MissingManifest(t *testing.T) {
	path := writePlanFile(t, `
resources:
  - name: thing
    kind: Service
`)

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for resource without manifest")
	}
}

func TestLoadFile_DuplicateNames(t *testing.T) {
	path := writePlanFile(t, `
resources:
  - name: thing
    kind: Service
    manifest: a.yaml
  - name: thing
    kind: Service
    manifest: b.yaml
`)

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for duplicate resource names")
	}
}

func TestLoadFile_Empty(t *testing.T) {
	path := writePlanFile(t, "resources: []\n")

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for empty plan file")
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
