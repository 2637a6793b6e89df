package plan

import (
	"testing"
	"time"
)

func TestRegistry_DefaultResources(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{"namespace", "app-config", "postgres", "shopcarts", "shopcarts-service", "shopcarts-ingress"} {
		if _, ok := registry.Get(name); !ok {
			t.Errorf("expected default resource %q", name)
		}
	}
}

func TestRegistry_AllSorted(t *testing.T) {
	registry := NewRegistry()

	all := registry.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Errorf("All() not sorted: %q before %q", all[i-1].Name, all[i].Name)
		}
	}
}

func TestRegistry_FindByKind(t *testing.T) {
	registry := NewRegistry()

	workloads := registry.FindByKind(KindDeployment)
	if len(workloads) != 1 || workloads[0].Name != "shopcarts" {
		t.Errorf("expected single Deployment 'shopcarts', got: %v", workloads)
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewEmptyRegistry()
	registry.Register(&Resource{Name: "custom", Kind: KindConfigMap, Manifest: "custom.yaml"})

	if _, ok := registry.Get("custom"); !ok {
		t.Error("expected registered resource to be retrievable")
	}
	if len(registry.Names()) != 1 {
		t.Errorf("expected 1 name, got %v", registry.Names())
	}
}

func TestResource_GetTimeout(t *testing.T) {
	res := &Resource{Name: "x", Kind: KindService, Manifest: "x.yaml"}
	if res.GetTimeout() != 5*time.Minute {
		t.Errorf("expected default timeout 5m, got %s", res.GetTimeout())
	}

	res.Timeout = 10 * time.Second
	if res.GetTimeout() != 10*time.Second {
		t.Errorf("expected explicit timeout 10s, got %s", res.GetTimeout())
	}
}

func TestReadiness_Defaults(t *testing.T) {
	var r Readiness
	if r.Enabled() {
		t.Error("zero readiness should be disabled")
	}
	if r.GetPollInterval() != 2*time.Second {
		t.Errorf("expected default poll interval 2s, got %s", r.GetPollInterval())
	}
}

func TestKind_IsWorkload(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{KindDeployment, true},
		{KindStatefulSet, true},
		{KindService, false},
		{KindNamespace, false},
		{KindIngress, false},
	}
	for _, tc := range cases {
		if got := tc.kind.IsWorkload(); got != tc.want {
			t.Errorf("IsWorkload(%s) = %v, want %v", tc.kind, got, tc.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("Deployment"); err != nil {
		t.Errorf("ParseKind(Deployment) failed: %v", err)
	}
	if _, err := ParseKind("ReplicaSet"); err == nil {
		t.Error("expected error for unsupported kind")
	}
}
