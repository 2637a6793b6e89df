package release

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRecord(t *testing.T) {
	r := NewRecord("1.0.0", "shopcarts", "default")

	if r.Version != RecordVersion {
		t.Errorf("Version = %s, want %s", r.Version, RecordVersion)
	}
	if r.ShopctlVersion != "1.0.0" {
		t.Errorf("ShopctlVersion = %s, want 1.0.0", r.ShopctlVersion)
	}
	if r.Cluster != "shopcarts" {
		t.Errorf("Cluster = %s, want shopcarts", r.Cluster)
	}
	if r.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if len(r.Resources) != 0 {
		t.Errorf("Resources should be empty, got %d", len(r.Resources))
	}
}

func TestAddResource(t *testing.T) {
	r := NewRecord("1.0.0", "shopcarts", "default")
	r.AddResource(ResourceRecord{
		Name:     "namespace",
		Kind:     "namespace",
		Manifest: "namespace.yaml",
		Checksum: "sha256:abc",
	})

	if len(r.Resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(r.Resources))
	}
	if r.Resources[0].AppliedAt.IsZero() {
		t.Error("AppliedAt should be filled in")
	}
}

func TestComputeChecksumDeterministic(t *testing.T) {
	r := NewRecord("1.0.0", "shopcarts", "default")
	r.AddResource(ResourceRecord{Name: "a", Checksum: "sha256:1"})
	r.AddResource(ResourceRecord{Name: "b", Checksum: "sha256:2"})

	first := r.ComputeChecksum()
	second := r.ComputeChecksum()

	if first != second {
		t.Errorf("checksum not deterministic: %s vs %s", first, second)
	}
	if !strings.HasPrefix(first, "sha256:") {
		t.Errorf("checksum should have sha256: prefix, got %s", first)
	}
}

func TestComputeChecksumChangesWithContent(t *testing.T) {
	r1 := NewRecord("1.0.0", "shopcarts", "default")
	r1.AddResource(ResourceRecord{Name: "a", Checksum: "sha256:1"})

	r2 := NewRecord("1.0.0", "shopcarts", "default")
	r2.AddResource(ResourceRecord{Name: "a", Checksum: "sha256:2"})

	if r1.ComputeChecksum() == r2.ComputeChecksum() {
		t.Error("different resource checksums should yield different record checksums")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "release.json")

	r := NewRecord("1.0.0", "shopcarts", "default")
	r.ImageTag = "latest"
	r.AddResource(ResourceRecord{
		Name:     "postgres",
		Kind:     "statefulset",
		Manifest: "postgres.yaml",
		Checksum: "sha256:abc",
		Elapsed:  2 * time.Second,
	})
	r.Finalize()

	if err := r.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadRecord(path)
	if err != nil {
		t.Fatalf("LoadRecord failed: %v", err)
	}

	if loaded.ImageTag != "latest" {
		t.Errorf("ImageTag = %s, want latest", loaded.ImageTag)
	}
	if loaded.Checksum != r.Checksum {
		t.Errorf("Checksum = %s, want %s", loaded.Checksum, r.Checksum)
	}
	if len(loaded.Resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(loaded.Resources))
	}
	if loaded.Resources[0].Elapsed != 2*time.Second {
		t.Errorf("Elapsed = %v, want 2s", loaded.Resources[0].Elapsed)
	}
}

func TestLoadRecordMissing(t *testing.T) {
	_, err := LoadRecord("/nonexistent/release.json")
	if err == nil {
		t.Error("expected error for missing record")
	}
}

func TestGetResource(t *testing.T) {
	r := NewRecord("1.0.0", "shopcarts", "default")
	r.AddResource(ResourceRecord{Name: "namespace", Checksum: "sha256:1"})

	if _, ok := r.GetResource("namespace"); !ok {
		t.Error("expected to find namespace")
	}
	if _, ok := r.GetResource("missing"); ok {
		t.Error("should not find missing resource")
	}
}

func TestFileChecksum(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "manifest.yaml")
	if err := os.WriteFile(path, []byte("kind: Namespace\n"), 0644); err != nil {
		t.Fatal(err)
	}

	sum, err := FileChecksum(path)
	if err != nil {
		t.Fatalf("FileChecksum failed: %v", err)
	}
	if !strings.HasPrefix(sum, "sha256:") {
		t.Errorf("checksum should have sha256: prefix, got %s", sum)
	}

	again, err := FileChecksum(path)
	if err != nil {
		t.Fatal(err)
	}
	if sum != again {
		t.Error("checksum should be stable for unchanged content")
	}
}

func TestVerifyClean(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "namespace.yaml")
	if err := os.WriteFile(path, []byte("kind: Namespace\n"), 0644); err != nil {
		t.Fatal(err)
	}
	sum, err := FileChecksum(path)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRecord("1.0.0", "shopcarts", "default")
	r.AddResource(ResourceRecord{Name: "namespace", Manifest: "namespace.yaml", Checksum: sum})
	r.Finalize()

	drifted, err := r.Verify(tmpDir)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(drifted) != 0 {
		t.Errorf("expected no drift, got %v", drifted)
	}
}

func TestVerifyDetectsDrift(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "namespace.yaml")
	if err := os.WriteFile(path, []byte("kind: Namespace\n"), 0644); err != nil {
		t.Fatal(err)
	}
	sum, err := FileChecksum(path)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRecord("1.0.0", "shopcarts", "default")
	r.AddResource(ResourceRecord{Name: "namespace", Manifest: "namespace.yaml", Checksum: sum})
	r.Finalize()

	if err := os.WriteFile(path, []byte("kind: Namespace\nmetadata: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	drifted, err := r.Verify(tmpDir)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(drifted) != 1 || drifted[0] != "namespace" {
		t.Errorf("expected namespace drift, got %v", drifted)
	}
}

func TestVerifyMissingManifest(t *testing.T) {
	tmpDir := t.TempDir()

	r := NewRecord("1.0.0", "shopcarts", "default")
	r.AddResource(ResourceRecord{Name: "gone", Manifest: "gone.yaml", Checksum: "sha256:abc"})

	drifted, err := r.Verify(tmpDir)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(drifted) != 1 || drifted[0] != "gone" {
		t.Errorf("expected gone reported as drifted, got %v", drifted)
	}
}
