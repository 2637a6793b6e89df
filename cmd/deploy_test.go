package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func setupDeployTest(t *testing.T) {
	t.Helper()
	setupRootTest(t)
	dryRun = true
	quiet = false
	// Reset flags that persist between test runs
	deployCmd.Flags().Set("no-deps", "false")
	deployCmd.Flags().Set("plan", "")
	deployCmd.Flags().Set("verify", "false")
	deployCmd.Flags().Set("no-record", "false")
}

func TestDeploy_DefaultResources(t *testing.T) {
	setupDeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"deploy", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("deploy command failed: %v", err)
	}
}

func TestDeploy_SpecificResource(t *testing.T) {
	setupDeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"deploy", "postgres", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("deploy postgres failed: %v", err)
	}
}

func TestDeploy_UnknownResource(t *testing.T) {
	setupDeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"deploy", "nonexistent", "--dry-run"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown resource, got nil")
	}
}

func TestDeploy_UnknownResource_NoDeps(t *testing.T) {
	setupDeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"deploy", "nonexistent", "--no-deps", "--dry-run"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown resource with --no-deps, got nil")
	}
}

func TestDeploy_NoDeps(t *testing.T) {
	setupDeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"deploy", "shopcarts", "--no-deps", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("deploy --no-deps failed: %v", err)
	}
}

func TestDeploy_InvalidPlanFile(t *testing.T) {
	setupDeployTest(t)

	planFile := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(planFile, []byte("not: [valid plan"), 0644); err != nil {
		t.Fatal(err)
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"deploy", "--plan", planFile, "--dry-run"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for invalid plan file, got nil")
	}
}

func TestDeploy_MissingPlanFile(t *testing.T) {
	setupDeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"deploy", "--plan", "/nonexistent/plan.yaml", "--dry-run"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing plan file, got nil")
	}
}
