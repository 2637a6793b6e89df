package cmd

import (
	"bytes"
	"testing"
)

func setupUndeployTest(t *testing.T) {
	t.Helper()
	setupRootTest(t)
	dryRun = true
	quiet = false
	undeployCmd.Flags().Set("keep-namespace", "false")
}

func TestUndeploy_Default(t *testing.T) {
	setupUndeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"undeploy", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("undeploy command failed: %v", err)
	}
}

func TestUndeploy_KeepNamespace(t *testing.T) {
	setupUndeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"undeploy", "--keep-namespace", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("undeploy --keep-namespace failed: %v", err)
	}
}

func TestUndeploy_UnknownResource(t *testing.T) {
	setupUndeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"undeploy", "nonexistent", "--dry-run"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown resource, got nil")
	}
}

func TestUndeploy_DownAlias(t *testing.T) {
	setupUndeployTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"down", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("down alias failed: %v", err)
	}
}
