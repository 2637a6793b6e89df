package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func setupVersionTest(t *testing.T) {
	t.Helper()
	setupRootTest(t)
	versionCmd.Flags().Set("short", "false")
	versionCmd.Flags().Set("json", "false")
}

func TestVersion_Default(t *testing.T) {
	setupVersionTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "shopctl version") {
		t.Errorf("expected 'shopctl version' in output, got: %q", out)
	}
	if !strings.Contains(out, "go version:") {
		t.Errorf("expected go version in output, got: %q", out)
	}
}

func TestVersion_Short(t *testing.T) {
	setupVersionTest(t)
	SetVersion("1.2.3")
	defer SetVersion("dev")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version", "--short"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version --short failed: %v", err)
	}

	if strings.TrimSpace(buf.String()) != "1.2.3" {
		t.Errorf("expected '1.2.3', got: %q", buf.String())
	}
}

func TestVersion_JSON(t *testing.T) {
	setupVersionTest(t)
	SetBuildInfo("abc123", "2026-08-30")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version", "--json"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version --json failed: %v", err)
	}

	var info map[string]string
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("version --json produced invalid JSON: %v", err)
	}
	if info["commit"] != "abc123" {
		t.Errorf("commit = %q, want abc123", info["commit"])
	}
}
