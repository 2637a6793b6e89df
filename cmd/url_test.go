package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func setupURLTest(t *testing.T) {
	t.Helper()
	setupRootTest(t)
	cfg.Ingress.BaseURL = "http://localhost:8081"
	dryRun = true
	quiet = false
	urlCmd.Flags().Set("wait", "false")
	urlCmd.Flags().Set("address", "false")
}

func TestURL_PrintsBaseURL(t *testing.T) {
	setupURLTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"url", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("url command failed: %v", err)
	}

	if !strings.Contains(buf.String(), "http://localhost:8081") {
		t.Errorf("expected base URL in output, got: %q", buf.String())
	}
}

func TestURL_AddressUnbound(t *testing.T) {
	setupURLTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"url", "--address", "--dry-run"})

	// Dry-run has no bound address, so --address must fail
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unbound ingress address, got nil")
	}
}
