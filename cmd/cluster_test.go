package cmd

import (
	"bytes"
	"testing"
)

func setupClusterTest(t *testing.T) {
	t.Helper()
	setupRootTest(t)
	dryRun = true
	quiet = false
	clusterCreateCmd.Flags().Set("ignore-existing", "false")
}

func TestClusterCreate_IgnoreExisting(t *testing.T) {
	setupClusterTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cluster", "create", "--ignore-existing", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("cluster create --ignore-existing failed: %v", err)
	}
}

func TestClusterCreate_DryRun(t *testing.T) {
	setupClusterTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cluster", "create", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("cluster create failed: %v", err)
	}
}

func TestClusterRm_Missing(t *testing.T) {
	setupClusterTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cluster", "rm", "--dry-run"})

	// In dry-run the cluster lookup returns nothing, so rm is a no-op
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("cluster rm failed: %v", err)
	}
}

func TestTeardown_Alias(t *testing.T) {
	setupClusterTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"teardown", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("teardown failed: %v", err)
	}
}

func TestClusterList_DryRun(t *testing.T) {
	setupClusterTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cluster", "list", "--dry-run"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("cluster list failed: %v", err)
	}
}
