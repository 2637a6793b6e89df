package cmd

import (
	"bytes"
	"testing"
)

func setupListTest(t *testing.T) {
	t.Helper()
	setupRootTest(t)
	dryRun = true
	quiet = false
	listCmd.Flags().Set("deps", "false")
	listCmd.Flags().Set("json", "false")
}

func TestList_Default(t *testing.T) {
	setupListTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("list command failed: %v", err)
	}
}

func TestList_Deps(t *testing.T) {
	setupListTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list", "--deps"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("list --deps failed: %v", err)
	}
}

func TestList_JSON(t *testing.T) {
	setupListTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list", "--json"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("list --json failed: %v", err)
	}
}

func TestList_LsAlias(t *testing.T) {
	setupListTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ls"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("ls alias failed: %v", err)
	}
}
