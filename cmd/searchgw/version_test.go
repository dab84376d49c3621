package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand_NoConfigNeeded(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--config", "/nonexistent.yaml"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "searchgw dev") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestSetupCommand_BadConfig(t *testing.T) {
	rootCmd.SetArgs([]string{"setup", "--config", "/nonexistent.yaml"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for missing config")
	}
}
