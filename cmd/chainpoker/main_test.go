package main

import (
	"bytes"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAmountToBase(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	out, err := runCLI(t, "amount", "to-base", "12.5")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "12500000" {
		t.Fatalf("out = %q, want 12500000", out)
	}
}

func TestAmountValidateReportsRule(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	out, err := runCLI(t, "amount", "validate", "0.5", "--min", "1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "This field must be at least 1") {
		t.Fatalf("out = %q", out)
	}
}

func TestStatusWithMemoryStoreAndNoWallet(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("WALLET_PROVIDER", "none")
	out, err := runCLI(t, "status")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, `"connected": false`) {
		t.Fatalf("out = %q", out)
	}
}
