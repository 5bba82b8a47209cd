package main

import (
	"path/filepath"
	"testing"
)

// TestSigNodeID tests node id derivation from signature file paths.
func TestSigNodeID(t *testing.T) {
	root := filepath.Join("data", "sigs")

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "0.0.3.rcd_sig"), "0.0.3"},
		{filepath.Join(root, "record0.0.4", "2024-01-01T00_00_00.000Z.rcd_sig"), "0.0.4"},
		{filepath.Join(root, "0.0.5_sig"), "0.0.5"},
		{filepath.Join(root, "0.0.3.rcd"), ""},
		{filepath.Join(root, "notes.txt"), ""},
	}

	for _, tt := range tests {
		if got := sigNodeID(root, tt.path); got != tt.want {
			t.Errorf("sigNodeID(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// TestParseFlags tests repeatable flags and derived settings.
func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags("verify", []string{
		"-addressbook", "a.bin",
		"-addressbook", "b.bin",
		"-tx", "0.0.1001@1700000000.5",
		"-nonce", "2",
		"-policy", "union",
	})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if len(cfg.AddressBooks) != 2 || cfg.AddressBooks[1] != "b.bin" {
		t.Errorf("address books: got %v", cfg.AddressBooks)
	}

	key, err := cfg.transactionKey()
	if err != nil {
		t.Fatalf("transaction key: %v", err)
	}

	if key.ID != "0.0.1001-1700000000-000000005" || key.Nonce != 2 {
		t.Errorf("key: got %v", key)
	}

	opts, err := cfg.options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}

	if opts.Policy.String() != "union" {
		t.Errorf("policy: got %s, want union", opts.Policy)
	}
}
