package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSteps(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "", want: 1},
		{in: " 3 ", want: 3},
		{in: "0", wantErr: true},
		{in: "x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseSteps(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("parseSteps(%q)=%d,%v want=%d wantErr=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	if v, err := parseVersion("7"); err != nil || v != 7 {
		t.Fatalf("parseVersion: %d %v", v, err)
	}
	if _, err := parseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if v, err := parseTarget("12"); err != nil || v != 12 {
		t.Fatalf("parseTarget: %d %v", v, err)
	}
	if _, err := parseTarget("latest"); err == nil {
		t.Fatalf("expected error for non-numeric target")
	}
}

func TestResolveMigrationsDir(t *testing.T) {
	dir := t.TempDir()
	got, err := resolveMigrationsDir(dir)
	if err != nil {
		t.Fatalf("resolve explicit dir: %v", err)
	}
	if got != dir {
		t.Fatalf("expected %s, got %s", dir, got)
	}

	missing := filepath.Join(dir, "missing")
	wd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(wd, "db", "migrations")); err == nil {
		t.Skip("working directory has db/migrations")
	}
	if _, err := resolveMigrationsDir(missing); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
