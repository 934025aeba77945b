package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveConfigPathXDG(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "contextd")
	if err := os.MkdirAll(cfgDir, 0o700); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(cfgDir, "contextd.yaml")
	if err := os.WriteFile(cfgPath, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := ResolveConfigPath()
	if err != nil {
		t.Fatalf("ResolveConfigPath() error = %v", err)
	}
	if got != cfgPath {
		t.Errorf("ResolveConfigPath() = %q, want %q", got, cfgPath)
	}
}

func TestResolveConfigPathCurrentDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if _, err := ResolveConfigPath(); err == nil {
		t.Fatal("ResolveConfigPath() error = nil with no config anywhere")
	}

	if err := os.WriteFile("contextd.yaml", []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := ResolveConfigPath()
	if err != nil {
		t.Fatalf("ResolveConfigPath() error = %v", err)
	}
	if got != "contextd.yaml" {
		t.Errorf("ResolveConfigPath() = %q, want %q", got, "contextd.yaml")
	}
}
