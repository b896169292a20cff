package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rmd-knitter/internal/domain"
)

// TestDefaultSettings verifies the baseline is unconfigured.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.Paths.Complete() {
		t.Fatalf("default paths should be absent, got %+v", cfg.Paths)
	}
	if !strings.HasSuffix(DefaultSettingsPath(), filepath.Join(appDirName, settingsFileName)) {
		t.Fatalf("settings path = %s", DefaultSettingsPath())
	}
}

// TestYAMLStoreLoadMissingReportsNotExist checks first-run behavior.
func TestYAMLStoreLoadMissingReportsNotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.yaml")
	store := NewYAMLStore(path)

	_, err := store.Load()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !IsNotExist(err) {
		t.Fatalf("IsNotExist(%v) = false", err)
	}
}

// TestYAMLStoreSaveAndLoadRoundTrip checks persisted paths are returned verbatim.
func TestYAMLStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	store := NewYAMLStore(path)
	want := domain.Settings{
		Paths: domain.ResolvedPaths{
			Converter:    "C:/Program Files/RStudio/bin/quarto/bin/tools",
			ScriptEngine: "/opt/R/4.3.1/bin/Rscript",
		},
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestYAMLStoreWritesPathsSection checks the on-disk document layout.
func TestYAMLStoreWritesPathsSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := NewYAMLStore(path)
	if err := store.Save(domain.Settings{Paths: domain.ResolvedPaths{ScriptEngine: "/usr/bin/Rscript"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{"paths:", "converter: null", "script_engine: /usr/bin/Rscript"} {
		if !strings.Contains(text, want) {
			t.Fatalf("document missing %q:\n%s", want, text)
		}
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Paths.Converter != "" {
		t.Fatalf("converter = %q, want absent", got.Paths.Converter)
	}
}

// TestYAMLStoreSaveOverwritesWholesale checks no merge with previous content.
func TestYAMLStoreSaveOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("paths:\n  converter: /old\n  script_engine: /old/Rscript\nextra: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewYAMLStore(path)
	if err := store.Save(domain.Settings{Paths: domain.ResolvedPaths{Converter: "/new"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "extra") || strings.Contains(string(data), "/old") {
		t.Fatalf("expected wholesale rewrite, got:\n%s", data)
	}
}

// TestYAMLStoreLoadInvalidYAML checks parse error handling.
func TestYAMLStoreLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("paths: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewYAMLStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected yaml parse error")
	}
}
