package toolchain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rmd-knitter/internal/domain"
)

// TestDefaultCatalogCoversPlatforms checks every platform has candidates for both tools.
func TestDefaultCatalogCoversPlatforms(t *testing.T) {
	catalog := DefaultCatalog()
	for _, category := range []domain.ToolCategory{domain.ToolConverter, domain.ToolScriptEngine} {
		for _, osKind := range []domain.OSKind{domain.OSLinux, domain.OSDarwin, domain.OSWindows} {
			if len(catalog.Candidates(category, osKind)) == 0 {
				t.Fatalf("no candidates for %s on %s", category, osKind)
			}
		}
	}
}

// TestLoadCatalogMissingFileUsesDefaults checks the override file is optional.
func TestLoadCatalogMissingFileUsesDefaults(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(catalog.Candidates(domain.ToolConverter, domain.OSLinux)) != len(DefaultCatalog().Candidates(domain.ToolConverter, domain.OSLinux)) {
		t.Fatal("expected built-in linux converter list")
	}
}

// TestLoadCatalogOverridesOneList checks an override replaces only the lists it names.
func TestLoadCatalogOverridesOneList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.yaml")
	content := "script_engine:\n  linux:\n    - /srv/R/*/bin/Rscript\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	got := catalog.Candidates(domain.ToolScriptEngine, domain.OSLinux)
	if len(got) != 1 || got[0] != "/srv/R/*/bin/Rscript" {
		t.Fatalf("linux script engine candidates = %v", got)
	}
	if len(catalog.Candidates(domain.ToolScriptEngine, domain.OSDarwin)) == 0 {
		t.Fatal("darwin list should be kept")
	}
	if len(catalog.Candidates(domain.ToolConverter, domain.OSLinux)) == 0 {
		t.Fatal("converter list should be kept")
	}
	if len(DefaultCatalog().Candidates(domain.ToolScriptEngine, domain.OSLinux)) == 1 {
		t.Fatal("override must not mutate the built-in catalog")
	}
}

// TestLoadCatalogRejectsUnknownCategory checks typos surface as errors.
func TestLoadCatalogRejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.yaml")
	if err := os.WriteFile(path, []byte("rscript:\n  linux: [/usr/bin/Rscript]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected unknown category error")
	}
}

// TestLoadCatalogRejectsUnknownPlatform checks platform typos surface as errors.
func TestLoadCatalogRejectsUnknownPlatform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.yaml")
	if err := os.WriteFile(path, []byte("script_engine:\n  macos: [/usr/local/bin/Rscript]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadCatalog(path)
	if err == nil || !strings.Contains(err.Error(), `unknown platform "macos"`) {
		t.Fatalf("err = %v, want unknown platform error", err)
	}
}
