package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"

	"rmd-knitter/internal/domain"
)

// Resolver searches platform candidate locations for the converter and the script engine.
// It keeps no state between calls; every lookup re-scans the filesystem.
type Resolver struct {
	catalog Catalog
	log     pslog.Logger
	stat    func(string) (os.FileInfo, error)
	glob    func(string) ([]string, error)
	homeDir func() (string, error)
}

// NewResolver builds a resolver over catalog using real OS dependencies.
func NewResolver(catalog Catalog, logger pslog.Logger) *Resolver {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Resolver{
		catalog: catalog,
		log:     logger,
		stat:    os.Stat,
		glob:    filepath.Glob,
		homeDir: os.UserHomeDir,
	}
}

// ResolveConverter returns the first existing pandoc location for osKind.
func (r *Resolver) ResolveConverter(osKind domain.OSKind) (string, bool) {
	return r.resolve(domain.ToolConverter, osKind)
}

// ResolveScriptEngine returns the first existing Rscript location for osKind.
func (r *Resolver) ResolveScriptEngine(osKind domain.OSKind) (string, bool) {
	return r.resolve(domain.ToolScriptEngine, osKind)
}

// Detect runs both lookups. Unresolved entries stay empty.
func (r *Resolver) Detect(osKind domain.OSKind) domain.ResolvedPaths {
	converter, _ := r.ResolveConverter(osKind)
	engine, _ := r.ResolveScriptEngine(osKind)
	return domain.ResolvedPaths{Converter: converter, ScriptEngine: engine}
}

// Inspect lists every candidate for osKind with its expansion, marking the ones Detect would pick.
func (r *Resolver) Inspect(osKind domain.OSKind) []domain.CandidateOption {
	var out []domain.CandidateOption
	for _, category := range []domain.ToolCategory{domain.ToolConverter, domain.ToolScriptEngine} {
		selected := false
		for _, pattern := range r.catalog.Candidates(category, osKind) {
			path, ok := r.expand(pattern)
			option := domain.CandidateOption{
				Category: category,
				Pattern:  pattern,
				Path:     path,
				Exists:   ok,
			}
			if ok && !selected {
				option.Selected = true
				selected = true
			}
			out = append(out, option)
		}
	}
	return out
}

func (r *Resolver) resolve(category domain.ToolCategory, osKind domain.OSKind) (string, bool) {
	log := r.log.With("tool", string(category), "os", string(osKind))
	log.Info("detecting toolchain paths")

	for _, pattern := range r.catalog.Candidates(category, osKind) {
		if path, ok := r.expand(pattern); ok {
			log.Info("found toolchain path", "path", path)
			return path, true
		}
	}

	log.Warn("no toolchain installation found")
	return "", false
}

// expand resolves one candidate to a concrete existing path.
func (r *Resolver) expand(pattern string) (string, bool) {
	path := r.expandHome(pattern)
	if strings.ContainsAny(path, "*?[") {
		matches, err := r.glob(path)
		if err != nil || len(matches) == 0 {
			return "", false
		}
		path = latestVersion(path, matches)
	}

	if _, err := r.stat(path); err != nil {
		return "", false
	}
	return path, true
}

// expandHome replaces a leading ~ with the current user's home directory.
func (r *Resolver) expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := r.homeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// NewResolverForTests creates a resolver with injectable filesystem dependencies.
func NewResolverForTests(
	catalog Catalog,
	logger pslog.Logger,
	stat func(string) (os.FileInfo, error),
	glob func(string) ([]string, error),
	homeDir func() (string, error),
) *Resolver {
	r := NewResolver(catalog, logger)
	r.stat = stat
	r.glob = glob
	r.homeDir = homeDir
	return r
}
