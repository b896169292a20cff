package toolchain

import (
	"fmt"
	"os"
	"runtime"

	"github.com/goccy/go-yaml"

	"rmd-knitter/internal/domain"
)

// Catalog lists candidate locations per tool category and platform, in search order.
type Catalog map[domain.ToolCategory]map[domain.OSKind][]string

// DefaultCatalog returns the built-in candidate locations for RStudio's pandoc and Rscript.
func DefaultCatalog() Catalog {
	return Catalog{
		domain.ToolConverter: {
			domain.OSWindows: {
				"C:/Program Files/RStudio/resources/app/bin/quarto/bin/tools",
				"C:/Program Files/RStudio/bin/quarto/bin/tools",
				"C:/Program Files/RStudio/resources/app/bin/pandoc",
				"C:/Program Files/RStudio/bin/pandoc",
				"C:/Users/*/AppData/Local/Programs/RStudio/bin/quarto/bin/tools",
				"C:/Users/*/AppData/Local/RStudio/bin/quarto/bin/tools",
			},
			domain.OSDarwin: {
				"/Applications/RStudio.app/Contents/Resources/app/bin/quarto/bin/tools",
				"/Applications/RStudio.app/Contents/MacOS/quarto/bin/tools",
				"/Applications/RStudio.app/Contents/Resources/app/bin/pandoc",
				"/usr/local/bin/pandoc",
				"~/Library/Application Support/RStudio/bin/quarto/bin/tools",
			},
			domain.OSLinux: {
				"/usr/lib/rstudio/bin/quarto/bin/tools",
				"/usr/lib/rstudio/bin/pandoc",
				"/usr/bin/pandoc",
				"~/.local/share/rstudio/bin/quarto/bin/tools",
				"/opt/rstudio/bin/quarto/bin/tools",
			},
		},
		domain.ToolScriptEngine: {
			domain.OSWindows: {
				"C:/Program Files/R/R-*/bin/Rscript.exe",
				"C:/Program Files (x86)/R/R-*/bin/Rscript.exe",
				"C:/Users/*/AppData/Local/Programs/R/R-*/bin/Rscript.exe",
			},
			domain.OSDarwin: {
				"/usr/local/bin/Rscript",
				"/Library/Frameworks/R.framework/Resources/bin/Rscript",
				"/opt/homebrew/bin/Rscript",
				"~/Library/R/*/bin/Rscript",
			},
			domain.OSLinux: {
				"/usr/bin/Rscript",
				"/usr/local/bin/Rscript",
				"/opt/R/*/bin/Rscript",
			},
		},
	}
}

// Candidates returns the ordered candidate list for one category and platform.
func (c Catalog) Candidates(category domain.ToolCategory, osKind domain.OSKind) []string {
	byOS, ok := c[category]
	if !ok {
		return nil
	}
	return byOS[osKind]
}

// Merge returns a copy of c where every category/platform list present in override replaces c's.
func (c Catalog) Merge(override Catalog) Catalog {
	out := make(Catalog, len(c))
	for category, byOS := range c {
		out[category] = make(map[domain.OSKind][]string, len(byOS))
		for osKind, list := range byOS {
			out[category][osKind] = append([]string(nil), list...)
		}
	}
	for category, byOS := range override {
		if out[category] == nil {
			out[category] = make(map[domain.OSKind][]string, len(byOS))
		}
		for osKind, list := range byOS {
			out[category][osKind] = append([]string(nil), list...)
		}
	}
	return out
}

// LoadCatalog reads a YAML override file and merges it over the built-in catalog.
// A missing file yields the built-in catalog unchanged.
func LoadCatalog(path string) (Catalog, error) {
	base := DefaultCatalog()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return nil, fmt.Errorf("read candidate catalog: %w", err)
	}

	var raw map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse candidate catalog %s: %w", path, err)
	}

	override := make(Catalog, len(raw))
	for category, byOS := range raw {
		cat := domain.ToolCategory(category)
		if cat != domain.ToolConverter && cat != domain.ToolScriptEngine {
			return nil, fmt.Errorf("unknown tool category %q in %s", category, path)
		}
		override[cat] = make(map[domain.OSKind][]string, len(byOS))
		for osName, list := range byOS {
			osKind := domain.OSKind(osName)
			if osKind != domain.OSWindows && osKind != domain.OSDarwin && osKind != domain.OSLinux {
				return nil, fmt.Errorf("unknown platform %q for %s in %s", osName, category, path)
			}
			override[cat][osKind] = list
		}
	}

	return base.Merge(override), nil
}

// CurrentOS maps the running platform to a catalog key. Other unix-likes use the linux list.
func CurrentOS() domain.OSKind {
	switch runtime.GOOS {
	case "windows":
		return domain.OSWindows
	case "darwin":
		return domain.OSDarwin
	default:
		return domain.OSLinux
	}
}
