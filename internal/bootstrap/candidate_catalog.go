package bootstrap

import (
	"rmd-knitter/internal/domain"
)

// CandidateCatalog is the settings-view listing of every known tool location.
type CandidateCatalog struct {
	OS         domain.OSKind        `json:"os"`
	Configured domain.ResolvedPaths `json:"configured"`
	Options    []CandidateRow       `json:"options"`
}

// CandidateRow is one candidate plus whether it is the path currently in use.
type CandidateRow struct {
	domain.CandidateOption
	InUse bool `json:"inUse"`
}

// GetCandidateCatalog expands every candidate for the current OS and marks the configured ones.
func (a *App) GetCandidateCatalog() CandidateCatalog {
	catalog := CandidateCatalog{
		OS:         a.osKind,
		Configured: a.GetConfiguredPaths(),
	}
	for _, option := range a.Resolver.Inspect(a.osKind) {
		catalog.Options = append(catalog.Options, CandidateRow{
			CandidateOption: option,
			InUse:           catalog.ConfiguredOption(option),
		})
	}
	return catalog
}

// ConfiguredOption reports whether option expands to the path configured for its category.
func (c CandidateCatalog) ConfiguredOption(option domain.CandidateOption) bool {
	if option.Path == "" {
		return false
	}
	switch option.Category {
	case domain.ToolConverter:
		return option.Path == c.Configured.Converter
	case domain.ToolScriptEngine:
		return option.Path == c.Configured.ScriptEngine
	default:
		return false
	}
}
