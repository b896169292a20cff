package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"rmd-knitter/internal/diagnostics"
	"rmd-knitter/internal/domain"
)

// ErrNothingDetected is returned when a fix could not find any installation to configure.
var ErrNothingDetected = errors.New("no installation detected; set the path manually")

// FixDiagnostic re-runs detection for a failed tool item and persists what it finds.
func (a *App) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	a.mu.Lock()
	settings := a.Settings
	selection := a.selection
	a.mu.Unlock()

	detected := a.Resolver.Detect(a.osKind)
	var fixErr error
	switch id {
	case diagnostics.ItemConverter:
		if detected.Converter == "" {
			fixErr = fmt.Errorf("fix %s: %w", id, ErrNothingDetected)
			break
		}
		settings.Paths.Converter = detected.Converter
	case diagnostics.ItemScriptEngine:
		if detected.ScriptEngine == "" {
			fixErr = fmt.Errorf("fix %s: %w", id, ErrNothingDetected)
			break
		}
		settings.Paths.ScriptEngine = detected.ScriptEngine
	case diagnostics.ItemWorkingDirectory, diagnostics.ItemDocument:
		return a.GetDiagnostics(), fmt.Errorf("diagnostic %s is fixed by selecting a new path", id)
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}
	if fixErr != nil {
		return a.refreshDiagnostics(settings, selection), fixErr
	}

	if err := a.Store.Save(settings); err != nil {
		return a.refreshDiagnostics(settings, selection), fmt.Errorf("save settings after fix: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	a.log.Info("diagnostic fixed", "item", id, "converter", settings.Paths.Converter, "script_engine", settings.Paths.ScriptEngine)
	return a.refreshDiagnostics(settings, selection), nil
}
