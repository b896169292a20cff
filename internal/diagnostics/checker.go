package diagnostics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"rmd-knitter/internal/domain"
)

// Checker validates configured tool paths and the selected render inputs.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all checks and returns a combined report.
// Selection checks are only included for inputs that have been picked.
func (c *Checker) Run(settings domain.Settings, selection domain.Selection) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkConverter(settings.Paths.Converter),
		c.checkScriptEngine(settings.Paths.ScriptEngine),
	}
	if strings.TrimSpace(selection.WorkingDirectory) != "" {
		items = append(items, c.checkWorkingDirectory(selection.WorkingDirectory))
	}
	if strings.TrimSpace(selection.DocumentPath) != "" {
		items = append(items, c.checkDocument(selection.DocumentPath))
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkConverter verifies the pandoc location exists. It may be a directory or the binary.
func (c *Checker) checkConverter(path string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemConverter,
		Name: "Pandoc",
	}

	if strings.TrimSpace(path) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Pandoc path is not configured."
		item.Hint = c.pathHint("pandoc", "Set the RStudio pandoc directory in settings.")
		return item
	}

	if _, err := c.stat(path); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = describeStatError("Pandoc path", path, err)
		item.Hint = c.pathHint("pandoc", "Reinstall RStudio or point settings at an existing pandoc.")
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkScriptEngine verifies Rscript exists and is a file.
func (c *Checker) checkScriptEngine(path string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemScriptEngine,
		Name: "Rscript",
	}

	if strings.TrimSpace(path) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Rscript path is not configured."
		item.Hint = c.pathHint("Rscript", "Install R and set the Rscript executable in settings.")
		return item
	}

	info, err := c.stat(path)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = describeStatError("Rscript", path, err)
		item.Hint = c.pathHint("Rscript", "Install R and set the Rscript executable in settings.")
		return item
	}
	if info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Rscript path is a directory: %s", path)
		item.Hint = "Point settings at the Rscript executable inside R's bin directory."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkWorkingDirectory validates the render directory exists and accepts the HTML output.
func (c *Checker) checkWorkingDirectory(dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemWorkingDirectory,
		Name: "Working directory",
	}

	info, err := c.stat(dir)
	if err != nil || !info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Working directory is not accessible: %s", dir)
		item.Hint = "Select an existing directory."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Working directory is not writable: %s", dir)
		item.Hint = "rmarkdown writes the HTML next to the document; choose a writable directory."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// checkDocument validates the selected document exists and looks like R Markdown.
func (c *Checker) checkDocument(path string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemDocument,
		Name: "Document",
	}

	info, err := c.stat(path)
	if err != nil || info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Document is not accessible: %s", path)
		item.Hint = "Select an existing .Rmd file."
		return item
	}

	if !strings.EqualFold(filepath.Ext(path), ".rmd") {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Not an R Markdown file: %s", filepath.Base(path))
		item.Hint = "rmarkdown::render expects a .Rmd document."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Document found: %s", filepath.Base(path))
	return item
}

// pathHint mentions a PATH match for name when there is one.
func (c *Checker) pathHint(name, fallback string) string {
	found, err := c.lookPath(name)
	if err != nil {
		return fallback
	}
	return fmt.Sprintf("%s is on PATH at %s; save it in settings.", name, found)
}

func describeStatError(label, path string, err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Sprintf("%s does not exist: %s", label, path)
	}
	return fmt.Sprintf("Cannot access %s: %s", strings.ToLower(label), path)
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		createTemp: createTemp,
		remove:     remove,
	}
}

// Diagnostic item identifiers.
const (
	ItemConverter        = "tool_converter"
	ItemScriptEngine     = "tool_script_engine"
	ItemWorkingDirectory = "working_directory"
	ItemDocument         = "document"
)
