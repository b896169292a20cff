package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"pkt.systems/pslog"

	"rmd-knitter/internal/config"
	"rmd-knitter/internal/diagnostics"
	"rmd-knitter/internal/domain"
	"rmd-knitter/internal/jobs"
	"rmd-knitter/internal/render"
	"rmd-knitter/internal/toolchain"
)

// configurationAdvisory is shown once when tool paths could not be resolved.
const configurationAdvisory = "Could not automatically detect R or Pandoc paths.\nPlease set them manually in the settings."

// Options configures where the App keeps its files and how it logs.
type Options struct {
	SettingsPath string
	CatalogPath  string
	Logger       pslog.Logger
	Assets       fs.FS
	OS           domain.OSKind
}

// App owns the session state: settings, selection, the render manager and the output queue.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Resolver    pathResolver
	Pipeline    pipelineStarter
	Renders     *jobs.Manager
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	log         pslog.Logger
	osKind      domain.OSKind

	mu         sync.Mutex
	selection  domain.Selection
	advisory   string
	queue      *jobs.Queue
	runtimeCtx context.Context
}

// pipelineStarter isolates the render pipeline behind an interface.
type pipelineStarter interface {
	Start(ctx context.Context, req render.Request) error
}

// pathResolver isolates toolchain detection behind an interface.
type pathResolver interface {
	Detect(osKind domain.OSKind) domain.ResolvedPaths
	Inspect(osKind domain.OSKind) []domain.CandidateOption
}

// New builds the application with persisted settings, detecting tools on first launch.
func New(opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	if opts.SettingsPath == "" {
		opts.SettingsPath = config.DefaultSettingsPath()
	}
	if opts.CatalogPath == "" {
		opts.CatalogPath = config.DefaultCatalogPath()
	}
	if opts.OS == "" {
		opts.OS = toolchain.CurrentOS()
	}

	catalog, err := toolchain.LoadCatalog(opts.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load candidate catalog: %w", err)
	}

	store := config.NewYAMLStore(opts.SettingsPath)
	resolver := toolchain.NewResolver(catalog, logger)
	settings, err := loadOrDetectSettings(store, resolver, opts.OS, logger)
	if err != nil {
		return nil, err
	}

	app := &App{
		Settings: settings,
		Store:    store,
		Resolver: resolver,
		Pipeline: render.NewPipeline(logger),
		Renders:  jobs.NewManager(),
		assets:   opts.Assets,
		checker:  diagnostics.NewChecker(),
		log:      logger,
		osKind:   opts.OS,
		queue:    jobs.NewQueue(),
	}
	if !settings.Paths.Complete() {
		app.advisory = configurationAdvisory
		logger.Warn("toolchain configuration incomplete", "settings", opts.SettingsPath, "err", domain.ErrConfigurationMissing)
	}
	app.Diagnostics = app.checker.Run(settings, domain.Selection{})
	return app, nil
}

// loadOrDetectSettings reads persisted settings; when none exist it detects tools and writes them back.
func loadOrDetectSettings(store config.Store, resolver pathResolver, osKind domain.OSKind, logger pslog.Logger) (domain.Settings, error) {
	settings, err := store.Load()
	if err == nil {
		return settings, nil
	}
	if !config.IsNotExist(err) {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	logger.Info("no settings found; detecting toolchain", "os", string(osKind))
	settings = domain.Settings{Paths: resolver.Detect(osKind)}
	if err := store.Save(settings); err != nil {
		return domain.Settings{}, fmt.Errorf("save detected settings: %w", err)
	}
	return settings, nil
}

// Advisory returns the configuration advisory once, then an empty string.
func (a *App) Advisory() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	msg := a.advisory
	a.advisory = ""
	return msg
}

// SelectWorkingDirectory sets the directory the renderer runs in.
func (a *App) SelectWorkingDirectory(path string) error {
	dir := strings.TrimSpace(path)
	if dir == "" {
		return fmt.Errorf("working directory is empty")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("select working directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("select working directory: %s is not a directory", dir)
	}

	a.mu.Lock()
	a.selection.WorkingDirectory = dir
	a.mu.Unlock()
	a.log.Info("working directory selected", "dir", dir)
	return nil
}

// SelectDocument sets the document to knit. Without a working directory the document's folder is used.
func (a *App) SelectDocument(path string) error {
	doc := strings.TrimSpace(path)
	if doc == "" {
		return fmt.Errorf("document path is empty")
	}
	info, err := os.Stat(doc)
	if err != nil {
		return fmt.Errorf("select document: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("select document: %s is a directory", doc)
	}

	a.mu.Lock()
	a.selection.DocumentPath = doc
	if a.selection.WorkingDirectory == "" {
		a.selection.WorkingDirectory = filepath.Dir(doc)
	}
	a.mu.Unlock()
	a.log.Info("document selected", "document", doc)
	return nil
}

// GetSelection returns the current working directory and document.
func (a *App) GetSelection() domain.Selection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selection
}

// GetConfiguredPaths returns the tool paths renders will use.
func (a *App) GetConfiguredPaths() domain.ResolvedPaths {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Settings.Paths
}

// SaveConfiguredPaths persists both paths verbatim, then refreshes diagnostics.
// Surrounding whitespace is kept since it is legal in file names.
func (a *App) SaveConfiguredPaths(paths domain.ResolvedPaths) (domain.ResolvedPaths, error) {
	settings := domain.Settings{Paths: paths}
	if err := a.Store.Save(settings); err != nil {
		return domain.ResolvedPaths{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	selection := a.selection
	a.mu.Unlock()

	a.refreshDiagnostics(settings, selection)
	a.log.Info("settings saved", "converter", paths.Converter, "script_engine", paths.ScriptEngine)
	return paths, nil
}

// DetectPaths runs toolchain detection without persisting the result.
func (a *App) DetectPaths() domain.ResolvedPaths {
	return a.Resolver.Detect(a.osKind)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns the checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	selection := a.selection
	a.mu.Unlock()

	return a.refreshDiagnostics(settings, selection), nil
}

// StartRender knits the selected document in the background.
// It fails synchronously when inputs are missing, a render is in flight, or the process cannot start.
func (a *App) StartRender() (domain.Render, error) {
	a.mu.Lock()
	selection := a.selection
	paths := a.Settings.Paths
	a.mu.Unlock()

	if selection.WorkingDirectory == "" || selection.DocumentPath == "" {
		return domain.Render{}, domain.ErrPreconditionUnmet
	}

	renderID := uuid.NewString()
	if err := a.Renders.Start(renderID, filepath.Base(selection.DocumentPath)); err != nil {
		return domain.Render{}, err
	}
	a.emitRender()

	req := render.Request{
		RenderRequest: domain.RenderRequest{
			WorkingDirectory: selection.WorkingDirectory,
			DocumentPath:     selection.DocumentPath,
			Paths:            paths,
		},
		RenderID: renderID,
		Events:   a.queue,
		OnStatus: func(status domain.RenderStatus) {
			if err := a.Renders.Transition(renderID, status); err != nil {
				a.log.Debug("render transition rejected", "render", renderID, "err", err)
				return
			}
			a.emitRender()
		},
	}

	ctx := pslog.ContextWithLogger(context.Background(), a.log)
	if err := a.Pipeline.Start(ctx, req); err != nil {
		_ = a.Renders.Transition(renderID, domain.RenderStatusFailed)
		a.emitRender()
		return domain.Render{}, fmt.Errorf("start render: %w", err)
	}
	return a.Renders.Current(), nil
}

// PollOutput drains every output event queued since the last poll.
func (a *App) PollOutput() []jobs.Event {
	return a.queue.Drain()
}

// CurrentRender returns current render metadata and status.
func (a *App) CurrentRender() domain.Render {
	return a.Renders.Current()
}

// OpenOutput opens the HTML produced for the selected document.
func (a *App) OpenOutput() error {
	selection := a.GetSelection()
	if selection.WorkingDirectory == "" || selection.DocumentPath == "" {
		return domain.ErrPreconditionUnmet
	}

	target := render.OutputPath(selection.WorkingDirectory, selection.DocumentPath)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("resolve rendered output: %w", err)
	}
	return openWithSystem(target)
}

// refreshDiagnostics reruns checks and caches the report.
func (a *App) refreshDiagnostics(settings domain.Settings, selection domain.Selection) domain.DiagnosticReport {
	if a.checker == nil {
		return domain.DiagnosticReport{}
	}
	report := a.checker.Run(settings, selection)

	a.mu.Lock()
	a.Diagnostics = report
	a.mu.Unlock()
	return report
}

// IsUserError reports whether err should be shown to the user as a blocking dialog.
func IsUserError(err error) bool {
	var pipelineErr *render.PipelineError
	return errors.Is(err, domain.ErrPreconditionUnmet) ||
		errors.Is(err, jobs.ErrRenderInProgress) ||
		errors.As(err, &pipelineErr)
}

// openWithSystem launches the platform default handler for path.
func openWithSystem(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch viewer: %w", err)
	}
	return nil
}
