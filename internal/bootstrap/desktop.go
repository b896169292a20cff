package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// renderStatusEvent is emitted to the webview whenever the render status changes.
const renderStatusEvent = "render:status"

var documentDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "R Markdown",
		Pattern:     "*.Rmd;*.rmd",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "R Markdown Knitter",
		Width:       960,
		Height:      720,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for dialogs and push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// PickWorkingDirectory opens a directory picker and selects the result.
func (a *App) PickWorkingDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select working directory",
	})
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	return path, a.SelectWorkingDirectory(path)
}

// PickDocument opens a file dialog for .Rmd documents and selects the result.
func (a *App) PickDocument() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	opts := wailsruntime.OpenDialogOptions{
		Title:   "Select R Markdown document",
		Filters: documentDialogFilter,
	}
	if dir := a.GetSelection().WorkingDirectory; dir != "" {
		opts.DefaultDirectory = dir
	}

	path, err := wailsruntime.OpenFileDialog(ctx, opts)
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	return path, a.SelectDocument(path)
}

// PickConverter opens a directory picker for the Pandoc tools folder.
func (a *App) PickConverter() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select Pandoc directory",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

// PickScriptEngine opens a file dialog for the Rscript executable.
func (a *App) PickScriptEngine() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select Rscript executable",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

// emitRender pushes the current render status to the webview when it is running.
func (a *App) emitRender() {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, renderStatusEvent, a.Renders.Current())
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

