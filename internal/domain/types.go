package domain

// RenderStatus tracks each stage of a single render invocation.
type RenderStatus string

const (
	RenderStatusIdle      RenderStatus = "idle"
	RenderStatusLaunching RenderStatus = "launching"
	RenderStatusStreaming RenderStatus = "streaming"
	RenderStatusSucceeded RenderStatus = "succeeded"
	RenderStatusFailed    RenderStatus = "failed"
)

// OSKind identifies the host platform used to pick candidate tool locations.
type OSKind string

const (
	OSWindows OSKind = "windows"
	OSDarwin  OSKind = "darwin"
	OSLinux   OSKind = "linux"
)

// ResolvedPaths holds the converter and script engine locations. Empty means absent.
type ResolvedPaths struct {
	Converter    string `json:"converter"`
	ScriptEngine string `json:"scriptEngine"`
}

// Complete reports whether both tool paths are set.
func (p ResolvedPaths) Complete() bool {
	return p.Converter != "" && p.ScriptEngine != ""
}

// Settings contains the persisted user configuration.
type Settings struct {
	Paths ResolvedPaths `json:"paths"`
}

// RenderRequest is one knit of a document, consumed once by the pipeline.
type RenderRequest struct {
	WorkingDirectory string
	DocumentPath     string
	Paths            ResolvedPaths
}

// Render stores the current render identity and lifecycle status.
type Render struct {
	ID       string       `json:"id"`
	Document string       `json:"document,omitempty"`
	Status   RenderStatus `json:"status"`
}

// Selection is the working directory and document picked in the UI.
type Selection struct {
	WorkingDirectory string `json:"workingDirectory"`
	DocumentPath     string `json:"documentPath"`
}
