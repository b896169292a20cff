package domain

// ToolCategory names one kind of external tool the resolver searches for.
type ToolCategory string

const (
	ToolConverter    ToolCategory = "converter"
	ToolScriptEngine ToolCategory = "script_engine"
)

// CandidateOption describes one candidate location and what it expanded to.
type CandidateOption struct {
	Category ToolCategory `json:"category"`
	Pattern  string       `json:"pattern"`
	Path     string       `json:"path,omitempty"`
	Exists   bool         `json:"exists"`
	Selected bool         `json:"selected"`
}
