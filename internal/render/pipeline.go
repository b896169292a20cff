package render

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"pkt.systems/pslog"

	"rmd-knitter/internal/domain"
	"rmd-knitter/internal/jobs"
)

// ConverterEnvVar tells rmarkdown where pandoc lives when it is not on PATH.
const ConverterEnvVar = "RSTUDIO_PANDOC"

// OutputFormat is the rmarkdown output format every render targets.
const OutputFormat = "html_document"

// EventSink receives output events from the background reader.
type EventSink interface {
	Push(event jobs.Event) jobs.Event
}

// Request contains one render invocation and its callbacks.
type Request struct {
	domain.RenderRequest
	RenderID string
	Events   EventSink
	OnStatus func(status domain.RenderStatus)
}

// CommandLog captures the external command that was launched.
type CommandLog struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
	Dir     string   `json:"dir"`
}

// PipelineError is a stage-aware error with optional command context.
type PipelineError struct {
	Stage      string     `json:"stage"`
	Message    string     `json:"message"`
	CommandLog CommandLog `json:"commandLog"`
	Err        error      `json:"-"`
}

// Error formats pipeline failures for logs and UI.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Pipeline launches Rscript to knit a document and streams its console output.
type Pipeline struct {
	log        pslog.Logger
	newCommand func(name string, args ...string) *exec.Cmd
	environ    func() []string
	stat       func(name string) (os.FileInfo, error)
}

// NewPipeline constructs the production pipeline with OS dependencies.
func NewPipeline(logger pslog.Logger) *Pipeline {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Pipeline{
		log:        logger,
		newCommand: exec.Command,
		environ:    os.Environ,
		stat:       os.Stat,
	}
}

// Start validates and launches one render, then returns while output streams in the background.
// Precondition and launch failures are returned synchronously and never reach the sink.
func (p *Pipeline) Start(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.WorkingDirectory) == "" || strings.TrimSpace(req.DocumentPath) == "" {
		return domain.ErrPreconditionUnmet
	}
	if req.Events == nil {
		return &PipelineError{Stage: "launching", Message: "no event sink configured"}
	}

	engine := strings.TrimSpace(req.Paths.ScriptEngine)
	if engine == "" {
		return &PipelineError{
			Stage:   "launching",
			Message: "script engine path is not configured",
			Err:     domain.ErrConfigurationMissing,
		}
	}

	log := p.log.With("render", req.RenderID, "document", filepath.Base(req.DocumentPath))
	args := buildRenderArgs(req.DocumentPath)
	cmdLog := CommandLog{Command: engine, Args: args, Dir: req.WorkingDirectory}

	if info, err := p.stat(req.WorkingDirectory); err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", req.WorkingDirectory)
		}
		return &PipelineError{Stage: "launching", Message: "working directory is not accessible", CommandLog: cmdLog, Err: err}
	}

	cmd := p.newCommand(engine, args...)
	cmd.Dir = req.WorkingDirectory
	cmd.Env = buildEnv(p.environ(), req.Paths.Converter)
	if req.Paths.Converter == "" {
		log.Warn("converter path not configured; rendering with pandoc from PATH")
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &PipelineError{Stage: "launching", Message: "cannot capture output", CommandLog: cmdLog, Err: err}
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		log.Error("launch failed", "command", engine, "err", err)
		return &PipelineError{
			Stage:      "launching",
			Message:    fmt.Sprintf("cannot start %s", engine),
			CommandLog: cmdLog,
			Err:        err,
		}
	}

	log.Info("render started", "command", engine, "dir", req.WorkingDirectory, "pid", cmd.Process.Pid)
	emitStatus(req.OnStatus, domain.RenderStatusStreaming)

	go p.stream(log, req, cmd, stdout, stderr)
	return nil
}

// stream forwards stdout lines, waits for exit, and pushes the single completion event.
func (p *Pipeline) stream(log pslog.Logger, req Request, cmd *exec.Cmd, stdout io.Reader, stderr *bytes.Buffer) {
	reader := bufio.NewReader(stdout)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			req.Events.Push(jobs.Chunk(req.RenderID, line))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("reading render output", "err", err)
			}
			break
		}
	}

	waitErr := cmd.Wait()
	if waitErr == nil {
		log.Info("render succeeded")
		req.Events.Push(jobs.Completed(req.RenderID, true, ""))
		emitStatus(req.OnStatus, domain.RenderStatusSucceeded)
		return
	}

	errorText := stderr.String()
	if strings.TrimSpace(errorText) == "" {
		errorText = waitErr.Error()
	}
	log.Warn("render failed", "exit", exitCode(waitErr), "err", waitErr)
	req.Events.Push(jobs.Completed(req.RenderID, false, errorText))
	emitStatus(req.OnStatus, domain.RenderStatusFailed)
}

// emitStatus forwards status updates when callback is configured.
func emitStatus(cb func(status domain.RenderStatus), status domain.RenderStatus) {
	if cb != nil {
		cb(status)
	}
}

// exitCode extracts the process exit code, or -1 when the process did not exit normally.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// buildRenderArgs builds the Rscript inline expression that knits the document to HTML.
func buildRenderArgs(documentPath string) []string {
	return []string{
		"-e",
		fmt.Sprintf("rmarkdown::render('%s', output_format='%s')", quoteR(filepath.Base(documentPath)), OutputFormat),
	}
}

// quoteR escapes a value for an R single-quoted string literal.
func quoteR(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}

// buildEnv copies base and points ConverterEnvVar at converter, replacing any inherited value.
// Variable names only fold case on Windows.
func buildEnv(base []string, converter string) []string {
	return buildEnvFor(runtime.GOOS, base, converter)
}

func buildEnvFor(goos string, base []string, converter string) []string {
	env := make([]string, 0, len(base)+1)
	prefix := ConverterEnvVar + "="
	for _, entry := range base {
		name := entry
		if goos == "windows" {
			name = strings.ToUpper(entry)
		}
		if strings.HasPrefix(name, prefix) {
			continue
		}
		env = append(env, entry)
	}
	if converter != "" {
		env = append(env, prefix+converter)
	}
	return env
}

// OutputPath returns where rmarkdown writes the HTML for a document knitted in workingDir.
func OutputPath(workingDir, documentPath string) string {
	name := filepath.Base(documentPath)
	return filepath.Join(workingDir, strings.TrimSuffix(name, filepath.Ext(name))+".html")
}

// NewPipelineForTests constructs a pipeline with injectable dependencies.
func NewPipelineForTests(
	logger pslog.Logger,
	newCommand func(name string, args ...string) *exec.Cmd,
	environ func() []string,
) *Pipeline {
	p := NewPipeline(logger)
	if newCommand != nil {
		p.newCommand = newCommand
	}
	if environ != nil {
		p.environ = environ
	}
	return p
}
