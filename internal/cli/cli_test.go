package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"pkt.systems/pslog"

	"rmd-knitter/internal/config"
	"rmd-knitter/internal/domain"
	"rmd-knitter/internal/jobs"
)

type fakeKnitter struct {
	startErr error
	batches  [][]jobs.Event
}

func (k *fakeKnitter) StartRender() (domain.Render, error) {
	if k.startErr != nil {
		return domain.Render{}, k.startErr
	}
	return domain.Render{ID: "r1", Status: domain.RenderStatusStreaming}, nil
}

func (k *fakeKnitter) PollOutput() []jobs.Event {
	if len(k.batches) == 0 {
		return nil
	}
	batch := k.batches[0]
	k.batches = k.batches[1:]
	return batch
}

func testContext() context.Context {
	logger := pslog.NewWithOptions(io.Discard, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.ErrorLevel,
	})
	return pslog.ContextWithLogger(context.Background(), logger)
}

// execute runs the command tree with isolated settings and catalog files.
func execute(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	base := []string{
		"--config", filepath.Join(root, "config.yaml"),
		"--candidates", filepath.Join(root, "candidates.yaml"),
	}
	cmd.SetArgs(append(args, base...))
	err := cmd.ExecuteContext(testContext())
	return out.String(), err
}

func TestKnitPrintsUntilCompletion(t *testing.T) {
	k := &fakeKnitter{batches: [][]jobs.Event{
		{jobs.Chunk("r1", "processing file: report.Rmd\n")},
		nil,
		{jobs.Chunk("r1", "Output created: report.html\n"), jobs.Completed("r1", true, "")},
	}}
	var out bytes.Buffer

	if err := knit(context.Background(), k, &out, time.Millisecond); err != nil {
		t.Fatalf("knit: %v", err)
	}
	want := "processing file: report.Rmd\nOutput created: report.html\n\nDocument knitted successfully!\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestKnitReportsRenderFailure(t *testing.T) {
	k := &fakeKnitter{batches: [][]jobs.Event{{jobs.Completed("r1", false, "Error in library(foo)")}}}
	var out bytes.Buffer

	err := knit(context.Background(), k, &out, time.Millisecond)
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("err = %v, want %v", err, ErrRenderFailed)
	}
	if !strings.Contains(out.String(), "Error during knitting:\nError in library(foo)") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestKnitReturnsStartError(t *testing.T) {
	k := &fakeKnitter{startErr: domain.ErrPreconditionUnmet}
	if err := knit(context.Background(), k, io.Discard, time.Millisecond); !errors.Is(err, domain.ErrPreconditionUnmet) {
		t.Fatalf("err = %v, want %v", err, domain.ErrPreconditionUnmet)
	}
}

func TestKnitStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := knit(ctx, &fakeKnitter{}, io.Discard, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want %v", err, context.Canceled)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	root := t.TempDir()

	if _, err := execute(t, root, "config", "set", "--script-engine", " /opt/R/bin/Rscript "); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := execute(t, root, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "script_engine: /opt/R/bin/Rscript") {
		t.Fatalf("show output missing engine: %q", out)
	}
	if !strings.Contains(out, "converter: null") {
		t.Fatalf("show output should keep absent converter as null: %q", out)
	}
}

func TestConfigSetRequiresAFlag(t *testing.T) {
	if _, err := execute(t, t.TempDir(), "config", "set"); err == nil {
		t.Fatalf("expected error without flags")
	}
}

func TestDetectUsesCandidateOverride(t *testing.T) {
	root := t.TempDir()
	tools := filepath.Join(root, "tools")
	if err := os.MkdirAll(tools, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	engine := filepath.Join(root, "Rscript")
	if err := os.WriteFile(engine, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write engine: %v", err)
	}
	catalog := "converter:\n  linux:\n    - " + tools + "\n" +
		"script_engine:\n  linux:\n    - " + filepath.Join(root, "missing") + "\n    - " + engine + "\n"
	if err := os.WriteFile(filepath.Join(root, "candidates.yaml"), []byte(catalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	out, err := execute(t, root, "detect", "--os", "linux", "--save")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !strings.Contains(out, "converter:     "+tools) || !strings.Contains(out, "script_engine: "+engine) {
		t.Fatalf("unexpected output: %q", out)
	}

	settings, err := config.NewYAMLStore(filepath.Join(root, "config.yaml")).Load()
	if err != nil {
		t.Fatalf("load saved settings: %v", err)
	}
	if settings.Paths.Converter != tools || settings.Paths.ScriptEngine != engine {
		t.Fatalf("saved settings = %+v", settings)
	}

	out, err = execute(t, root, "detect", "--os", "linux", "--all")
	if err != nil {
		t.Fatalf("detect --all: %v", err)
	}
	if !strings.Contains(out, "missing") || !strings.Contains(out, "* script_engine") {
		t.Fatalf("unexpected candidate listing: %q", out)
	}
}

func TestRenderCommandStreamsOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a unix shell")
	}
	root := t.TempDir()
	engine := filepath.Join(root, "Rscript")
	script := "#!/bin/sh\necho \"pandoc=$RSTUDIO_PANDOC\"\necho \"$2\"\n"
	if err := os.WriteFile(engine, []byte(script), 0o755); err != nil {
		t.Fatalf("write engine: %v", err)
	}
	workDir := filepath.Join(root, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := filepath.Join(workDir, "report.Rmd")
	if err := os.WriteFile(doc, []byte("# report\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	if _, err := execute(t, root, "config", "set", "--converter", "/opt/pandoc", "--script-engine", engine); err != nil {
		t.Fatalf("config set: %v", err)
	}

	out, err := execute(t, root, "render", doc)
	if err != nil {
		t.Fatalf("render: %v (output %q)", err, out)
	}
	want := "pandoc=/opt/pandoc\nrmarkdown::render('report.Rmd', output_format='html_document')\n\nDocument knitted successfully!\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRenderCommandFailsOnNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a unix shell")
	}
	root := t.TempDir()
	engine := filepath.Join(root, "Rscript")
	if err := os.WriteFile(engine, []byte("#!/bin/sh\necho 'Quitting from lines 3-5' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write engine: %v", err)
	}
	doc := filepath.Join(root, "broken.Rmd")
	if err := os.WriteFile(doc, []byte("x"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	if _, err := execute(t, root, "config", "set", "--converter", root, "--script-engine", engine); err != nil {
		t.Fatalf("config set: %v", err)
	}

	out, err := execute(t, root, "render", doc)
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("err = %v, want %v", err, ErrRenderFailed)
	}
	if !strings.Contains(out, "Error during knitting:\nQuitting from lines 3-5") {
		t.Fatalf("output = %q", out)
	}
}
