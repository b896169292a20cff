package jobs

import (
	"errors"
	"testing"

	"rmd-knitter/internal/domain"
)

// TestManagerLifecycle verifies normal progression to succeeded state.
func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	if m.IsActive() {
		t.Fatal("new manager should be idle")
	}

	if err := m.Start("render-1", "report.Rmd"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !m.IsActive() {
		t.Fatal("expected active after start")
	}

	for _, status := range []domain.RenderStatus{
		domain.RenderStatusStreaming,
		domain.RenderStatusSucceeded,
	} {
		if err := m.Transition("render-1", status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	current := m.Current()
	if current.Status != domain.RenderStatusSucceeded {
		t.Fatalf("current status = %s, want succeeded", current.Status)
	}
	if current.Document != "report.Rmd" {
		t.Fatalf("document = %q", current.Document)
	}
	if m.IsActive() {
		t.Fatal("succeeded render should not be active")
	}
}

// TestManagerLaunchFailure checks the synchronous launching -> failed edge.
func TestManagerLaunchFailure(t *testing.T) {
	m := NewManager()
	if err := m.Start("render-1", "a.Rmd"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Transition("render-1", domain.RenderStatusFailed); err != nil {
		t.Fatalf("launching -> failed: %v", err)
	}
	if err := m.Transition("render-1", domain.RenderStatusStreaming); err == nil {
		t.Fatal("expected no transition out of failed")
	}
}

// TestManagerRejectsInvalidTransition checks state machine constraints.
func TestManagerRejectsInvalidTransition(t *testing.T) {
	m := NewManager()
	if err := m.Transition("none", domain.RenderStatusStreaming); !errors.Is(err, ErrNoActiveRender) {
		t.Fatalf("idle transition error = %v, want %v", err, ErrNoActiveRender)
	}
	if err := m.Start("render-1", "a.Rmd"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Transition("render-1", domain.RenderStatusSucceeded); err == nil {
		t.Fatal("expected invalid transition error")
	}
	if err := m.Transition("other", domain.RenderStatusStreaming); err == nil {
		t.Fatal("expected error for stale render id")
	}
}

// TestManagerSerializesRenders verifies a second start is rejected while one is active.
func TestManagerSerializesRenders(t *testing.T) {
	m := NewManager()
	if err := m.Start("render-1", "a.Rmd"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Start("render-2", "b.Rmd"); !errors.Is(err, ErrRenderInProgress) {
		t.Fatalf("second start error = %v, want %v", err, ErrRenderInProgress)
	}

	_ = m.Transition("render-1", domain.RenderStatusStreaming)
	_ = m.Transition("render-1", domain.RenderStatusFailed)

	if err := m.Start("render-2", "b.Rmd"); err != nil {
		t.Fatalf("restart after failure: %v", err)
	}
	if m.Current().ID != "render-2" {
		t.Fatalf("current id = %s, want render-2", m.Current().ID)
	}
}
