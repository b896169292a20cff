package jobs

import (
	"errors"
	"fmt"
	"sync"

	"rmd-knitter/internal/domain"
)

// ErrRenderInProgress is returned when starting a second active render.
var ErrRenderInProgress = errors.New("render already in progress")

// ErrNoActiveRender is returned when a transition is requested for an idle manager.
var ErrNoActiveRender = errors.New("no active render")

// Manager tracks the single allowed active render and its transitions.
type Manager struct {
	mu      sync.RWMutex
	current domain.Render
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Render{
			Status: domain.RenderStatusIdle,
		},
	}
}

// Start creates a new render and moves it to launching state.
func (m *Manager) Start(renderID, document string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isActive(m.current.Status) {
		return ErrRenderInProgress
	}

	m.current = domain.Render{
		ID:       renderID,
		Document: document,
		Status:   domain.RenderStatusLaunching,
	}
	return nil
}

// Transition validates and applies a state change for the given render.
// Transitions addressed to a render that is no longer current are ignored.
func (m *Manager) Transition(renderID string, status domain.RenderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" {
		return ErrNoActiveRender
	}
	if m.current.ID != renderID {
		return fmt.Errorf("render %s is not current", renderID)
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	return nil
}

// Current returns a snapshot of the current render.
func (m *Manager) Current() domain.Render {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// IsActive reports whether a render is launching or streaming.
func (m *Manager) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isActive(m.current.Status)
}

// isActive checks if a status represents an in-flight render.
func isActive(status domain.RenderStatus) bool {
	switch status {
	case domain.RenderStatusLaunching, domain.RenderStatusStreaming:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed render state machine edges.
func isValidTransition(from, to domain.RenderStatus) bool {
	switch from {
	case domain.RenderStatusLaunching:
		return to == domain.RenderStatusStreaming || to == domain.RenderStatusFailed
	case domain.RenderStatusStreaming:
		return to == domain.RenderStatusSucceeded || to == domain.RenderStatusFailed
	default:
		return false
	}
}
