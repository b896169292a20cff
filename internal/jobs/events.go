package jobs

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// EventKind classifies messages emitted during a render.
type EventKind string

const (
	EventKindChunk     EventKind = "chunk"
	EventKindCompleted EventKind = "completed"
)

// Event is a sequenced payload consumed by the polling UI.
type Event struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	RenderID  string    `json:"renderId"`
	Kind      EventKind `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Success   bool      `json:"success,omitempty"`
	ErrorText string    `json:"errorText,omitempty"`
}

// Chunk builds a partial output event.
func Chunk(renderID, text string) Event {
	return Event{RenderID: renderID, Kind: EventKindChunk, Text: text}
}

// Completed builds the terminal event of a render.
func Completed(renderID string, success bool, errorText string) Event {
	return Event{RenderID: renderID, Kind: EventKindCompleted, Success: success, ErrorText: errorText}
}

// Display renders an event the way the console log shows it.
func (e Event) Display() string {
	if e.Kind == EventKindChunk {
		return e.Text
	}
	if e.Success {
		return "\nDocument knitted successfully!\n"
	}
	return fmt.Sprintf("\nError during knitting:\n%s\n", strings.TrimRight(e.ErrorText, "\n"))
}

// Queue is an unbounded event buffer with any number of producers and one draining consumer.
type Queue struct {
	mu      sync.Mutex
	nextSeq int64
	events  []Event
}

// NewQueue creates an empty session queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends one event and assigns sequence and timestamp.
func (q *Queue) Push(event Event) Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextSeq++
	event.Seq = q.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	q.events = append(q.events, event)
	return event
}

// Drain removes and returns every queued event without blocking.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}

	out := q.events
	q.events = nil
	return out
}

// Len reports the number of undrained events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
