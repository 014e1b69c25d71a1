// Package tracker accumulates accepted material detections into per-label
// counts, an append-only event history, and a running credit total.
package tracker

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecosortai/ecosort/internal/detector"
)

// Event is one accepted classification: a material seen at a point in
// time with the credits it earned. Events are immutable once created.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Material  Material  `json:"material"`
	Credits   int       `json:"credits"`
}

// Policy is the acceptance policy applied to raw classifier output.
// Detections below the confidence floor or outside the known material
// set are discarded.
type Policy struct {
	MinConfidence float64
}

// EventSink receives a copy of every accepted event, typically for
// durable history backup. Sink failures are logged and do not affect
// the in-memory counts or history.
type EventSink interface {
	AppendEvent(Event) error
}

// Tracker owns the material counts and the detection history. All
// mutation happens under one lock, so an accepted detection's count
// increment and history append are never observed separately.
type Tracker struct {
	mu      sync.RWMutex
	policy  Policy
	credits CreditTable
	counts  map[Material]int
	history []Event
	sink    EventSink
	now     func() time.Time
}

// New creates a Tracker with the given acceptance policy and credit table.
// A nil credits table falls back to DefaultCredits.
func New(policy Policy, credits CreditTable) *Tracker {
	if credits == nil {
		credits = DefaultCredits()
	}

	counts := make(map[Material]int, len(Materials()))
	for _, m := range Materials() {
		counts[m] = 0
	}

	return &Tracker{
		policy:  policy,
		credits: credits,
		counts:  counts,
		now:     time.Now,
	}
}

// SetSink sets the durable event sink. Pass nil to disable backup.
func (t *Tracker) SetSink(sink EventSink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}

// Ingest applies the acceptance policy to one frame's detections and
// records an event per surviving detection. A frame with no accepted
// detections is a no-op. Returns the events created for this frame.
func (t *Tracker) Ingest(detections []detector.Detection) []Event {
	if len(detections) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var events []Event
	for _, d := range detections {
		if d.Confidence < t.policy.MinConfidence {
			continue
		}

		material, err := ParseMaterial(d.Label)
		if err != nil {
			log.Printf("Discarding detection with unknown label %q", d.Label)
			continue
		}

		event := Event{
			ID:        uuid.New().String(),
			Timestamp: t.now(),
			Material:  material,
			Credits:   t.credits[material],
		}

		t.counts[material]++
		t.history = append(t.history, event)
		events = append(events, event)

		if t.sink != nil {
			if err := t.sink.AppendEvent(event); err != nil {
				log.Printf("Failed to back up detection event: %v", err)
			}
		}
	}

	return events
}

// Counts returns a copy of the per-material detection counts.
func (t *Tracker) Counts() map[Material]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[Material]int, len(t.counts))
	for m, c := range t.counts {
		counts[m] = c
	}
	return counts
}

// History returns a copy of the full detection history in insertion order.
func (t *Tracker) History() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	history := make([]Event, len(t.history))
	copy(history, t.history)
	return history
}

// CreditTotal returns the sum of credits over the entire history.
func (t *Tracker) CreditTotal() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total := 0
	for _, e := range t.history {
		total += e.Credits
	}
	return total
}

// LastEvent returns the most recent event and true, or a zero Event and
// false when the history is empty.
func (t *Tracker) LastEvent() (Event, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.history) == 0 {
		return Event{}, false
	}
	return t.history[len(t.history)-1], true
}

// Restore replaces the counts and history with previously persisted
// events, in order. The sink is not notified; the events are already
// durable. Called once at startup before the pipeline runs.
func (t *Tracker) Restore(events []Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for m := range t.counts {
		t.counts[m] = 0
	}
	t.history = make([]Event, len(events))
	copy(t.history, events)
	for _, e := range events {
		t.counts[e.Material]++
	}
}

// Reset clears the counts and history. Used by the operator reset command.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for m := range t.counts {
		t.counts[m] = 0
	}
	t.history = nil
}
