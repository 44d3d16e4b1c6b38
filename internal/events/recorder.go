package events

import (
	"sync"
	"time"

	"stagehand/pkg/logging"
)

// Recorder receives lifecycle events. Implementations must be safe for
// concurrent use; workers record from their own goroutines.
type Recorder interface {
	Record(reason EventReason, data EventData)
}

// Nop discards every event.
var Nop Recorder = nopRecorder{}

type nopRecorder struct{}

func (nopRecorder) Record(EventReason, EventData) {}

// LogRecorder renders events through the message templates and writes them
// to the structured log. Warnings are logged at warn level, everything else
// at debug level.
type LogRecorder struct {
	templates *MessageTemplateEngine
}

// NewLogRecorder creates a LogRecorder with the default templates.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{templates: NewMessageTemplateEngine()}
}

// Record implements Recorder.
func (r *LogRecorder) Record(reason EventReason, data EventData) {
	message := r.templates.Render(reason, data)
	if getEventType(reason) == EventTypeWarning {
		logging.Warn("Events", "%s: %s", reason, message)
		return
	}
	logging.Debug("Events", "%s: %s", reason, message)
}

// SetTemplate allows customizing the message template for a specific event reason.
func (r *LogRecorder) SetTemplate(reason EventReason, template string) {
	r.templates.SetTemplate(reason, template)
}

// MemoryRecorder keeps every event in memory, in arrival order.
type MemoryRecorder struct {
	mu        sync.Mutex
	events    []Event
	templates *MessageTemplateEngine
	now       func() time.Time
}

// NewMemoryRecorder creates an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		templates: NewMessageTemplateEngine(),
		now:       time.Now,
	}
}

// Record implements Recorder.
func (r *MemoryRecorder) Record(reason EventReason, data EventData) {
	ev := Event{
		Reason:    reason,
		Type:      getEventType(reason),
		Message:   r.templates.Render(reason, data),
		Data:      data,
		Timestamp: r.now(),
	}

	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events with the given reason.
func (r *MemoryRecorder) Filter(reason EventReason) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, ev := range r.events {
		if ev.Reason == reason {
			out = append(out, ev)
		}
	}
	return out
}

// Count returns how many events with the given reason were recorded.
func (r *MemoryRecorder) Count(reason EventReason) int {
	return len(r.Filter(reason))
}

// Counts returns the number of recorded events per reason.
func (r *MemoryRecorder) Counts() map[EventReason]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[EventReason]int)
	for _, ev := range r.events {
		out[ev.Reason]++
	}
	return out
}

// Reset drops all recorded events.
func (r *MemoryRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Multi fans every event out to each recorder in order. Nil recorders are skipped.
func Multi(recorders ...Recorder) Recorder {
	var live []Recorder
	for _, rec := range recorders {
		if rec != nil {
			live = append(live, rec)
		}
	}
	switch len(live) {
	case 0:
		return Nop
	case 1:
		return live[0]
	}
	return multiRecorder(live)
}

type multiRecorder []Recorder

func (m multiRecorder) Record(reason EventReason, data EventData) {
	for _, rec := range m {
		rec.Record(reason, data)
	}
}
