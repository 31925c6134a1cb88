package sim

import (
	"fmt"
	"strings"
)

// Event categories and keys recorded by the simulation.
const (
	CatCommand   = "command"
	CatMove      = "move"
	CatCollision = "collision"
	CatPlan      = "plan"

	KeyRouteIssued      = "route_issued"
	KeyRouteUnreachable = "route_unreachable"
	KeySkipped          = "skipped"
	KeyWaypoint         = "waypoint"
	KeyArrived          = "arrived"
	KeyPosition         = "position"
	KeyContact          = "contact"
	KeyQueued           = "queued"
	KeyStale            = "stale"
)

// Event is one recorded occurrence during a simulation.
type Event struct {
	Tick     int
	Agent    string  // label e.g. "W0", or "--" for global events
	Category string  // command, move, collision, plan
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the event as a fixed-width log line.
//
//	[T=042] W0   command   route_issued     12 tiles to (9,0)
func (e Event) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// EventLog collects structured simulation events. With a capacity of zero
// it is unbounded; otherwise the oldest events are dropped once full.
type EventLog struct {
	entries  []Event
	verbose  bool
	capacity int
	dropped  int
}

// NewEventLog creates an EventLog. If verbose is true, per-frame position
// and collision entries are also recorded.
func NewEventLog(verbose bool, capacity int) *EventLog {
	return &EventLog{verbose: verbose, capacity: capacity}
}

// Verbose reports whether per-frame entries are recorded.
func (l *EventLog) Verbose() bool { return l.verbose }

// Add records a new event.
func (l *EventLog) Add(tick int, agent, category, key, value string, numVal float64) {
	if l.capacity > 0 && len(l.entries) >= l.capacity {
		// Shift rather than ring so Entries stays a plain ordered slice.
		n := copy(l.entries, l.entries[1:])
		l.entries = l.entries[:n]
		l.dropped++
	}
	l.entries = append(l.entries, Event{
		Tick:     tick,
		Agent:    agent,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an event only when verbose mode is on.
func (l *EventLog) AddVerbose(tick int, agent, category, key, value string, numVal float64) {
	if !l.verbose {
		return
	}
	l.Add(tick, agent, category, key, value, numVal)
}

// Entries returns all retained events, oldest first.
func (l *EventLog) Entries() []Event { return l.entries }

// Dropped returns how many events were evicted by the capacity bound.
func (l *EventLog) Dropped() int { return l.dropped }

// Recent returns up to n of the newest events, oldest first.
func (l *EventLog) Recent(n int) []Event {
	if n >= len(l.entries) {
		return l.entries
	}
	return l.entries[len(l.entries)-n:]
}

// Filter returns events matching the given category and/or key.
// Pass empty string to match any value for that field.
func (l *EventLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns events for a specific werf label.
func (l *EventLog) FilterAgent(label string) []Event {
	var out []Event
	for _, e := range l.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns events within [fromTick, toTick] inclusive.
func (l *EventLog) FilterTickRange(fromTick, toTick int) []Event {
	var out []Event
	for _, e := range l.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many events match the given category and key.
func (l *EventLog) CountCategory(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the most recent event matching category+key, or false if none.
func (l *EventLog) LastOf(category, key string) (Event, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.Category == category && e.Key == key {
			return e, true
		}
	}
	return Event{}, false
}

// HasEntry returns true if at least one event matches category, key, and value substring.
func (l *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (l *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (l *EventLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range l.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
