package model

// Log is the append-only, ordered event sequence for one match. It is the
// single source of truth for match history: the only mutations are Append
// and Truncate (undo). Derived state is always recomputed from the full
// sequence, never patched in place.
type Log struct {
	events []Event
}

// NewLog creates a log seeded with an already-persisted event sequence.
func NewLog(events []Event) *Log {
	l := &Log{events: make([]Event, len(events))}
	copy(l.events, events)
	return l
}

// Append adds one event to the end of the log.
func (l *Log) Append(e Event) {
	l.events = append(l.events, e)
}

// Truncate drops the last n events. Truncating more events than the log
// holds empties it.
func (l *Log) Truncate(n int) {
	if n <= 0 {
		return
	}
	if n >= len(l.events) {
		l.events = l.events[:0]
		return
	}
	l.events = l.events[:len(l.events)-n]
}

// Events returns a copy of the event sequence in append order.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of events in the log.
func (l *Log) Len() int { return len(l.events) }

// Last returns the most recent event, or nil for an empty log.
func (l *Log) Last() Event {
	if len(l.events) == 0 {
		return nil
	}
	return l.events[len(l.events)-1]
}
