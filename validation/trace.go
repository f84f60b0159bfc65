package validation

import (
	"encoding/binary"
	"hash/fnv"
)

// EventKind names the validation lifecycle event types.
type EventKind int

const (
	Started EventKind = iota
	Cancelled
	Completed
	Applied
	StaleDiscarded
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Cancelled:
		return "cancelled"
	case Completed:
		return "completed"
	case Applied:
		return "applied"
	case StaleDiscarded:
		return "stale_discarded"
	default:
		return "unknown"
	}
}

// Event is one entry in a validation Trace: a full lifecycle record
// carrying whichever fields its Kind uses, with the others left zero.
type Event struct {
	Kind          EventKind
	Token         Token
	SupersededBy  Token // Cancelled
	CurrentToken  Token // StaleDiscarded
	IsValid       bool  // Completed, Applied
	DurationNs    uint64
	ElapsedNs     uint64
}

// Trace is an ordered, append-only record of validation lifecycle events,
// checksummable for golden-trace regression testing: running an identical
// event sequence twice must produce an identical checksum.
type Trace struct {
	events []Event
}

// Push appends an event.
func (t *Trace) Push(e Event) { t.events = append(t.events, e) }

// Events returns the full ordered event list.
func (t *Trace) Events() []Event { return t.events }

// Len reports how many events are recorded.
func (t *Trace) Len() int { return len(t.events) }

// EventsForToken filters the trace to events carrying the given token.
func (t *Trace) EventsForToken(tok Token) []Event {
	var out []Event
	for _, e := range t.events {
		if e.Token == tok {
			out = append(out, e)
		}
	}
	return out
}

// ContainsEventType reports whether the trace has an event of kind for tok.
func (t *Trace) ContainsEventType(tok Token, kind EventKind) bool {
	for _, e := range t.events {
		if e.Token == tok && e.Kind == kind {
			return true
		}
	}
	return false
}

// Clear empties the trace.
func (t *Trace) Clear() { t.events = nil }

// Checksum hashes every event's fields, in order, into a single uint64.
// Identical event sequences produce identical checksums; any change to
// event data or ordering changes the result.
func (t *Trace) Checksum() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	for _, e := range t.events {
		write(uint64(e.Kind))
		write(uint64(e.Token))
		write(uint64(e.SupersededBy))
		write(uint64(e.CurrentToken))
		if e.IsValid {
			write(1)
		} else {
			write(0)
		}
		write(e.DurationNs)
		write(e.ElapsedNs)
	}
	return h.Sum64()
}

// VerifyInvariants checks the trace's internal consistency: Started tokens
// are monotonic, and every StaleDiscarded event's token is strictly less
// than the current_token it was compared against. Returns a human-readable
// violation per broken invariant.
func (t *Trace) VerifyInvariants() []string {
	var violations []string
	lastStarted := None
	for _, e := range t.events {
		if e.Kind == Started {
			if e.Token <= lastStarted {
				violations = append(violations, "non-monotonic start token")
			}
			lastStarted = e.Token
		}
	}
	for _, e := range t.events {
		if e.Kind == StaleDiscarded && e.Token >= e.CurrentToken {
			violations = append(violations, "stale-discarded event with non-stale token")
		}
	}
	return violations
}
