// Package evidence is the append-only, JSONL decision ledger: one line per
// diff, budget, or resize decision, each carrying the posterior/statistical
// fields that justify the choice. Writes are non-blocking — correctness of
// rendering never depends on evidence reaching disk.
package evidence

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phoenix-tui/phoenix/internal/xlog"
)

// SchemaVersion is the stable schema version tag stamped on every entry.
const SchemaVersion = 1

// Sink is anything an entry's serialized JSON line can be appended to. The
// default sink wraps an io.Writer; tests typically use an in-memory sink.
type Sink interface {
	Write(line []byte) error
}

// Entry is the envelope every evidence line carries: a schema version, the
// run's correlation id, and a typed event payload (a DiffDecision,
// BudgetDecision, ResizeDecision or ResizeDecisionEvidence). RunID lets
// entries from the same program run be grouped when a ledger's output is
// appended to a file shared across restarts.
type Entry struct {
	SchemaVersion int    `json:"schema_version"`
	RunID         string `json:"run_id"`
	Event         any    `json:"event"`
}

// Ledger appends entries to a Sink without ever blocking the caller: Append
// enqueues onto a bounded channel drained by one background goroutine; if
// the channel is full the entry is dropped and DroppedCount is incremented.
type Ledger struct {
	sink    Sink
	runID   string
	queue   chan []byte
	dropped atomic.Uint64
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewLedger starts a Ledger draining into sink with a bounded queue of
// capacity entries (default 1024 if capacity <= 0), stamping every entry
// with a freshly generated run id.
func NewLedger(sink Sink, capacity int) *Ledger {
	if capacity <= 0 {
		capacity = 1024
	}
	l := &Ledger{sink: sink, runID: uuid.New().String(), queue: make(chan []byte, capacity), closeCh: make(chan struct{})}
	l.wg.Add(1)
	go l.drain()
	return l
}

// NewLedgerWithRunID behaves like NewLedger but stamps every entry with the
// given run id instead of a freshly generated one, for tests that need
// byte-identical output across separate Ledger instances.
func NewLedgerWithRunID(sink Sink, capacity int, runID string) *Ledger {
	l := NewLedger(sink, capacity)
	l.runID = runID
	return l
}

// RunID returns the correlation id stamped on every entry this ledger
// appends.
func (l *Ledger) RunID() string { return l.runID }

func (l *Ledger) drain() {
	defer l.wg.Done()
	for {
		select {
		case line := <-l.queue:
			if err := l.sink.Write(line); err != nil {
				xlog.Warn("evidence sink write failed", "error", err)
			}
		case <-l.closeCh:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case line := <-l.queue:
					_ = l.sink.Write(line)
				default:
					return
				}
			}
		}
	}
}

// Append serializes event under SchemaVersion and enqueues it. Marshaling
// happens synchronously (cheap, struct-typed, no reflection-heavy dynamic
// payloads) so that the only non-blocking step is the channel send; if the
// queue is full the entry is dropped and the counter incremented.
func (l *Ledger) Append(event any) {
	line, err := json.Marshal(Entry{SchemaVersion: SchemaVersion, RunID: l.runID, Event: event})
	if err != nil {
		xlog.Warn("evidence marshal failed", "error", err)
		l.dropped.Add(1)
		return
	}
	line = append(line, '\n')
	select {
	case l.queue <- line:
	default:
		l.dropped.Add(1)
	}
}

// DroppedCount reports how many entries were dropped due to sink
// backpressure or marshal failure.
func (l *Ledger) DroppedCount() uint64 {
	return l.dropped.Load()
}

// Close stops the drain goroutine after flushing whatever is already
// queued. Safe to call once.
func (l *Ledger) Close() {
	close(l.closeCh)
	l.wg.Wait()
}
