package runtime

import "time"

// Cmd is a side effect requested by Update, drawn from a fixed variant set.
// The zero value (nil) means "no command".
type Cmd interface {
	isCmd()
}

// None is the explicit no-op command, equivalent to a nil Cmd but useful
// when a literal value reads better than a bare nil.
type None struct{}

func (None) isCmd() {}

// Quit stops the event loop after the current event batch finishes.
type Quit struct{}

func (Quit) isCmd() {}

// Batch runs its children sequentially, preserving order. This currently
// behaves identically to Sequence: both execute in order. Batch is kept as
// a distinct variant reserved for a future parallel implementation: nothing
// about this runtime relies on Batch's side effects being unobservable, so
// code should not depend on parallel execution even once it's introduced.
type Batch struct {
	Cmds []Cmd
}

func (Batch) isCmd() {}

// Sequence runs its children one after another, in order; the effects
// observable from Update occur in list order.
type Sequence struct {
	Cmds []Cmd
}

func (Sequence) isCmd() {}

// MsgCmd re-enters Update synchronously with Msg, without going through the
// channel-based event loop.
type MsgCmd struct {
	Msg Msg
}

func (MsgCmd) isCmd() {}

// Tick registers a recurring internal timer: the runtime emits a TickMsg at
// Interval until Update returns a different Tick (or no Tick at all, which
// stops it).
type Tick struct {
	Interval time.Duration
}

func (Tick) isCmd() {}

// TickMsg is delivered to Update on each tick firing.
type TickMsg struct {
	Time time.Time
}

// Log writes sanitized text to the scrollback region below the UI without
// disturbing the rendered frame: control characters other than newline and
// tab are removed before the text reaches the backend.
type Log struct {
	Text string
}

func (Log) isCmd() {}

// Task runs a side-effecting closure on the worker pool; its return message
// is delivered back into Update through a bounded channel. Ordering between
// concurrently running tasks is first-complete-first-delivered.
type Task struct {
	Run func() Msg
}

func (Task) isCmd() {}

// SaveState persists the current model snapshot through a host-supplied
// persistence registry. No persistence registry is wired by Program itself;
// a host application intercepts SaveState/RestoreState ahead of dispatchCmd
// to implement one. No-op otherwise.
type SaveState struct {
	Snapshot any
}

func (SaveState) isCmd() {}

// RestoreState requests the persistence registry's last saved snapshot,
// delivered back to Update as a RestoredStateMsg.
type RestoreState struct{}

func (RestoreState) isCmd() {}

// RestoredStateMsg carries a restored snapshot, or nil if none was saved.
type RestoredStateMsg struct {
	Snapshot any
}

// flatten expands Batch and Sequence into their leaf commands, in order.
// Nil entries and explicit None values are dropped.
func flatten(c Cmd) []Cmd {
	switch v := c.(type) {
	case nil:
		return nil
	case None:
		return nil
	case Batch:
		var out []Cmd
		for _, child := range v.Cmds {
			out = append(out, flatten(child)...)
		}
		return out
	case Sequence:
		var out []Cmd
		for _, child := range v.Cmds {
			out = append(out, flatten(child)...)
		}
		return out
	default:
		return []Cmd{c}
	}
}
