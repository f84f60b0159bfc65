package runtime

import "time"

// ResizeAction is what the resize debouncer tells the event loop to do.
type ResizeAction int

const (
	ResizeNone ResizeAction = iota
	ResizeShowPlaceholder
	ResizeApply
)

// ResizeResult carries the applied size and how long the resize was
// debounced, when Action is ResizeApply.
type ResizeResult struct {
	Action  ResizeAction
	Width   int
	Height  int
	Elapsed time.Duration
}

// ResizeDebouncer coalesces high-frequency resize events (a user dragging a
// terminal window border) into a single applied size change once input goes
// quiet for the debounce window.
type ResizeDebouncer struct {
	debounceWindow time.Duration
	lastResizeTime time.Time
	hasLastResize  bool
	pendingSize    [2]int
	hasPending     bool
	lastApplied    [2]int
}

// NewResizeDebouncer returns a debouncer with the given window, seeded with
// the size already considered "applied" (so the very first matching resize
// event is a no-op).
func NewResizeDebouncer(window time.Duration, initialWidth, initialHeight int) *ResizeDebouncer {
	return &ResizeDebouncer{debounceWindow: window, lastApplied: [2]int{initialWidth, initialHeight}}
}

// HandleResize records a new observed size. If it matches the last applied
// size and nothing is pending, it's a no-op; otherwise it becomes the
// pending size and the caller should show a placeholder until it settles.
func (d *ResizeDebouncer) HandleResize(width, height int, now time.Time) ResizeAction {
	if !d.hasPending && width == d.lastApplied[0] && height == d.lastApplied[1] {
		return ResizeNone
	}
	d.pendingSize = [2]int{width, height}
	d.hasPending = true
	d.lastResizeTime = now
	d.hasLastResize = true
	return ResizeShowPlaceholder
}

// Tick checks whether the pending size has been quiet for at least the
// debounce window and, if so, applies it.
func (d *ResizeDebouncer) Tick(now time.Time) ResizeResult {
	if !d.hasPending || !d.hasLastResize {
		return ResizeResult{Action: ResizeNone}
	}
	elapsed := now.Sub(d.lastResizeTime)
	if elapsed < d.debounceWindow {
		return ResizeResult{Action: ResizeNone}
	}
	applied := d.pendingSize
	d.hasPending = false
	d.hasLastResize = false
	d.lastApplied = applied
	return ResizeResult{Action: ResizeApply, Width: applied[0], Height: applied[1], Elapsed: elapsed}
}

// TimeUntilApply returns how long until a pending resize would apply, used
// by the event loop's poll-timeout calculation. The second return is false
// if nothing is pending.
func (d *ResizeDebouncer) TimeUntilApply(now time.Time) (time.Duration, bool) {
	if !d.hasPending || !d.hasLastResize {
		return 0, false
	}
	elapsed := now.Sub(d.lastResizeTime)
	remaining := d.debounceWindow - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Pending reports whether a resize is currently being debounced.
func (d *ResizeDebouncer) Pending() bool { return d.hasPending }
