// Package diff computes minimal update spans between two cell buffers and
// chooses, per frame, which of three strategies to use to reach that result.
package diff

// Strategy is the choice of how to turn two buffers into terminal output.
type Strategy int

const (
	// Full emits the entire screen, one span per row.
	Full Strategy = iota
	// DirtyRows emits, for each differing row, one or more coalesced spans
	// covering its dirty columns; dirty runs farther apart than the
	// coalescing gap become separate spans.
	DirtyRows
	// Redraw clears the screen, resets the cursor, and emits full content;
	// used when the previous on-screen state can't be trusted.
	Redraw
)

func (s Strategy) String() string {
	switch s {
	case Full:
		return "full"
	case DirtyRows:
		return "dirty_rows"
	case Redraw:
		return "redraw"
	default:
		return "unknown"
	}
}

var allStrategies = [...]Strategy{Full, DirtyRows, Redraw}
