// Package backend defines the boundary the runtime requires of a terminal
// (or synthetic) I/O driver, and ships one concrete adapter over a real
// terminal. Full multi-platform backend implementations (raw-mode entry,
// signal handling, Windows Console API vs ANSI escapes) remain external
// collaborators per the core's scope; this package only implements enough
// of that boundary to drive the engine end to end.
package backend

import (
	"time"

	"github.com/phoenix-tui/phoenix/cell"
	"github.com/phoenix-tui/phoenix/diff"
	"github.com/phoenix-tui/phoenix/event"
)

// FeatureFlags toggles optional terminal capabilities.
type FeatureFlags uint8

const (
	FeatureMouse FeatureFlags = 1 << iota
	FeatureBracketedPaste
	FeatureFocusEvents
	FeatureExtendedKeyboard
)

// Capabilities describes what a backend can actually do, discovered at
// startup (and re-checked if a feature toggle fails).
type Capabilities struct {
	TrueColor        bool
	Color256         bool
	DirectPositioning bool
	Mouse            bool
	BracketedPaste   bool
	FocusEvents      bool
}

// Backend is the capability set the runtime requires of a terminal driver,
// the literal Go rendering of the engine's external I/O boundary.
type Backend interface {
	NowMono() time.Duration
	Size() (width, height int)
	SetFeatures(flags FeatureFlags)
	PollEvent(timeout time.Duration) bool
	ReadEvent() (event.Event, bool)
	Capabilities() Capabilities
	WriteLog(text string)
	PresentUI(buf *cell.Buffer, spans []diff.Span, fullRepaintHint bool) error
}
