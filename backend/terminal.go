package backend

import (
	"bufio"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/phoenix-tui/phoenix/cell"
	"github.com/phoenix-tui/phoenix/diff"
	"github.com/phoenix-tui/phoenix/event"
	"github.com/phoenix-tui/phoenix/internal/xlog"
	"github.com/phoenix-tui/phoenix/present"
	"golang.org/x/term"
)

// Terminal is a Backend implementation over a real os.File-backed terminal
// (normally os.Stdin/os.Stdout), using raw mode for direct keystroke
// delivery and the present package's ANSI writer for output. It implements
// enough of the Backend boundary to run the engine interactively; it is not
// the fully platform-specialized multi-backend (Windows Console API vs
// ANSI) a production TUI library ships — that remains an external
// collaborator's job.
type Terminal struct {
	in  *os.File
	out *os.File

	mu         sync.Mutex
	oldState   *term.State
	rawEntered bool

	writer *present.Writer
	events chan event.Event

	stopCh chan struct{}
	wg     sync.WaitGroup

	started time.Time
}

// NewTerminal builds a Terminal backend over in/out, typically os.Stdin and
// os.Stdout.
func NewTerminal(in, out *os.File) *Terminal {
	return &Terminal{
		in:      in,
		out:     out,
		writer:  present.NewWriter(out),
		events:  make(chan event.Event, 256),
		stopCh:  make(chan struct{}),
		started: time.Now(),
	}
}

// Open enters raw mode and starts the background input reader. Best-effort:
// if raw mode can't be entered (e.g. not a TTY, common in tests), it
// continues in cooked mode rather than failing the whole program, logging
// once per §7's capability-failure rule.
func (t *Terminal) Open() {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		xlog.Warn("terminal: raw mode unavailable, continuing in cooked mode", "error", err)
	} else {
		t.oldState = state
		t.rawEntered = true
	}
	t.wg.Add(1)
	go t.readLoop()
}

// Close restores the terminal's prior mode and stops the input reader. It
// always attempts cursor-visible + normal-screen restoration even if raw
// mode was never entered, matching §7's "terminal-restore guard runs during
// unwind" rule.
func (t *Terminal) Close() {
	close(t.stopCh)
	t.wg.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.writer.ShowCursor()
	t.writer.ExitAltScreen()
	if t.rawEntered {
		_ = term.Restore(int(t.in.Fd()), t.oldState)
		t.rawEntered = false
	}
}

func (t *Terminal) NowMono() time.Duration {
	return time.Since(t.started)
}

func (t *Terminal) Size() (int, int) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

func (t *Terminal) SetFeatures(flags FeatureFlags) {
	if flags&FeatureMouse != 0 {
		t.writer.EnterAltScreen() // placeholder: real mouse toggle lives in a widget-facing backend
	}
}

func (t *Terminal) Capabilities() Capabilities {
	_, ok := os.LookupEnv("COLORTERM")
	return Capabilities{
		TrueColor:         ok,
		Color256:          true,
		DirectPositioning: true,
		Mouse:             true,
		BracketedPaste:    true,
		FocusEvents:       true,
	}
}

func (t *Terminal) WriteLog(text string) {
	t.writer.WriteLog(text)
}

func (t *Terminal) PresentUI(buf *cell.Buffer, spans []diff.Span, fullRepaintHint bool) error {
	return t.writer.Present(spans, buf.Pool(), fullRepaintHint)
}

// PollEvent blocks up to timeout waiting for at least one event to become
// available; ReadEvent then drains the queue non-blockingly.
func (t *Terminal) PollEvent(timeout time.Duration) bool {
	select {
	case e := <-t.events:
		// Peek without losing it: push back via a one-slot buffer.
		t.pushBack(e)
		return true
	case <-time.After(timeout):
		return false
	case <-t.stopCh:
		return false
	}
}

var _ = utf8.RuneError // silence unused import if parser below is trimmed further

func (t *Terminal) pushBack(e event.Event) {
	// events is buffered; a push-back never blocks in practice because we
	// only just received from it (capacity headroom of at least 1).
	select {
	case t.events <- e:
	default:
	}
}

func (t *Terminal) ReadEvent() (event.Event, bool) {
	select {
	case e := <-t.events:
		return e, true
	default:
		return nil, false
	}
}

// readLoop parses raw stdin bytes into events and enqueues them. It handles
// the common cases (printable runes, Enter/Tab/Esc/Backspace/arrows,
// Ctrl-C) and resize via SIGWINCH is left to the caller polling Size()
// between frames, since signal delivery is explicitly an external
// collaborator's concern per the core's scope.
func (t *Terminal) readLoop() {
	defer t.wg.Done()
	r := bufio.NewReader(t.in)
	for {
		select {
		case <-t.stopCh:
			return
		default:
		}
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		if ev, ok := decodeByte(r, b); ok {
			select {
			case t.events <- ev:
			case <-t.stopCh:
				return
			}
		}
	}
}

func decodeByte(r *bufio.Reader, b byte) (event.Event, bool) {
	switch {
	case b == 0x03: // Ctrl-C
		return event.Key{Code: "ctrl+c", Kind: event.KeyPress, Mods: event.ModCtrl}, true
	case b == '\r' || b == '\n':
		return event.Key{Code: "enter", Kind: event.KeyPress}, true
	case b == '\t':
		return event.Key{Code: "tab", Kind: event.KeyPress}, true
	case b == 0x7f:
		return event.Key{Code: "backspace", Kind: event.KeyPress}, true
	case b == 0x1b:
		return decodeEscape(r)
	case b < 0x20:
		return nil, false
	default:
		// Re-assemble a UTF-8 rune starting with b.
		n := utf8SeqLen(b)
		buf := make([]byte, 1, n)
		buf[0] = b
		for i := 1; i < n; i++ {
			nb, err := r.ReadByte()
			if err != nil {
				break
			}
			buf = append(buf, nb)
		}
		r2, _ := utf8.DecodeRune(buf)
		return event.Key{Code: string(r2), Kind: event.KeyPress}, true
	}
}

func utf8SeqLen(b byte) int {
	switch {
	case b&0x80 == 0:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

func decodeEscape(r *bufio.Reader) (event.Event, bool) {
	b1, err := r.ReadByte()
	if err != nil {
		return event.Key{Code: "esc", Kind: event.KeyPress}, true
	}
	if b1 != '[' && b1 != 'O' {
		return event.Key{Code: "esc", Kind: event.KeyPress}, true
	}
	b2, err := r.ReadByte()
	if err != nil {
		return event.Key{Code: "esc", Kind: event.KeyPress}, true
	}
	switch b2 {
	case 'A':
		return event.Key{Code: "up", Kind: event.KeyPress}, true
	case 'B':
		return event.Key{Code: "down", Kind: event.KeyPress}, true
	case 'C':
		return event.Key{Code: "right", Kind: event.KeyPress}, true
	case 'D':
		return event.Key{Code: "left", Kind: event.KeyPress}, true
	case 'H':
		return event.Key{Code: "home", Kind: event.KeyPress}, true
	case 'F':
		return event.Key{Code: "end", Kind: event.KeyPress}, true
	default:
		return event.Key{Code: "esc", Kind: event.KeyPress}, true
	}
}
