// Package present turns diff spans into an ANSI byte stream, tracking
// cursor position and the active SGR style so it never emits a redundant
// escape sequence.
package present

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/phoenix-tui/phoenix/cell"
	"github.com/phoenix-tui/phoenix/diff"
)

// activeStyle is the SGR state the writer believes the terminal currently
// holds, so WriteCell can skip emitting a style change the terminal already
// has in effect.
type activeStyle struct {
	fg, bg cell.Color
	attrs  cell.Attrs
	set    bool
}

// Writer presents diff spans (or a full buffer) as an ANSI byte stream over
// output, buffering writes and tracking cursor position/style so repeated
// presents of similar content cost almost nothing in redundant escapes.
type Writer struct {
	mu     sync.Mutex
	out    *bufio.Writer
	curX   int
	curY   int
	style  activeStyle
	pool   *cell.Pool
}

// NewWriter wraps output in a buffered ANSI presenter.
func NewWriter(output io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(output)}
}

// Present writes spans to the terminal in row-then-column order, using pool
// to resolve grapheme cluster cells. If fullRepaintHint is true the screen
// is cleared and the cursor homed first (used for the Redraw strategy and
// for the very first frame).
func (w *Writer) Present(spans []diff.Span, pool *cell.Pool, fullRepaintHint bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pool = pool

	if fullRepaintHint {
		w.out.WriteString(clearScreen)
		w.out.WriteString(cursorHome)
		w.curX, w.curY = 0, 0
		w.style = activeStyle{}
	}

	for _, span := range spans {
		w.moveCursorTo(span.StartCol, span.Row)
		for _, c := range span.Cells {
			w.writeCellLocked(c)
		}
	}
	return w.out.Flush()
}

func (w *Writer) moveCursorTo(x, y int) {
	if x == w.curX && y == w.curY {
		return
	}
	w.out.WriteString(moveCursor(x, y))
	w.curX, w.curY = x, y
}

func (w *Writer) writeCellLocked(c cell.Cell) {
	if c.IsContinuation() {
		// The primary half already advanced the cursor past this column;
		// nothing to emit for the marker itself.
		return
	}
	if !w.style.set || w.style.fg != c.Fg || w.style.bg != c.Bg || w.style.attrs != c.Attrs {
		w.out.WriteString(sgrSequence(c.Fg, c.Bg, c.Attrs))
		w.style = activeStyle{fg: c.Fg, bg: c.Bg, attrs: c.Attrs, set: true}
	}
	w.out.WriteString(c.Grapheme(w.pool))
	w.curX += int(c.Width)
}

// sgrSequence builds the CSI SGR sequence for fg/bg/attrs. An empty style
// (default colors, no attributes) resets to plain text.
func sgrSequence(fg, bg cell.Color, attrs cell.Attrs) string {
	var codes []string
	if !fg.IsTransparent() {
		codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", fg.R, fg.G, fg.B))
	}
	if !bg.IsTransparent() {
		codes = append(codes, fmt.Sprintf("48;2;%d;%d;%d", bg.R, bg.G, bg.B))
	}
	if attrs.Has(cell.Bold) {
		codes = append(codes, attrBoldOn)
	}
	if attrs.Has(cell.Dim) {
		codes = append(codes, attrDimOn)
	}
	if attrs.Has(cell.Italic) {
		codes = append(codes, attrItalicOn)
	}
	if attrs.Has(cell.Underline) || attrs.Has(cell.DoubleUnderline) || attrs.Has(cell.CurlyUnderline) {
		codes = append(codes, attrUnderlineOn)
	}
	if attrs.Has(cell.Blink) {
		codes = append(codes, attrBlinkOn)
	}
	if attrs.Has(cell.Reverse) {
		codes = append(codes, attrReverseOn)
	}
	if attrs.Has(cell.Hidden) {
		codes = append(codes, attrHiddenOn)
	}
	if attrs.Has(cell.Strikethrough) {
		codes = append(codes, attrStrikeOn)
	}
	if len(codes) == 0 {
		return reset
	}
	return csi + "0;" + strings.Join(codes, ";") + "m"
}

// WriteLog appends text to the scrollback region below the UI without
// disturbing cursor position or style tracking: it saves the cursor, starts
// a new line below the cursor's current row, writes, and restores the cursor.
func (w *Writer) WriteLog(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out.WriteString(csi + "s") // save cursor
	w.out.WriteString("\r\n")
	w.out.WriteString(text)
	w.out.WriteString(csi + "u") // restore cursor
	w.out.Flush()
}

// HideCursor/ShowCursor toggle cursor visibility.
func (w *Writer) HideCursor() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out.WriteString(hideCursor)
	w.out.Flush()
}

func (w *Writer) ShowCursor() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out.WriteString(showCursor)
	w.out.Flush()
}

// SetCursor moves the terminal cursor to (x, y), used by the runtime to
// place the real cursor after a frame's content has been presented.
func (w *Writer) SetCursor(x, y int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.moveCursorTo(x, y)
	w.out.Flush()
}

// EnterAltScreen/ExitAltScreen toggle the alternate screen buffer.
func (w *Writer) EnterAltScreen() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out.WriteString(altScreenEnable)
	w.out.Flush()
}

func (w *Writer) ExitAltScreen() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out.WriteString(altScreenDisable)
	w.out.Flush()
}

// Reset clears cached cursor/style state, forcing the next Present to emit
// a full style+position sequence regardless of what it believes the
// terminal holds. Used after a resize or an external process suspends the
// program and may have left the terminal in an unknown state.
func (w *Writer) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.curX, w.curY = -1, -1
	w.style = activeStyle{}
}
