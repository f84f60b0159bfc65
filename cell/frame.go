package cell

// HitEntry tags one cell of the hit grid with the widget that owns it, for
// mouse hit-testing performed by the caller (widget layer), not by the core.
type HitEntry struct {
	WidgetID string
	Region   string
	Data     any
}

// Frame is the per-render handle passed to Model.View. It is created at the
// start of each view call and consumed by the presenter once view returns;
// nothing retains a Frame across frames.
type Frame struct {
	Buffer        *Buffer
	Cursor        Position
	CursorVisible bool
	hitGrid       []HitEntry // row-major, width*height, lazily allocated
	width, height int
}

// NewFrame allocates a scratch buffer of (width, height) tagged with level
// and wraps it in a Frame. The hit grid is allocated lazily by MarkHit so
// views that never need hit-testing pay nothing for it.
func NewFrame(width, height int, level Degradation, pool *Pool) *Frame {
	buf := &Buffer{width: width, height: height, pool: pool, degradation: level}
	buf.cells = make([]Cell, width*height)
	buf.Clear()
	return &Frame{Buffer: buf, width: width, height: height}
}

// MarkHit tags (x, y) with a hit-grid entry for later mouse hit-testing.
func (f *Frame) MarkHit(x, y int, entry HitEntry) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	if f.hitGrid == nil {
		f.hitGrid = make([]HitEntry, f.width*f.height)
	}
	f.hitGrid[y*f.width+x] = entry
}

// HitAt returns the hit-grid entry at (x, y), if any was marked.
func (f *Frame) HitAt(x, y int) (HitEntry, bool) {
	if f.hitGrid == nil || x < 0 || y < 0 || x >= f.width || y >= f.height {
		return HitEntry{}, false
	}
	e := f.hitGrid[y*f.width+x]
	return e, e.WidgetID != ""
}

// SetCursor positions and shows or hides the terminal cursor for this frame.
func (f *Frame) SetCursor(pos Position, visible bool) {
	f.Cursor = pos
	f.CursorVisible = visible
}

// Degradation reports the fidelity level the view call should honor.
func (f *Frame) Degradation() Degradation {
	return f.Buffer.Degradation()
}
