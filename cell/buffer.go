package cell

import "github.com/rivo/uniseg"

// Buffer is a fixed-size row-major grid of Cells. It is single-writer during
// a view call and exclusively owned by whichever subsystem currently holds
// it: the runtime keeps two live buffers (current scratch, previous
// presented) plus a shared grapheme Pool.
type Buffer struct {
	width, height int
	cells         []Cell
	pool          *Pool
	degradation   Degradation
}

// NewBuffer allocates a width x height buffer of empty cells. Negative
// dimensions clamp to zero.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	b := &Buffer{width: width, height: height, pool: NewPool()}
	b.cells = make([]Cell, width*height)
	b.Clear()
	return b
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }
func (b *Buffer) Pool() *Pool { return b.pool }

// Degradation returns the level this buffer was tagged with when allocated
// for the current view call.
func (b *Buffer) Degradation() Degradation { return b.degradation }

// SetDegradation tags the buffer with the controller's current level.
func (b *Buffer) SetDegradation(level Degradation) { b.degradation = level }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

func (b *Buffer) index(x, y int) int { return y*b.width + x }

// Get returns the cell at (x, y). Out-of-bounds reads return a default empty
// cell rather than an error, per the silent-bounds-violation rule.
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Empty()
	}
	return b.cells[b.index(x, y)]
}

// Set writes cell at (x, y). Out-of-bounds writes are silently dropped.
//
// Wide-cell rule: if cell.Width == 2, (x+1, y) is atomically overwritten
// with a continuation marker (dropped instead if x+1 is out of bounds,
// degrading the wide cell to occupy only the column that fits). If the
// write lands on either half of an existing wide pair, the untouched half is
// first reset to a default cell so no stray continuation marker survives
// without its primary, and vice versa.
func (b *Buffer) Set(x, y int, c Cell) {
	if !b.inBounds(x, y) {
		return
	}
	b.breakWideAt(x, y)
	b.cells[b.index(x, y)] = c
	if c.Width == 2 {
		if b.inBounds(x+1, y) {
			b.breakWideAt(x+1, y)
			b.cells[b.index(x+1, y)] = continuation()
		}
	}
}

// breakWideAt clears the other half of a wide pair if (x,y) is currently
// part of one, so a write never leaves a dangling continuation marker or a
// wide primary with a clobbered other half.
func (b *Buffer) breakWideAt(x, y int) {
	cur := b.cells[b.index(x, y)]
	switch {
	case cur.Width == 2 && b.inBounds(x+1, y):
		b.cells[b.index(x+1, y)] = Empty()
	case cur.IsContinuation() && x > 0 && b.inBounds(x-1, y):
		b.cells[b.index(x-1, y)] = Empty()
	}
}

// Clear resets every cell to the default empty cell.
func (b *Buffer) Clear() {
	for i := range b.cells {
		b.cells[i] = Empty()
	}
}

// FillRow fills an entire row with c. If c is wide, only even columns carry
// content and the following column carries its continuation, per the
// wide-cell invariant.
func (b *Buffer) FillRow(y int, c Cell) {
	if y < 0 || y >= b.height {
		return
	}
	x := 0
	for x < b.width {
		b.Set(x, y, c)
		if c.Width == 2 {
			x += 2
		} else {
			x++
		}
	}
}

// SetString writes text starting at (x, y) using fg/bg/attrs, walking
// grapheme clusters so multi-codepoint glyphs occupy one logical cell each.
// Returns the number of columns advanced.
func (b *Buffer) SetString(x, y int, text string, fg, bg Color, attrs Attrs) int {
	col := x
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		cluster := gr.Str()
		w := clusterWidth(cluster)
		if w == 0 {
			continue
		}
		var c Cell
		if r := []rune(cluster); len(r) == 1 {
			c = NewRuneCell(r[0], fg, bg, attrs)
		} else {
			c = NewClusterCell(b.pool, cluster, fg, bg, attrs)
		}
		b.Set(col, y, c)
		col += w
	}
	return col - x
}

// Resize reallocates the buffer to (w, h), copying the overlapping region
// from the old contents and default-initializing newly exposed cells.
func (b *Buffer) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	next := make([]Cell, w*h)
	for i := range next {
		next[i] = Empty()
	}
	minW, minH := min(w, b.width), min(h, b.height)
	for y := 0; y < minH; y++ {
		copy(next[y*w:y*w+minW], b.cells[y*b.width:y*b.width+minW])
	}
	b.width, b.height, b.cells = w, h, next
}

// ClusterIDs returns the cluster handle referenced by each cell that carries
// one, with one entry per referencing cell (duplicates included for a
// cluster used by several cells), mirroring the one-Intern-call-per-cell
// pattern that produced those references. Used to bulk release or retain a
// buffer's holds on the shared pool when a frame retires.
func (b *Buffer) ClusterIDs() []ClusterID {
	var ids []ClusterID
	for _, c := range b.cells {
		if c.Cluster != 0 {
			ids = append(ids, c.Cluster)
		}
	}
	return ids
}

// GetRow returns a defensive copy of row y.
func (b *Buffer) GetRow(y int) []Cell {
	if y < 0 || y >= b.height {
		return nil
	}
	row := make([]Cell, b.width)
	copy(row, b.cells[y*b.width:(y+1)*b.width])
	return row
}

// Clone deep-copies the buffer, sharing the same grapheme pool (cluster
// handles stay valid since the pool outlives both buffers for the frame's
// duration).
func (b *Buffer) Clone() *Buffer {
	clone := &Buffer{width: b.width, height: b.height, pool: b.pool, degradation: b.degradation}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

// CopyFrom overwrites b's contents with src's, resizing if necessary. Used by
// the render pipeline to swap scratch into previous without reallocating the
// previous buffer on every frame when dimensions are unchanged.
func (b *Buffer) CopyFrom(src *Buffer) {
	if b.width != src.width || b.height != src.height {
		b.width, b.height = src.width, src.height
		b.cells = make([]Cell, len(src.cells))
	}
	copy(b.cells, src.cells)
	b.pool = src.pool
	b.degradation = src.degradation
}
