package cell


// Cell is a single screen position. Content is either a plain rune (the
// common case) or, when Cluster is non-zero, a handle into a Pool holding a
// multi-codepoint grapheme cluster. Width is 1 or 2 columns; a width-2 cell
// must be immediately followed in the same row by a Continuation cell (see
// Buffer.Set for the atomicity rule).
type Cell struct {
	Rune    rune
	Cluster ClusterID
	Width   uint8
	Fg      Color
	Bg      Color
	Attrs   Attrs
}

// continuationMarker is the rune carried by the right half of a wide cell,
// which has no content of its own and exists purely to occupy the second
// column.
var continuationMarker = rune(0)

// Empty returns the default cell: a single space, default colors, no
// attributes.
func Empty() Cell {
	return Cell{Rune: ' ', Width: 1}
}

// IsContinuation reports whether c is the right half of a wide cell.
func (c Cell) IsContinuation() bool {
	return c.Rune == continuationMarker && c.Width == 0
}

// IsEmpty reports whether c is a default, unstyled space.
func (c Cell) IsEmpty() bool {
	return c.Rune == ' ' && c.Cluster == 0 && c.Fg == Color{} && c.Bg == Color{} && c.Attrs == 0
}

// Equals compares content, width, colors and attributes, but not which pool
// a Cluster handle belongs to (callers comparing cells across buffers must
// share one pool, which is always true within one Buffer/previous pair).
func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune && c.Cluster == other.Cluster && c.Width == other.Width &&
		c.Fg == other.Fg && c.Bg == other.Bg && c.Attrs == other.Attrs
}

// WithStyle returns a copy of c with fg, bg and attrs replaced.
func (c Cell) WithStyle(fg, bg Color, attrs Attrs) Cell {
	c.Fg, c.Bg, c.Attrs = fg, bg, attrs
	return c
}

func continuation() Cell {
	return Cell{Rune: continuationMarker, Width: 0}
}

// NewRuneCell builds a Cell for a single rune, computing its display width.
// Zero-width runes (combining marks, control characters) get width 0; NUL is
// treated as an empty cell.
func NewRuneCell(r rune, fg, bg Color, attrs Attrs) Cell {
	if r == 0 {
		return Empty()
	}
	w := runeWidth(r)
	if r == ' ' {
		w = 1
	}
	return Cell{Rune: r, Width: uint8(w), Fg: fg, Bg: bg, Attrs: attrs}
}

// NewClusterCell interns s (a multi-codepoint grapheme cluster) into pool and
// builds a Cell referencing it, with width computed over the whole cluster.
func NewClusterCell(pool *Pool, s string, fg, bg Color, attrs Attrs) Cell {
	w := clusterWidth(s)
	id := pool.Intern(s)
	return Cell{Cluster: id, Width: uint8(w), Fg: fg, Bg: bg, Attrs: attrs}
}

// Grapheme returns the textual content of the cell: either the plain rune as
// a string, or the pooled cluster's string when Cluster is set.
func (c Cell) Grapheme(pool *Pool) string {
	if c.Cluster != 0 {
		return pool.Lookup(c.Cluster)
	}
	if c.Rune == continuationMarker {
		return ""
	}
	return string(c.Rune)
}
