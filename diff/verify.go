package diff

import "github.com/phoenix-tui/phoenix/cell"

// Apply simulates presenting spans onto a terminal grid that starts as a
// clone of start, returning the resulting grid. It models exactly what a
// presenter tracking cursor position would do: each span's cells are
// written starting at (StartCol, Row) in order. Used by tests to verify
// diff correctness: Apply(diff(P, C), P) must equal C for every strategy,
// and Redraw/Full additionally imply the result doesn't depend on start's
// prior contents outside of dimensions.
func Apply(spans []Span, start *cell.Buffer) *cell.Buffer {
	result := start.Clone()
	for _, span := range spans {
		for i, c := range span.Cells {
			result.Set(span.StartCol+i, span.Row, c)
		}
	}
	return result
}

// Equal reports whether two buffers of the same dimensions hold identical
// cell content, used to check Apply's output against the intended target.
func Equal(a, b *cell.Buffer) bool {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return false
	}
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			if !a.Get(x, y).Equals(b.Get(x, y)) {
				return false
			}
		}
	}
	return true
}
