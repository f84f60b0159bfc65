package diff

import "github.com/phoenix-tui/phoenix/cell"

// Span is a contiguous run of cells within one row that must be rewritten.
type Span struct {
	Row      int
	StartCol int
	Cells    []cell.Cell
}

// EndCol is the exclusive column one past the span's last cell.
func (s Span) EndCol() int {
	return s.StartCol + len(s.Cells)
}

// GapDefault is the default coalescing gap: dirty ranges within this many
// columns of each other are merged into one span, because the ANSI cost of
// repositioning the cursor (5-8 bytes for a CSI cursor-position sequence) is
// larger than the cost of overwriting a few already-correct cells (1-4 bytes
// each) in between.
const GapDefault = 3

// coalesce walks a sorted list of dirty column indices for one row and
// merges them into spans, extending the current span whenever the next dirty
// column is within gap cells of its end, pulling in any already-correct
// cells that fall inside the gap so the emitted span is truly contiguous.
func coalesce(row int, dirtyCols []int, buf *cell.Buffer, gap int) []Span {
	if len(dirtyCols) == 0 {
		return nil
	}
	var spans []Span
	start := dirtyCols[0]
	end := start + 1
	for _, col := range dirtyCols[1:] {
		if col <= end+gap {
			if col+1 > end {
				end = col + 1
			}
			continue
		}
		spans = append(spans, buildSpan(row, start, end, buf))
		start, end = col, col+1
	}
	spans = append(spans, buildSpan(row, start, end, buf))
	return spans
}

func buildSpan(row, start, end int, buf *cell.Buffer) Span {
	cells := make([]cell.Cell, 0, end-start)
	for x := start; x < end; x++ {
		cells = append(cells, buf.Get(x, row))
	}
	return Span{Row: row, StartCol: start, Cells: cells}
}
