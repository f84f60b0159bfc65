package diff

import (
	"github.com/phoenix-tui/phoenix/cell"
	"github.com/phoenix-tui/phoenix/evidence"
	"github.com/phoenix-tui/phoenix/internal/xlog"
)

// Decision records the outcome of one frame's strategy selection, including
// every field the evidence ledger's diff_decision entry requires.
type Decision struct {
	EventIdx          uint64
	Strategy          Strategy
	PosteriorMean     float64
	PosteriorVariance float64
	Alpha, Beta       float64
	GuardReason       string
	FallbackReason    string
	HysteresisApplied bool
	HysteresisRatio   float64
	DirtyRows         int
	TotalRows         int
	DirtyTileRatio    float64
	DirtyCellRatio    float64

	Spans []Span
}

// Evidence converts a Decision into its evidence-ledger entry.
func (d Decision) Evidence() evidence.DiffDecision {
	return evidence.DiffDecision{
		EventIdx:          d.EventIdx,
		Strategy:          d.Strategy.String(),
		PosteriorMean:     d.PosteriorMean,
		PosteriorVariance: d.PosteriorVariance,
		Alpha:             d.Alpha,
		Beta:              d.Beta,
		GuardReason:       d.GuardReason,
		FallbackReason:    d.FallbackReason,
		HysteresisApplied: d.HysteresisApplied,
		HysteresisRatio:   d.HysteresisRatio,
		DirtyRows:         d.DirtyRows,
		TotalRows:         d.TotalRows,
		DirtyTileRatio:    d.DirtyTileRatio,
		DirtyCellRatio:    d.DirtyCellRatio,
	}
}

// Engine selects a diff strategy per frame using a Bayesian posterior over
// expected cost, with hysteresis against incumbent flapping and hard guards
// for dimension mismatches and capability failures.
type Engine struct {
	incumbent       Strategy
	posteriors      map[Strategy]*PosteriorState
	HysteresisRatio float64
	Gap             int
	eventIdx        uint64
}

// NewEngine returns an Engine starting on Full with default hysteresis
// (1.1x) and coalescing gap (3 cells).
func NewEngine() *Engine {
	e := &Engine{
		incumbent:       Full,
		posteriors:      make(map[Strategy]*PosteriorState, len(allStrategies)),
		HysteresisRatio: 1.1,
		Gap:             GapDefault,
	}
	for _, s := range allStrategies {
		e.posteriors[s] = NewPosteriorState()
	}
	return e
}

// Incumbent returns the strategy currently in effect.
func (e *Engine) Incumbent() Strategy { return e.incumbent }

// Posterior exposes a strategy's posterior state for evidence reporting.
func (e *Engine) Posterior(s Strategy) *PosteriorState { return e.posteriors[s] }

// Compute selects a strategy for (prev, curr) and produces the spans to
// present, recording a full Decision for the evidence ledger. prev may be
// nil on the first frame. capabilityOK reports whether the backend's
// capability probe currently succeeds; false forces Redraw.
func (e *Engine) Compute(prev, curr *cell.Buffer, capabilityOK bool) Decision {
	e.eventIdx++
	d := Decision{EventIdx: e.eventIdx, HysteresisRatio: e.HysteresisRatio, TotalRows: curr.Height()}

	if prev == nil || prev.Width() != curr.Width() || prev.Height() != curr.Height() {
		d.GuardReason = "dimension_mismatch"
		return e.finalize(d, Full, prev, curr)
	}
	if !capabilityOK {
		d.GuardReason = "capability_probe_failed"
		return e.finalize(d, Redraw, prev, curr)
	}

	dirtyCols := make(map[int][]int, curr.Height())
	dirtyRows, dirtyCells, totalCells := 0, 0, curr.Width()*curr.Height()
	for y := 0; y < curr.Height(); y++ {
		var cols []int
		for x := 0; x < curr.Width(); x++ {
			if !prev.Get(x, y).Equals(curr.Get(x, y)) {
				cols = append(cols, x)
			}
		}
		if len(cols) > 0 {
			dirtyRows++
			dirtyCells += len(cols)
			dirtyCols[y] = cols
		}
	}
	d.DirtyRows = dirtyRows
	if curr.Height() > 0 {
		d.DirtyTileRatio = float64(dirtyRows) / float64(curr.Height())
	}
	if totalCells > 0 {
		d.DirtyCellRatio = float64(dirtyCells) / float64(totalCells)
	}

	if dirtyRows == 0 {
		return e.finalize(d, e.incumbent, prev, curr)
	}

	costFull := float64(totalCells)
	costRedraw := costFull + float64(curr.Height()) // reset + full repaint overhead
	costDirty := estimateDirtyCost(dirtyCols, e.Gap)

	costs := map[Strategy]float64{Full: costFull, DirtyRows: costDirty, Redraw: costRedraw}
	optimal := Full
	for _, s := range allStrategies {
		if costs[s] < costs[optimal] {
			optimal = s
		}
	}
	for _, s := range allStrategies {
		e.posteriors[s].Observe(costs[s], s == optimal)
	}

	chosen := e.selectWithHysteresis(costs, &d)
	return e.finalize(d, chosen, prev, curr)
}

// selectWithHysteresis picks argmin expected cost among posterior means,
// refusing to switch away from the incumbent unless the challenger's
// expected cost is at least HysteresisRatio times lower. A strategy with no
// cost observations yet is scored by its entry in costs. Ties keep the
// incumbent (stable tie-break).
func (e *Engine) selectWithHysteresis(costs map[Strategy]float64, d *Decision) Strategy {
	expected := func(s Strategy) float64 {
		if p := e.posteriors[s]; p.count > 0 {
			return p.Mean()
		}
		return costs[s]
	}
	best := e.incumbent
	bestCost := expected(e.incumbent)
	for _, s := range allStrategies {
		if s == e.incumbent {
			continue
		}
		c := expected(s)
		if c < bestCost {
			best = s
			bestCost = c
		}
	}
	if best == e.incumbent {
		return e.incumbent
	}
	incumbentCost := expected(e.incumbent)
	if incumbentCost < bestCost*e.HysteresisRatio {
		d.HysteresisApplied = true
		return e.incumbent
	}
	return best
}

func (e *Engine) finalize(d Decision, strategy Strategy, prev, curr *cell.Buffer) Decision {
	e.incumbent = strategy
	d.Strategy = strategy
	p := e.posteriors[strategy]
	d.PosteriorMean = p.Mean()
	d.PosteriorVariance = p.Variance()
	d.Alpha, d.Beta = p.Alpha, p.Beta

	switch strategy {
	case Full, Redraw:
		d.Spans = spansFull(curr)
	case DirtyRows:
		d.Spans = spansDirtyRows(prev, curr, e.Gap)
		if prev != nil && !Equal(Apply(d.Spans, prev), curr) {
			// Invariant breach: the coalesced spans didn't reproduce curr.
			// Fall back to Full for this frame rather than present a
			// divergent screen; no frame is skipped.
			d.FallbackReason = "diff_invariant_violation"
			xlog.Warn("diff: span invariant violated, falling back to full", "event_idx", d.EventIdx)
			d.Strategy = Full
			e.incumbent = Full
			d.Spans = spansFull(curr)
		}
	}
	return d
}

func estimateDirtyCost(dirtyCols map[int][]int, gap int) float64 {
	total := 0.0
	for _, cols := range dirtyCols {
		total += float64(coalescedWidth(cols, gap))
	}
	return total
}

// coalescedWidth sums the widths of the merged ranges coalesce would
// produce for cols, without needing buffer contents, for cheap per-frame
// cost estimation ahead of actually building spans.
func coalescedWidth(cols []int, gap int) int {
	if len(cols) == 0 {
		return 0
	}
	width := 0
	start, end := cols[0], cols[0]+1
	for _, col := range cols[1:] {
		if col <= end+gap {
			if col+1 > end {
				end = col + 1
			}
			continue
		}
		width += end - start
		start, end = col, col+1
	}
	width += end - start
	return width
}

func spansFull(curr *cell.Buffer) []Span {
	spans := make([]Span, 0, curr.Height())
	for y := 0; y < curr.Height(); y++ {
		spans = append(spans, Span{Row: y, StartCol: 0, Cells: curr.GetRow(y)})
	}
	return spans
}

func spansDirtyRows(prev, curr *cell.Buffer, gap int) []Span {
	var spans []Span
	for y := 0; y < curr.Height(); y++ {
		var cols []int
		for x := 0; x < curr.Width(); x++ {
			if !prev.Get(x, y).Equals(curr.Get(x, y)) {
				cols = append(cols, x)
			}
		}
		if len(cols) == 0 {
			continue
		}
		spans = append(spans, coalesce(y, cols, curr, gap)...)
	}
	return spans
}
