package diff

import (
	"testing"

	"github.com/phoenix-tui/phoenix/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankBuffer(w, h int) *cell.Buffer {
	return cell.NewBuffer(w, h)
}

func TestEngine_GuardsDimensionMismatch(t *testing.T) {
	e := NewEngine()
	prev := blankBuffer(80, 24)
	curr := blankBuffer(100, 24)
	d := e.Compute(prev, curr, true)
	assert.Equal(t, Full, d.Strategy)
	assert.Equal(t, "dimension_mismatch", d.GuardReason)
}

func TestEngine_GuardsCapabilityFailure(t *testing.T) {
	e := NewEngine()
	prev := blankBuffer(80, 24)
	curr := blankBuffer(80, 24)
	d := e.Compute(prev, curr, false)
	assert.Equal(t, Redraw, d.Strategy)
	assert.Equal(t, "capability_probe_failed", d.GuardReason)
}

func TestEngine_DiffMinimality_S2(t *testing.T) {
	e := NewEngine()
	prev := blankBuffer(80, 24)
	curr := blankBuffer(80, 24)
	curr.SetString(10, 5, "Hello", cell.ColorWhite, cell.Color{}, 0)

	// prime the incumbent toward DirtyRows so this frame actually picks it.
	e.incumbent = DirtyRows

	d := e.Compute(prev, curr, true)
	require.Equal(t, DirtyRows, d.Strategy)
	require.Len(t, d.Spans, 1)
	span := d.Spans[0]
	assert.Equal(t, 5, span.Row)
	assert.Equal(t, 10, span.StartCol)
	assert.Equal(t, 5, len(span.Cells))
	for i, want := range "Hello" {
		assert.Equal(t, want, span.Cells[i].Rune)
	}
}

func TestEngine_DiffCorrectness_AllStrategies(t *testing.T) {
	prev := blankBuffer(20, 5)
	curr := blankBuffer(20, 5)
	curr.SetString(2, 1, "hi", cell.ColorWhite, cell.Color{}, 0)
	curr.SetString(0, 4, "world", cell.ColorWhite, cell.Color{}, 0)

	for _, strategy := range allStrategies {
		e := NewEngine()
		e.incumbent = strategy
		var d Decision
		switch strategy {
		case Full:
			d = e.finalize(Decision{}, Full, prev, curr)
		case Redraw:
			d = e.finalize(Decision{}, Redraw, prev, curr)
		case DirtyRows:
			d = e.finalize(Decision{}, DirtyRows, prev, curr)
		}
		result := Apply(d.Spans, prev)
		assert.True(t, Equal(result, curr), "strategy %s must reproduce curr", strategy)
	}
}

func TestEngine_Hysteresis_BlocksMarginalSwitch(t *testing.T) {
	e := NewEngine()
	e.incumbent = Full
	e.posteriors[Full].mean = 10
	e.posteriors[Full].count = 5
	e.posteriors[DirtyRows].mean = 9.5 // better, but not by 1.1x
	e.posteriors[DirtyRows].count = 5

	var d Decision
	chosen := e.selectWithHysteresis(map[Strategy]float64{Full: 10, DirtyRows: 9.5, Redraw: 30}, &d)
	assert.Equal(t, Full, chosen)
	assert.True(t, d.HysteresisApplied)
}

func TestEngine_Hysteresis_AllowsLargeImprovement(t *testing.T) {
	e := NewEngine()
	e.incumbent = Full
	e.posteriors[Full].mean = 100
	e.posteriors[Full].count = 5
	e.posteriors[DirtyRows].mean = 5
	e.posteriors[DirtyRows].count = 5

	var d Decision
	chosen := e.selectWithHysteresis(map[Strategy]float64{Full: 100, DirtyRows: 5, Redraw: 300}, &d)
	assert.Equal(t, DirtyRows, chosen)
	assert.False(t, d.HysteresisApplied)
}

func TestEngine_TieBreak_KeepsIncumbent(t *testing.T) {
	e := NewEngine()
	e.incumbent = DirtyRows
	e.posteriors[DirtyRows].mean = 10
	e.posteriors[DirtyRows].count = 3
	e.posteriors[Full].mean = 10
	e.posteriors[Full].count = 3

	var d Decision
	chosen := e.selectWithHysteresis(map[Strategy]float64{Full: 10, DirtyRows: 10, Redraw: 10}, &d)
	assert.Equal(t, DirtyRows, chosen)
}

func TestEngine_SelectionIsDeterministic(t *testing.T) {
	prev := blankBuffer(40, 10)
	curr := blankBuffer(40, 10)
	curr.SetString(1, 1, "x", cell.ColorWhite, cell.Color{}, 0)

	e1 := NewEngine()
	e2 := NewEngine()
	d1 := e1.Compute(prev, curr, true)
	d2 := e2.Compute(prev, curr, true)
	assert.Equal(t, d1.Strategy, d2.Strategy)
	assert.Equal(t, d1.DirtyRows, d2.DirtyRows)
}
