// Package budget apportions a per-frame wall-time envelope across render
// phases and drives the degradation ladder when frames consistently run
// over or under budget.
package budget

import (
	"time"

	"github.com/phoenix-tui/phoenix/cell"
	"github.com/phoenix-tui/phoenix/evidence"
)

// Phase identifies one of the four accounted render phases.
type Phase int

const (
	PhaseUpdate Phase = iota
	PhaseView
	PhaseDiff
	PhasePresent
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseUpdate:
		return "update"
	case PhaseView:
		return "view"
	case PhaseDiff:
		return "diff"
	case PhasePresent:
		return "present"
	default:
		return "unknown"
	}
}

// Config tunes the controller's thresholds. NewController uses every field
// as given; zero-value fields are not replaced by defaults, so callers start
// from DefaultConfig and override what they need.
type Config struct {
	Total            time.Duration // total per-frame budget, default 16ms
	PhaseShare       [4]float64    // fraction of Total per phase, defaults sum to 1
	DegradeWindow    int           // consecutive overruns before degrading, default 3
	UpgradeWindow    int           // consecutive within-budget frames before upgrading, default 30
	UpgradeMargin    float64       // required margin under budget to count, default 0.20
	ConformalAlpha   float64       // target miscoverage, default 0.10
	ConformalWindow  int           // calibration ring buffer size, default 200
}

// DefaultConfig returns the documented defaults: 16ms budget split
// 10/50/15/25 across update/view/diff/present, 3-frame degrade window,
// 30-frame upgrade window at a 20% margin, conformal alpha 0.10 over a
// 200-sample calibration window.
func DefaultConfig() Config {
	return Config{
		Total:           16 * time.Millisecond,
		PhaseShare:      [4]float64{0.10, 0.50, 0.15, 0.25},
		DegradeWindow:   3,
		UpgradeWindow:   30,
		UpgradeMargin:   0.20,
		ConformalAlpha:  0.10,
		ConformalWindow: 200,
	}
}

// Decision is the evidence-ledger payload for one frame's budget_decision
// entry.
type Decision struct {
	FrameIdx          uint64
	Kind              string // "steady" | "degrade" | "upgrade"
	DegradationBefore cell.Degradation
	DegradationAfter  cell.Degradation
	FrameTimeUs       int64
	BudgetUs          int64
	EValue            float64
	InWarmup          bool
	ConformalAlpha    float64
	ConformalQB       float64
	ConformalUpperUs  float64
	ConformalRisk     bool
}

// Evidence converts a Decision into its evidence-ledger entry.
func (d Decision) Evidence() evidence.BudgetDecision {
	return evidence.BudgetDecision{
		FrameIdx:          d.FrameIdx,
		Decision:          d.Kind,
		DegradationBefore: d.DegradationBefore.String(),
		DegradationAfter:  d.DegradationAfter.String(),
		FrameTimeUs:       d.FrameTimeUs,
		BudgetUs:          d.BudgetUs,
		EValue:            d.EValue,
		InWarmup:          d.InWarmup,
		ConformalAlpha:    d.ConformalAlpha,
		ConformalQB:       d.ConformalQB,
		ConformalUpperUs:  d.ConformalUpperUs,
		ConformalRisk:     d.ConformalRisk,
	}
}

// Controller tracks elapsed time for the current frame, the degradation
// ladder, and per-(phase, degradation-level) conformal predictors.
type Controller struct {
	cfg           Config
	degradation   cell.Degradation
	frameStart    time.Time
	frameIdx      uint64
	overruns      [phaseCount]int
	withinBudget  int
	predictors    map[bucketKey]*conformalPredictor
	nowFn         func() time.Time
}

type bucketKey struct {
	phase Phase
	level cell.Degradation
}

// NewController builds a Controller starting at Full degradation.
func NewController(cfg Config) *Controller {
	return &Controller{
		cfg:        cfg,
		predictors: make(map[bucketKey]*conformalPredictor),
		nowFn:      time.Now,
	}
}

// Degradation returns the current ladder level.
func (c *Controller) Degradation() cell.Degradation { return c.degradation }

// NextFrame resets the elapsed timer for a new frame and, if the last
// UpgradeWindow frames all finished within budget by UpgradeMargin, steps
// the degradation ladder up one level. Returns true if an upgrade happened.
func (c *Controller) NextFrame() bool {
	c.frameIdx++
	c.frameStart = c.nowFn()
	if c.withinBudget >= c.cfg.UpgradeWindow && c.degradation != cell.Full {
		c.degradation = c.degradation.Upgrade()
		c.withinBudget = 0
		return true
	}
	return false
}

// Elapsed returns the current frame's elapsed wall time.
func (c *Controller) Elapsed() time.Duration {
	return c.nowFn().Sub(c.frameStart)
}

// PhaseBudget returns the configured slice of Total for phase p.
func (c *Controller) PhaseBudget(p Phase) time.Duration {
	return time.Duration(float64(c.cfg.Total) * c.cfg.PhaseShare[p])
}

// Exhausted reports whether the current frame has already used its total
// budget.
func (c *Controller) Exhausted() bool {
	return c.Elapsed() >= c.cfg.Total
}

// RecordPhase folds one phase's observed duration into its conformal
// calibration bucket and, if it overran the phase budget, increments that
// phase's consecutive-overrun counter (reset to zero on an in-budget
// observation).
func (c *Controller) RecordPhase(p Phase, d time.Duration) {
	key := bucketKey{phase: p, level: c.degradation}
	pred, ok := c.predictors[key]
	if !ok {
		pred = newConformalPredictor(c.cfg.ConformalWindow, c.cfg.ConformalAlpha)
		c.predictors[key] = pred
	}
	pred.Observe(float64(d.Microseconds()))

	if d > c.PhaseBudget(p) {
		c.overruns[p]++
	} else {
		c.overruns[p] = 0
	}
}

// ShouldDegrade reports whether phase p has overrun its budget for
// DegradeWindow consecutive frames.
func (c *Controller) ShouldDegrade(p Phase) bool {
	return c.overruns[p] >= c.cfg.DegradeWindow
}

// Degrade steps the ladder down one level and resets the upgrade counter and
// every phase's overrun counter, so the next step down needs a fresh
// DegradeWindow of consecutive overruns.
func (c *Controller) Degrade() {
	c.degradation = c.degradation.Step()
	c.withinBudget = 0
	c.overruns = [phaseCount]int{}
}

// FinishFrame is called once present() completes; it feeds the upgrade
// counter and produces the frame's budget_decision evidence, including the
// conformal risk bound for the phase this frame spent the most time in.
func (c *Controller) FinishFrame(worstPhase Phase, kind string) Decision {
	frameTime := c.Elapsed()
	before := c.degradation

	inBudget := frameTime <= time.Duration(float64(c.cfg.Total)*(1-c.cfg.UpgradeMargin))
	if inBudget {
		c.withinBudget++
	} else {
		c.withinBudget = 0
	}

	d := Decision{
		FrameIdx:          c.frameIdx,
		Kind:              kind,
		DegradationBefore: before,
		DegradationAfter:  c.degradation,
		FrameTimeUs:       frameTime.Microseconds(),
		BudgetUs:          c.cfg.Total.Microseconds(),
		InWarmup:          c.frameIdx <= uint64(c.cfg.UpgradeWindow),
		ConformalAlpha:    c.cfg.ConformalAlpha,
	}
	// e-value for the null hypothesis "this frame is within budget": betting
	// against the budget pays off 1/frameTime-relative-to-budget, an
	// anytime-valid measure of evidence against steady-state performance.
	if frameTime > 0 {
		d.EValue = float64(c.cfg.Total) / float64(frameTime)
	}

	key := bucketKey{phase: worstPhase, level: c.degradation}
	if pred, ok := c.predictors[key]; ok {
		if qb, ready := pred.UpperBound(); ready {
			d.ConformalQB = qb
			d.ConformalUpperUs = qb
			d.ConformalRisk = qb > float64(c.cfg.Total.Microseconds())*c.cfg.PhaseShare[worstPhase]
		}
	}
	return d
}
