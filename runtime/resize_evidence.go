package runtime

import (
	"time"

	"github.com/phoenix-tui/phoenix/evidence"
)

// resizeRateCapHz is the smoothed inter-arrival rate at or above which the
// resize stream is classified as the "rapid" regime (a user actively
// dragging a terminal border), used both to pick the regime label and to
// weight the rate contribution to the logged Bayes factor.
const resizeRateCapHz = 15.0

// resizeRateSmoothing is the EWMA weight given to each new inter-arrival
// sample when updating the tracked event rate.
const resizeRateSmoothing = 0.4

// resizeEvidence tracks the signals behind each resize decision — the
// smoothed event rate and the time since the last completed render — and
// turns them into the correlated decision/decision_evidence evidence pair.
type resizeEvidence struct {
	lastEventAt  time.Time
	hasLastEvent bool
	rateHz       float64

	lastRenderAt  time.Time
	hasLastRender bool
}

// observe folds one incoming resize event's arrival time into the smoothed
// event rate.
func (r *resizeEvidence) observe(now time.Time) {
	if r.hasLastEvent {
		dt := now.Sub(r.lastEventAt).Seconds()
		if dt > 0 {
			instant := 1 / dt
			r.rateHz = resizeRateSmoothing*instant + (1-resizeRateSmoothing)*r.rateHz
		}
	}
	r.lastEventAt = now
	r.hasLastEvent = true
}

// renderCompleted records that a frame finished presenting, resetting the
// clock the timing contribution is measured against.
func (r *resizeEvidence) renderCompleted(now time.Time) {
	r.lastRenderAt = now
	r.hasLastRender = true
}

// recordPending classifies a resize event that becomes or extends a pending,
// not-yet-applied resize: coalesce if it replaced an already-pending size,
// defer if it started a new pending run.
func (r *resizeEvidence) recordPending(eventIdx uint64, now time.Time, debounceWindow time.Duration, superseded bool) (evidence.ResizeDecision, evidence.ResizeDecisionEvidence) {
	dtMs := 0.0
	if r.hasLastEvent {
		dtMs = float64(now.Sub(r.lastEventAt).Microseconds()) / 1000
	}
	r.observe(now)

	action := "defer"
	if superseded {
		action = "coalesce"
	}
	return r.build(eventIdx, now, debounceWindow, action, dtMs, false)
}

// recordApply classifies a resize the debouncer has just applied. forced
// reports an apply that went through despite the stream still looking rapid
// at decision time — an edge case worth flagging rather than acting on,
// since the debouncer's own quiescence check is what actually gates apply.
func (r *resizeEvidence) recordApply(eventIdx uint64, now time.Time, debounceWindow time.Duration, elapsed time.Duration) (evidence.ResizeDecision, evidence.ResizeDecisionEvidence) {
	forced := r.rateHz >= resizeRateCapHz
	dtMs := float64(elapsed.Microseconds()) / 1000
	return r.build(eventIdx, now, debounceWindow, "apply", dtMs, forced)
}

func (r *resizeEvidence) build(eventIdx uint64, now time.Time, debounceWindow time.Duration, action string, dtMs float64, forced bool) (evidence.ResizeDecision, evidence.ResizeDecisionEvidence) {
	timeSinceRenderMs := 0.0
	if r.hasLastRender {
		timeSinceRenderMs = float64(now.Sub(r.lastRenderAt).Microseconds()) / 1000
	}

	regime := "settled"
	if r.rateHz >= resizeRateCapHz {
		regime = "rapid"
	}

	regimeContribution := 1.0
	if regime == "rapid" {
		regimeContribution = -1.0
	}
	rateContribution := -clamp(r.rateHz/resizeRateCapHz, 0, 1)
	windowMs := float64(debounceWindow.Microseconds()) / 1000
	timingContribution := 0.0
	if windowMs > 0 {
		timingContribution = clamp(timeSinceRenderMs/windowMs-1, -1, 1)
	}
	logBayesFactor := regimeContribution + timingContribution + rateContribution

	decision := evidence.ResizeDecision{
		EventIdx:          eventIdx,
		Action:            action,
		Regime:            regime,
		DtMs:              dtMs,
		EventRate:         r.rateHz,
		TimeSinceRenderMs: timeSinceRenderMs,
		Forced:            forced,
	}
	ev := evidence.ResizeDecisionEvidence{
		EventIdx:           eventIdx,
		LogBayesFactor:     logBayesFactor,
		RegimeContribution: regimeContribution,
		TimingContribution: timingContribution,
		RateContribution:   rateContribution,
		Explanation:        action + ": " + regime + " regime",
	}
	return decision, ev
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
