package runtime

import (
	"strings"
	"time"
	"unicode"

	"github.com/phoenix-tui/phoenix/backend"
	"github.com/phoenix-tui/phoenix/budget"
	"github.com/phoenix-tui/phoenix/cell"
	"github.com/phoenix-tui/phoenix/diff"
	"github.com/phoenix-tui/phoenix/evidence"
	"github.com/phoenix-tui/phoenix/event"
	"github.com/phoenix-tui/phoenix/internal/xlog"
)

// maxPollTimeout bounds how long one PollEvent call can block, so the loop
// still wakes up for ticks and pending resizes even with no input activity.
const maxPollTimeout = 50 * time.Millisecond

// Program drives one Model[T] end to end: polling the backend, dispatching
// messages through Update, reconciling subscriptions, debouncing resizes,
// and rendering through the diff/budget/present pipeline. Presentation goes
// exclusively through Backend.PresentUI — the runtime has no second,
// separately-injected output path.
type Program[T any] struct {
	model T
	impl  Model[T]

	be      backend.Backend
	diffEng *diff.Engine
	budgetC *budget.Controller
	ledger  *evidence.Ledger

	resize   *ResizeDebouncer
	resizeEv resizeEvidence

	msgCh   chan Msg
	taskCh  chan Msg
	quit    chan struct{}
	stopped bool

	subs map[string]func()

	prevBuf *cell.Buffer
	currBuf *cell.Buffer
	pool    *cell.Pool

	compositionActive bool

	frameIdx  uint64
	resizeIdx uint64
}

// NewProgram builds a Program for model, wiring fresh diff/budget/ledger
// components. ledger may be nil to disable evidence recording.
func NewProgram[T any](impl Model[T], model T, be backend.Backend, ledger *evidence.Ledger) *Program[T] {
	width, height := be.Size()
	p := &Program[T]{
		model:   model,
		impl:    impl,
		be:      be,
		diffEng: diff.NewEngine(),
		budgetC: budget.NewController(budget.DefaultConfig()),
		ledger:  ledger,
		resize:  NewResizeDebouncer(50*time.Millisecond, width, height),
		msgCh:   make(chan Msg, 256),
		taskCh:  make(chan Msg, 256),
		quit:    make(chan struct{}),
		subs:    make(map[string]func()),
	}
	p.pool = cell.NewPool()
	p.prevBuf = cell.NewBuffer(width, height)
	p.prevBuf.SetDegradation(cell.Full)
	return p
}

// Run executes Init, then the event loop, until a Quit command is executed.
// It returns once the loop has fully stopped.
func (p *Program[T]) Run() {
	p.dispatchCmd(p.impl.Init())
	p.reconcileSubscriptions()

	for {
		select {
		case <-p.quit:
			p.stopSubscriptions()
			return
		default:
		}
		p.tick()
	}
}

// tick runs one pass of the event-loop state machine: compute the effective
// poll timeout, poll and drain backend events, drain subscription/task
// messages, process the resize debouncer, and conditionally render a frame.
// Every Update dispatch triggered during the tick is individually timed and
// folded into updateElapsed, which becomes this frame's budget.PhaseUpdate
// observation — the accounting covers the real Update calls, not unrelated
// per-frame bookkeeping. Updates re-entered through a MsgCmd run inline
// during command dispatch and are not part of that sum.
func (p *Program[T]) tick() {
	now := time.Now()
	timeout := maxPollTimeout
	if remaining, pending := p.resize.TimeUntilApply(now); pending && remaining < timeout {
		timeout = remaining
	}

	var updateElapsed time.Duration
	dirty := false
	if p.be.PollEvent(timeout) {
		for {
			ev, ok := p.be.ReadEvent()
			if !ok {
				break
			}
			updateElapsed += p.handleBackendEvent(ev)
			dirty = true
		}
	}

drainMsgs:
	for {
		select {
		case m := <-p.msgCh:
			cmd, d := p.timedUpdate(m)
			updateElapsed += d
			p.dispatchCmd(cmd)
			dirty = true
		case m := <-p.taskCh:
			cmd, d := p.timedUpdate(m)
			updateElapsed += d
			p.dispatchCmd(cmd)
			dirty = true
		default:
			break drainMsgs
		}
	}

	if r := p.resize.Tick(time.Now()); r.Action == ResizeApply {
		updateElapsed += p.applyResize(r)
		dirty = true
	}

	if dirty || p.resize.Pending() {
		p.render(updateElapsed)
	}
}

// timedUpdate calls Update with msg, timing the call itself so callers can
// fold the duration into the frame's PhaseUpdate accounting.
func (p *Program[T]) timedUpdate(msg Msg) (Cmd, time.Duration) {
	start := time.Now()
	next, cmd := p.impl.Update(msg)
	elapsed := time.Since(start)
	p.model = next
	return cmd, elapsed
}

// handleBackendEvent converts a raw backend event into a Msg and feeds it
// through Update, implementing the composition state machine: a composition
// `update` that arrives with no prior `start` gets one synthesized first, key
// events are swallowed while a composition is in progress (the IME owns
// keystrokes until the composition ends or is cancelled), and a synthetic
// CompositionCancel is inserted ahead of a focus-loss event reaching Update if
// a composition is active. It returns the total time spent inside Update
// calls triggered by this event, for the frame's PhaseUpdate accounting.
func (p *Program[T]) handleBackendEvent(ev event.Event) time.Duration {
	var elapsed time.Duration

	if f, ok := ev.(event.Focus); ok && !f.Focused && p.compositionActive {
		cmd, d := p.timedUpdate(event.Composition{Phase: event.CompositionCancel})
		elapsed += d
		p.dispatchCmd(cmd)
		p.compositionActive = false
	}

	if c, ok := ev.(event.Composition); ok {
		if c.Phase == event.CompositionUpdate && !p.compositionActive {
			cmd, d := p.timedUpdate(event.Composition{Phase: event.CompositionStart})
			elapsed += d
			p.dispatchCmd(cmd)
		}
		p.compositionActive = c.Phase == event.CompositionStart || c.Phase == event.CompositionUpdate
		cmd, d := p.timedUpdate(ev)
		elapsed += d
		p.dispatchCmd(cmd)
		return elapsed
	}

	if _, ok := ev.(event.Key); ok && p.compositionActive {
		return elapsed
	}

	if r, ok := ev.(event.Resize); ok {
		now := time.Now()
		wasPending := p.resize.Pending()
		action := p.resize.HandleResize(r.Width, r.Height, now)
		if action != ResizeNone {
			p.resizeIdx++
			decision, resEv := p.resizeEv.recordPending(p.resizeIdx, now, p.resize.debounceWindow, wasPending)
			if p.ledger != nil {
				p.ledger.Append(decision)
				p.ledger.Append(resEv)
			}
		}
		return elapsed
	}

	cmd, d := p.timedUpdate(ev)
	elapsed += d
	p.dispatchCmd(cmd)
	return elapsed
}

func (p *Program[T]) applyResize(r ResizeResult) time.Duration {
	cmd, elapsed := p.timedUpdate(event.Resize{Width: r.Width, Height: r.Height})

	now := time.Now()
	p.resizeIdx++
	decision, ev := p.resizeEv.recordApply(p.resizeIdx, now, p.resize.debounceWindow, r.Elapsed)
	if p.ledger != nil {
		p.ledger.Append(decision)
		p.ledger.Append(ev)
	}

	p.dispatchCmd(cmd)
	return elapsed
}

// dispatchCmd expands c into its leaf commands and executes each in order.
func (p *Program[T]) dispatchCmd(c Cmd) {
	for _, leaf := range flatten(c) {
		p.runLeaf(leaf)
	}
}

func (p *Program[T]) runLeaf(c Cmd) {
	switch v := c.(type) {
	case Quit:
		if !p.stopped {
			p.stopped = true
			close(p.quit)
		}
	case MsgCmd:
		cmd, _ := p.timedUpdate(v.Msg)
		p.dispatchCmd(cmd)
	case Tick:
		go p.runTick(v.Interval)
	case Log:
		p.be.WriteLog(strings.Map(func(r rune) rune {
			if unicode.IsControl(r) && r != '\n' && r != '\t' {
				return -1
			}
			return r
		}, v.Text))
	case Task:
		go func() {
			msg := v.Run()
			select {
			case p.taskCh <- msg:
			case <-p.quit:
			}
		}()
	case SaveState, RestoreState:
		// No persistence registry wired by default; a host application
		// intercepts these before they reach dispatchCmd to supply one.
	}
}

func (p *Program[T]) runTick(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case now := <-t.C:
			select {
			case p.msgCh <- TickMsg{Time: now}:
			case <-p.quit:
				return
			}
		case <-p.quit:
			return
		}
	}
}

// reconcileSubscriptions starts any subscription in the model's current set
// that isn't already running, and stops any running one no longer declared.
func (p *Program[T]) reconcileSubscriptions() {
	declared := make(map[string]bool)
	for _, s := range p.impl.Subscriptions() {
		declared[s.ID()] = true
		if _, running := p.subs[s.ID()]; running {
			continue
		}
		stop := s.Start(func(m Msg) {
			select {
			case p.msgCh <- m:
			case <-p.quit:
			}
		})
		p.subs[s.ID()] = stop
	}
	for id, stop := range p.subs {
		if !declared[id] {
			stop()
			delete(p.subs, id)
		}
	}
}

func (p *Program[T]) stopSubscriptions() {
	for _, stop := range p.subs {
		stop()
	}
	p.subs = map[string]func(){}
}

// render executes the six-step rendering pipeline: reset the per-frame
// budget, record the update phase already measured by the caller, paint a
// resize placeholder if one is pending (otherwise call View into a fresh
// Frame), diff and present if budget remains, then mark the frame clean by
// retiring its grapheme-pool holds into the previous buffer.
func (p *Program[T]) render(updateElapsed time.Duration) {
	upgraded := p.budgetC.NextFrame()
	if upgraded {
		xlog.Info("runtime: degradation upgraded", "level", p.budgetC.Degradation())
	}

	width, height := p.be.Size()
	level := p.budgetC.Degradation()

	if p.budgetC.Exhausted() {
		return
	}

	p.budgetC.RecordPhase(budget.PhaseUpdate, updateElapsed)

	viewStart := time.Now()
	frame := cell.NewFrame(width, height, level, p.pool)
	if p.resize.Pending() {
		p.paintResizePlaceholder(frame)
	} else {
		p.impl.View(frame)
	}
	p.budgetC.RecordPhase(budget.PhaseView, time.Since(viewStart))

	p.currBuf = frame.Buffer
	if p.budgetC.Exhausted() {
		p.pool.ReleaseFrame(p.currBuf.ClusterIDs())
		p.finishFrame(budget.PhaseView)
		return
	}

	diffStart := time.Now()
	caps := p.be.Capabilities()
	decision := p.diffEng.Compute(p.prevBuf, p.currBuf, caps.DirectPositioning)
	p.budgetC.RecordPhase(budget.PhaseDiff, time.Since(diffStart))
	if p.ledger != nil {
		p.ledger.Append(decision.Evidence())
	}

	presentStart := time.Now()
	if err := p.be.PresentUI(p.currBuf, decision.Spans, decision.Strategy == diff.Redraw || p.frameIdx == 0); err != nil {
		xlog.Warn("runtime: present failed", "error", err)
	}
	p.budgetC.RecordPhase(budget.PhasePresent, time.Since(presentStart))

	p.retireFrame()
	p.reconcileSubscriptions()
	p.finishFrame(worstPhase(decision))

	for _, ph := range []budget.Phase{budget.PhaseUpdate, budget.PhaseView, budget.PhaseDiff, budget.PhasePresent} {
		if p.budgetC.ShouldDegrade(ph) {
			p.budgetC.Degrade()
			break
		}
	}
}

// retireFrame copies curr into prev and rebalances the grapheme pool's
// per-frame reference counts: prev's old holds are released, prev picks up
// fresh retains matching its new (curr's) content, and curr's own holds —
// now redundant with prev's — are released since curr itself retires here.
func (p *Program[T]) retireFrame() {
	staleIDs := p.prevBuf.ClusterIDs()
	p.prevBuf.CopyFrom(p.currBuf)
	p.pool.ReleaseFrame(staleIDs)
	p.pool.RetainFrame(p.prevBuf.ClusterIDs())
	p.pool.ReleaseFrame(p.currBuf.ClusterIDs())
	p.resizeEv.renderCompleted(time.Now())
}

func (p *Program[T]) finishFrame(worst budget.Phase) {
	d := p.budgetC.FinishFrame(worst, "steady")
	p.frameIdx++
	if p.ledger != nil {
		p.ledger.Append(d.Evidence())
	}
}

// paintResizePlaceholder fills the frame with a minimal placeholder while a
// resize is being debounced, so the screen doesn't show stale content mid
// drag but View also isn't re-run on every intermediate size.
func (p *Program[T]) paintResizePlaceholder(frame *cell.Frame) {
	frame.Buffer.Clear()
	frame.Buffer.SetString(0, 0, "resizing…", cell.Color{}, cell.Color{}, 0)
}

// worstPhase reports which render phase dominated the frame's evidence, used
// to key the conformal bucket consulted for this frame's risk bound. Diff
// strategies that touch the whole screen (Full, Redraw) spend most of their
// time presenting; DirtyRows spends it diffing.
func worstPhase(d diff.Decision) budget.Phase {
	if d.Strategy == diff.DirtyRows {
		return budget.PhaseDiff
	}
	return budget.PhasePresent
}
