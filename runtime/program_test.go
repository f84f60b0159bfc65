package runtime

import (
	"sync"
	"time"

	"testing"

	"github.com/phoenix-tui/phoenix/backend"
	"github.com/phoenix-tui/phoenix/cell"
	"github.com/phoenix-tui/phoenix/diff"
	"github.com/phoenix-tui/phoenix/event"
	"github.com/stretchr/testify/assert"
)

type fakeBackend struct {
	mu           sync.Mutex
	events       []event.Event
	width        int
	height       int
	presentCalls int
}

func newFakeBackend(w, h int) *fakeBackend {
	return &fakeBackend{width: w, height: h}
}

func (f *fakeBackend) push(e event.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeBackend) NowMono() time.Duration { return 0 }
func (f *fakeBackend) Size() (int, int)       { return f.width, f.height }
func (f *fakeBackend) SetFeatures(backend.FeatureFlags) {}
func (f *fakeBackend) PollEvent(timeout time.Duration) bool {
	f.mu.Lock()
	has := len(f.events) > 0
	f.mu.Unlock()
	if has {
		return true
	}
	time.Sleep(time.Millisecond)
	return false
}
func (f *fakeBackend) ReadEvent() (event.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil, false
	}
	e := f.events[0]
	f.events = f.events[1:]
	return e, true
}
func (f *fakeBackend) Capabilities() backend.Capabilities {
	return backend.Capabilities{DirectPositioning: true}
}
func (f *fakeBackend) WriteLog(string) {}
func (f *fakeBackend) PresentUI(*cell.Buffer, []diff.Span, bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presentCalls++
	return nil
}

func (f *fakeBackend) presentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presentCalls
}

type counterModel struct {
	count int
	quit  bool
}

func (m counterModel) Init() Cmd { return None{} }

func (m counterModel) Update(msg Msg) (counterModel, Cmd) {
	switch e := msg.(type) {
	case event.Key:
		if e.Code == "q" {
			return m, Quit{}
		}
		m.count++
	}
	return m, nil
}

func (m counterModel) View(frame *cell.Frame) {
	frame.Buffer.SetString(0, 0, "x", cell.Color{}, cell.Color{}, 0)
}

func (m counterModel) Subscriptions() []Subscription { return nil }

func TestProgram_QuitStopsLoop(t *testing.T) {
	be := newFakeBackend(10, 4)
	m := counterModel{}
	p := NewProgram[counterModel](m, m, be, nil)

	be.push(event.Key{Code: "a"})
	be.push(event.Key{Code: "q"})

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("program did not quit in time")
	}

	assert.True(t, be.presentCount() > 0, "expected at least one present call before quitting")
}

// compositionModel records every message Update receives, in order, so the
// composition state machine (scenario S4) can be checked against the exact
// sequence the model observed.
type compositionModel struct {
	received *[]Msg
}

func (m compositionModel) Init() Cmd { return None{} }

func (m compositionModel) Update(msg Msg) (compositionModel, Cmd) {
	*m.received = append(*m.received, msg)
	if k, ok := msg.(event.Key); ok && k.Code == "q" {
		return m, Quit{}
	}
	return m, nil
}

func (m compositionModel) View(frame *cell.Frame) {}

func (m compositionModel) Subscriptions() []Subscription { return nil }

func TestProgram_CompositionRewrite_S4(t *testing.T) {
	be := newFakeBackend(10, 4)
	var received []Msg
	m := compositionModel{received: &received}
	p := NewProgram[compositionModel](m, m, be, nil)

	// composition update with no prior start, then a key (must be dropped),
	// then composition end, then a key (must now pass through).
	be.push(event.Composition{Phase: event.CompositionUpdate, Data: "に"})
	be.push(event.Key{Code: "a"})
	be.push(event.Composition{Phase: event.CompositionEnd, Data: "あ"})
	be.push(event.Key{Code: "q"})

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("program did not quit in time")
	}

	var kinds []string
	for _, msg := range received {
		switch e := msg.(type) {
		case event.Composition:
			switch e.Phase {
			case event.CompositionStart:
				kinds = append(kinds, "composition-start")
			case event.CompositionUpdate:
				kinds = append(kinds, "composition-update")
			case event.CompositionEnd:
				kinds = append(kinds, "composition-end")
			case event.CompositionCancel:
				kinds = append(kinds, "composition-cancel")
			}
		case event.Key:
			kinds = append(kinds, "key:"+e.Code)
		}
	}

	assert.Equal(t, []string{
		"composition-start",
		"composition-update",
		"composition-end",
		"key:q",
	}, kinds, "key 'a' must be dropped while composition is active, and a synthetic start must precede the unstarted update")
}
