// Command phoenixdemo wires a minimal model through the full engine: a
// backend.Terminal, the diff/budget/evidence pipeline, and runtime.Program,
// to prove the core renders and quits cleanly end to end.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/phoenix-tui/phoenix/backend"
	"github.com/phoenix-tui/phoenix/cell"
	"github.com/phoenix-tui/phoenix/evidence"
	"github.com/phoenix-tui/phoenix/event"
	"github.com/phoenix-tui/phoenix/runtime"
)

type model struct {
	count int
}

func (m model) Init() runtime.Cmd {
	return runtime.Tick{Interval: time.Second}
}

func (m model) Update(msg runtime.Msg) (model, runtime.Cmd) {
	switch e := msg.(type) {
	case event.Key:
		if e.Code == "q" || e.Code == "ctrl+c" {
			return m, runtime.Quit{}
		}
	case runtime.TickMsg:
		m.count++
		if m.count >= 10 {
			return m, runtime.Quit{}
		}
		return m, runtime.Tick{Interval: time.Second}
	}
	return m, nil
}

func (m model) View(frame *cell.Frame) {
	frame.Buffer.SetString(0, 0, fmt.Sprintf("tick %d — press q to quit", m.count), cell.Color{}, cell.Color{}, 0)
}

func (m model) Subscriptions() []runtime.Subscription { return nil }

type fileSink struct{ f *os.File }

func (s fileSink) Write(line []byte) error {
	_, err := s.f.Write(line)
	return err
}

func main() {
	term := backend.NewTerminal(os.Stdin, os.Stdout)
	term.Open()
	defer term.Close()

	logFile, err := os.OpenFile("phoenixdemo-evidence.jsonl", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	var ledger *evidence.Ledger
	if err == nil {
		ledger = evidence.NewLedger(fileSink{f: logFile}, 1024)
		defer ledger.Close()
		defer logFile.Close()
	}

	m := model{}
	prog := runtime.NewProgram[model](m, m, term, ledger)
	prog.Run()
}
