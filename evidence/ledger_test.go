package evidence

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_StampsRunID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLedger(NewWriterSink(&buf), 8)
	l.Append(DiffDecision{EventIdx: 1})
	l.Close()

	require.NotEmpty(t, l.RunID())
	line := strings.TrimSpace(buf.String())
	var entry Entry
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, l.RunID(), entry.RunID)
}

func runSequence(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	l := NewLedgerWithRunID(NewWriterSink(&buf), 64, "fixed-run-id")
	for i := uint64(0); i < 5; i++ {
		l.Append(DiffDecision{EventIdx: i, Strategy: "dirty_rows", DirtyRows: int(i), TotalRows: 24})
	}
	l.Close()
	return buf.Bytes()
}

func TestLedger_Determinism_S12(t *testing.T) {
	a := runSequence(t)
	b := runSequence(t)
	assert.Equal(t, a, b)
}

func TestLedger_NonBlocking_DropsOnBackpressure(t *testing.T) {
	blockCh := make(chan struct{})
	sink := blockingSink{release: blockCh}
	l := NewLedger(sink, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			l.Append(DiffDecision{EventIdx: uint64(i)})
		}
	}()
	wg.Wait()
	close(blockCh)
	l.Close()

	require.Greater(t, l.DroppedCount(), uint64(0))
}

type blockingSink struct {
	release chan struct{}
}

func (b blockingSink) Write(line []byte) error {
	select {
	case <-b.release:
	case <-time.After(50 * time.Millisecond):
	}
	return nil
}
