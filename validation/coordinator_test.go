package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boolResult bool

func (b boolResult) IsValid() bool { return bool(b) }

func fixedClock(ns *int64) func() time.Duration {
	return func() time.Duration { return time.Duration(*ns) }
}

func TestCoordinator_StaleAsyncValidation_S6(t *testing.T) {
	var now int64
	c := NewCoordinatorWithClock(fixedClock(&now))

	t1 := c.Start() // issued for "a"
	now = 10
	t2 := c.Start() // issued for "ab", supersedes t1
	now = 20

	applied1 := c.TryApplyResult(t1, boolResult(false), 5*time.Millisecond)
	assert.False(t, applied1)
	assert.True(t, c.Trace().ContainsEventType(t1, StaleDiscarded))

	applied2 := c.TryApplyResult(t2, boolResult(true), 5*time.Millisecond)
	assert.True(t, applied2)
	assert.True(t, c.Trace().ContainsEventType(t2, Applied))

	require.NotNil(t, c.CurrentResult())
	assert.True(t, c.CurrentResult().IsValid())
}

func TestCoordinator_TraceChecksum_Deterministic(t *testing.T) {
	run := func() uint64 {
		var now int64
		c := NewCoordinatorWithClock(fixedClock(&now))
		t1 := c.Start()
		now = 10
		t2 := c.Start()
		now = 20
		c.TryApplyResult(t1, boolResult(false), time.Millisecond)
		c.TryApplyResult(t2, boolResult(true), time.Millisecond)
		tr := c.Trace()
		return tr.Checksum()
	}
	assert.Equal(t, run(), run())
}

func TestCoordinator_TraceChecksum_DiffersOnDifferentTiming(t *testing.T) {
	var now int64
	c1 := NewCoordinatorWithClock(fixedClock(&now))
	c1.Start()
	now = 10
	c1.Start()

	now = 0
	c2 := NewCoordinatorWithClock(fixedClock(&now))
	c2.Start()
	now = 99
	c2.Start()

	assert.NotEqual(t, c1.Trace().Checksum(), c2.Trace().Checksum())
}

func TestCoordinator_StartCancelsInFlight(t *testing.T) {
	var now int64
	c := NewCoordinatorWithClock(fixedClock(&now))
	t1 := c.Start()
	t2 := c.Start()
	assert.True(t, c.Trace().ContainsEventType(t1, Cancelled))
	assert.Equal(t, t2, c.CurrentToken())
}
