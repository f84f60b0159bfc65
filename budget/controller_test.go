package budget

import (
	"testing"
	"time"

	"github.com/phoenix-tui/phoenix/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overrunFrame(t *testing.T, c *Controller, factor float64) {
	t.Helper()
	c.NextFrame()
	d := time.Duration(factor * float64(c.cfg.Total))
	c.RecordPhase(PhaseView, d)
	if c.ShouldDegrade(PhaseView) {
		c.Degrade()
	}
}

func TestController_DegradationLadder_S5(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DegradeWindow = 3
	c := NewController(cfg)
	require.Equal(t, cell.Full, c.Degradation())

	for i := 0; i < 3; i++ {
		overrunFrame(t, c, 1.5)
	}
	assert.Equal(t, cell.Lite, c.Degradation(), "after 3 overruns should degrade one step")

	for i := 0; i < 3; i++ {
		overrunFrame(t, c, 1.5)
	}
	assert.Equal(t, cell.EssentialOnly, c.Degradation())

	for i := 0; i < 3; i++ {
		overrunFrame(t, c, 1.5)
	}
	assert.Equal(t, cell.Skeleton, c.Degradation())
}

func TestController_Degrade_NeverSkipsLevels(t *testing.T) {
	c := NewController(DefaultConfig())
	before := c.Degradation()
	c.Degrade()
	assert.Equal(t, before.Step(), c.Degradation())
}

func TestController_Upgrade_RequiresNConsecutiveFrames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UpgradeWindow = 3
	c := NewController(cfg)
	c.degradation = cell.EssentialOnly

	for i := 0; i < 3; i++ {
		c.NextFrame()
		c.FinishFrame(PhaseView, "steady")
	}
	assert.Equal(t, cell.EssentialOnly, c.Degradation(), "not enough within-budget frames yet")

	upgraded := c.NextFrame()
	assert.True(t, upgraded)
	assert.Equal(t, cell.Lite, c.Degradation())
}

func TestController_Exhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Total = 1 * time.Millisecond
	c := NewController(cfg)
	c.nowFn = func() time.Time { return c.frameStart }
	c.NextFrame()
	assert.False(t, c.Exhausted())
}
