package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResizeDebouncer_S3(t *testing.T) {
	base := time.Unix(0, 0)
	d := NewResizeDebouncer(100*time.Millisecond, 80, 24)

	assert.Equal(t, ResizeShowPlaceholder, d.HandleResize(100, 40, base))
	assert.Equal(t, ResizeShowPlaceholder, d.HandleResize(120, 50, base.Add(10*time.Millisecond)))

	r := d.Tick(base.Add(50 * time.Millisecond))
	assert.Equal(t, ResizeNone, r.Action)

	r = d.Tick(base.Add(120 * time.Millisecond))
	assert.Equal(t, ResizeApply, r.Action)
	assert.Equal(t, 120, r.Width)
	assert.Equal(t, 50, r.Height)
	assert.InDelta(t, 110*time.Millisecond, r.Elapsed, float64(5*time.Millisecond))
}

func TestResizeDebouncer_Idempotent(t *testing.T) {
	base := time.Unix(0, 0)
	d := NewResizeDebouncer(50*time.Millisecond, 80, 24)
	assert.Equal(t, ResizeNone, d.HandleResize(80, 24, base))
}
