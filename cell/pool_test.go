package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_Intern_SharesHandleForRepeatedCluster(t *testing.T) {
	p := NewPool()
	a := p.Intern("👍🏽")
	b := p.Intern("👍🏽")
	assert.Equal(t, a, b)
	assert.Equal(t, int32(2), p.refs[a])
}

func TestPool_ReleaseFrame_BulkDecrements(t *testing.T) {
	p := NewPool()
	id := p.Intern("🙂")
	p.Intern("🙂") // refcount now 2

	p.ReleaseFrame([]ClusterID{id, id})
	assert.Equal(t, int32(0), p.refs[id])

	// Releasing past zero must not underflow.
	p.ReleaseFrame([]ClusterID{id})
	assert.Equal(t, int32(0), p.refs[id])
}

func TestPool_RetainFrame_BulkIncrements(t *testing.T) {
	p := NewPool()
	id := p.Intern("🙂")
	p.RetainFrame([]ClusterID{id, id})
	assert.Equal(t, int32(3), p.refs[id])
}

func TestBuffer_ClusterIDs_OneEntryPerReferencingCell(t *testing.T) {
	pool := NewPool()
	b := &Buffer{width: 3, height: 1, pool: pool}
	b.cells = make([]Cell, 3)
	b.Clear()

	b.Set(0, 0, NewClusterCell(pool, "🙂", Color{}, Color{}, 0))
	b.Set(2, 0, NewClusterCell(pool, "🙂", Color{}, Color{}, 0))

	ids := b.ClusterIDs()
	assert.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
}

func TestRetireFrame_RebalancesRefsAcrossBuffers(t *testing.T) {
	pool := NewPool()
	prev := NewBuffer(3, 1)
	prev.pool = pool

	curr := &Buffer{width: 3, height: 1, pool: pool}
	curr.cells = make([]Cell, 3)
	curr.Clear()
	curr.Set(0, 0, NewClusterCell(pool, "🙂", Color{}, Color{}, 0))
	id := curr.Get(0, 0).Cluster
	assert.Equal(t, int32(1), pool.refs[id])

	stale := prev.ClusterIDs()
	prev.CopyFrom(curr)
	pool.ReleaseFrame(stale)
	pool.RetainFrame(prev.ClusterIDs())
	pool.ReleaseFrame(curr.ClusterIDs())

	// curr's original intern-time hold is released, prev's fresh hold
	// survives: net refcount settles at 1.
	assert.Equal(t, int32(1), pool.refs[id])
}
