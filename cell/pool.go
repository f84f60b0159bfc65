package cell

import "sync"

// ClusterID is a handle into a Pool's interned grapheme clusters. Zero is
// reserved and never returned by Pool.Intern; a Cell with ClusterID 0 carries
// its content directly in Rune instead.
type ClusterID uint32

// Pool interns multi-codepoint grapheme clusters so that cells sharing the
// same cluster (a repeated emoji, a repeated combining sequence) share one
// string allocation. The pool is reference-counted per frame: Retain/Release
// track how many live cells reference each cluster, and ReleaseFrame bulk
// releases everything a retiring frame held.
type Pool struct {
	mu       sync.Mutex
	byString map[string]ClusterID
	clusters []string // index 0 unused, ClusterID i -> clusters[i]
	refs     []int32
}

// NewPool creates an empty grapheme pool.
func NewPool() *Pool {
	return &Pool{
		byString: make(map[string]ClusterID),
		clusters: []string{""}, // index 0 sentinel
		refs:     []int32{0},
	}
}

// Intern returns the ClusterID for s, allocating a new entry if s has not
// been seen before. The returned handle starts with a reference count of 1.
func (p *Pool) Intern(s string) ClusterID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.byString[s]; ok {
		p.refs[id]++
		return id
	}
	id := ClusterID(len(p.clusters))
	p.clusters = append(p.clusters, s)
	p.refs = append(p.refs, 1)
	p.byString[s] = id
	return id
}

// Lookup returns the cluster string for id.
func (p *Pool) Lookup(id ClusterID) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(id) >= len(p.clusters) {
		return ""
	}
	return p.clusters[id]
}

// Retain increments a cluster's reference count, used when a cell is cloned
// into another buffer without re-interning its string.
func (p *Pool) Retain(id ClusterID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(id) < len(p.refs) {
		p.refs[id]++
	}
}

// Release decrements a cluster's reference count. Clusters are never
// compacted out of the pool's index space (ClusterIDs must stay stable for
// the lifetime of the pool); a zero count just means the string is dead
// weight until the whole pool is discarded with the buffer.
func (p *Pool) Release(id ClusterID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(id) < len(p.refs) && p.refs[id] > 0 {
		p.refs[id]--
	}
}

// ReleaseFrame bulk releases every cluster reference a retiring frame held,
// equivalent to calling Release once per entry in ids.
func (p *Pool) ReleaseFrame(ids []ClusterID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		if int(id) < len(p.refs) && p.refs[id] > 0 {
			p.refs[id]--
		}
	}
}

// RetainFrame bulk retains every cluster reference a new holder picks up,
// equivalent to calling Retain once per entry in ids.
func (p *Pool) RetainFrame(ids []ClusterID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		if int(id) < len(p.refs) {
			p.refs[id]++
		}
	}
}

// Len reports how many distinct clusters are interned.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clusters) - 1
}
