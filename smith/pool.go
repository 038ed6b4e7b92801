package smith

import (
	"github.com/sasha-s/go-deadlock"

	"github.com/forgekit/forge/foundry"
)

// foundryPool keeps idle foundries between runs so their allocations can be
// reused. It only ever holds foundries the smith created itself.
type foundryPool struct {
	mu       deadlock.Mutex
	capacity int
	idle     []*foundry.Foundry
	closed   bool
}

func newFoundryPool(capacity int) *foundryPool {
	if capacity < 0 {
		capacity = 0
	}
	return &foundryPool{capacity: capacity}
}

// take pops an idle foundry, or returns nil when the pool is empty.
func (p *foundryPool) take() *foundry.Foundry {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) == 0 {
		return nil
	}
	f := p.idle[len(p.idle)-1]
	p.idle = p.idle[:len(p.idle)-1]
	return f
}

// put parks a foundry for reuse. It reports false when the pool is already
// at capacity or has been drained, in which case the caller owns the
// foundry's disposal. Refusing puts after drain is what keeps a run racing
// Close from parking a foundry nothing would ever release.
func (p *foundryPool) put(f *foundry.Foundry) bool {
	if f == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || len(p.idle) >= p.capacity {
		return false
	}
	p.idle = append(p.idle, f)
	return true
}

// drain empties the pool, marks it closed and returns every parked foundry.
func (p *foundryPool) drain() []*foundry.Foundry {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	drained := p.idle
	p.idle = nil
	return drained
}
