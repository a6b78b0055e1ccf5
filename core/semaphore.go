package core

import (
	"sync"

	"github.com/gogpu/webgpu/hal"
)

// SemaphorePool recycles binary semaphores across submissions. A semaphore
// signaled by one submit and waited on by a later one returns to the free
// list once the fences referencing it have retired, so steady-state frame
// loops allocate no new semaphores.
type SemaphorePool struct {
	provider hal.SemaphoreProvider

	mu   sync.Mutex
	free []hal.Semaphore

	// busy maps every semaphore this pool created to whether it is
	// currently handed out. Retirement can report the same semaphore twice
	// (once for its signaling submit's fence, once for the waiting one);
	// the flag makes the second Release a no-op instead of a double-free.
	busy map[hal.Semaphore]bool
}

// NewSemaphorePool creates a pool allocating through provider.
func NewSemaphorePool(provider hal.SemaphoreProvider) *SemaphorePool {
	return &SemaphorePool{
		provider: provider,
		busy:     make(map[hal.Semaphore]bool),
	}
}

// Acquire returns a free semaphore, creating one when the free list is empty.
func (p *SemaphorePool) Acquire() (hal.Semaphore, error) {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free = p.free[:n-1]
		p.busy[s] = true
		p.mu.Unlock()
		return s, nil
	}
	p.mu.Unlock()

	s, err := p.provider.CreateSemaphore()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.busy[s] = true
	p.mu.Unlock()
	return s, nil
}

// Release returns s to the free list. Semaphores not created by this pool
// (a swapchain's acquire semaphore, say) are ignored, which lets callers
// release every semaphore a retired submission referenced without telling
// pool-owned and externally-owned ones apart.
func (p *SemaphorePool) Release(s hal.Semaphore) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if inUse, owned := p.busy[s]; !owned || !inUse {
		return
	}
	p.busy[s] = false
	p.free = append(p.free, s)
}

// Owns reports whether s was created by this pool.
func (p *SemaphorePool) Owns(s hal.Semaphore) bool {
	if s == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.busy[s]
	return ok
}

// FreeCount reports how many semaphores are idle. Exposed for tests.
func (p *SemaphorePool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Drain destroys every semaphore this pool ever created. Call only once the
// device is idle: every submission referencing a pooled semaphore must have
// retired.
func (p *SemaphorePool) Drain() {
	p.mu.Lock()
	owned := p.busy
	p.busy = make(map[hal.Semaphore]bool)
	p.free = nil
	p.mu.Unlock()

	for s := range owned {
		p.provider.DestroySemaphore(s)
	}
}
