// ABOUTME: Readiness gate that holds back database users until init completes.
// ABOUTME: Waiters are released in registration order.
package storage

import (
	"context"
	"sync"

	"github.com/harperreed/gymlog/internal/metrics"
)

type waiter struct {
	id uint64
	fn func(error)
}

// Gate is a resettable one-shot latch. The zero value is not ready.
type Gate struct {
	mu      sync.Mutex
	ready   bool
	nextID  uint64
	waiters []waiter
}

// NewGate returns a gate that is not ready.
func NewGate() *Gate {
	return &Gate{}
}

// Ready reports whether MarkReady has been called since the last Reset.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Notify registers fn to run once the gate opens. If the gate is already
// ready fn runs immediately with a nil error. If the gate is reset first,
// fn runs with ErrNotReady.
func (g *Gate) Notify(fn func(error)) {
	g.register(fn)
}

// Wait blocks until the gate is ready, it is reset, or ctx ends.
func (g *Gate) Wait(ctx context.Context) error {
	ch := make(chan error, 1)
	id, queued := g.register(func(err error) { ch <- err })
	if !queued {
		return <-ch
	}
	metrics.GateWaits.Inc()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		g.remove(id)
		return ctx.Err()
	}
}

// MarkReady opens the gate and releases every waiter in registration order.
func (g *Gate) MarkReady() {
	g.release(true, nil)
}

// Reset closes the gate after a failed initialization. Current waiters are
// dropped from the list and released with ErrNotReady.
func (g *Gate) Reset() {
	g.release(false, ErrNotReady)
}

func (g *Gate) release(ready bool, err error) {
	g.mu.Lock()
	if ready && g.ready {
		g.mu.Unlock()
		return
	}
	g.ready = ready
	pending := g.waiters
	g.waiters = nil
	g.mu.Unlock()

	for _, w := range pending {
		w.fn(err)
	}
}

// register queues fn unless the gate is ready. It reports whether fn was queued.
func (g *Gate) register(fn func(error)) (uint64, bool) {
	g.mu.Lock()
	if g.ready {
		g.mu.Unlock()
		fn(nil)
		return 0, false
	}
	g.nextID++
	id := g.nextID
	g.waiters = append(g.waiters, waiter{id: id, fn: fn})
	g.mu.Unlock()
	return id, true
}

func (g *Gate) remove(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, w := range g.waiters {
		if w.id == id {
			g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
			return
		}
	}
}
