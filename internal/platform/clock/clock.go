// Package clock supplies the logical clock height stamped onto every request.
//
// Registry state machines compare heights for expiry and record them as
// timestamps, so the only guarantee they need is monotonic non-decrease.
package clock

import (
	"sync"
	"time"
)

// Source yields the current logical clock height.
type Source interface {
	Height() uint64
}

// Wall derives heights from wall-clock unix seconds, clamped so that the
// reported height never decreases even if the system clock steps backwards.
type Wall struct {
	mu   sync.Mutex
	last uint64
	now  func() time.Time
}

// NewWall creates a wall-clock backed source.
func NewWall() *Wall {
	return &Wall{now: time.Now}
}

// Height returns the current height.
func (w *Wall) Height() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := uint64(w.now().Unix())
	if h < w.last {
		h = w.last
	}
	w.last = h
	return h
}

// Manual is a hand-advanced source for tests and replay tooling.
type Manual struct {
	mu     sync.Mutex
	height uint64
}

// NewManual creates a manual source starting at the given height.
func NewManual(start uint64) *Manual {
	return &Manual{height: start}
}

// Height returns the current height.
func (m *Manual) Height() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height
}

// Advance moves the clock forward by delta and returns the new height.
func (m *Manual) Advance(delta uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height += delta
	return m.height
}
