// Package session provides the reactive cell UI code binds to.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Subscriber receives every value written to a Cell.
type Subscriber[T any] func(value T)

type subscription[T any] struct {
	id string
	fn Subscriber[T]
}

// Cell is a single-slot observable value. Writes are last-write-wins and are
// delivered to subscribers synchronously, in write order. A subscriber must not
// write to the cell it is subscribed to.
type Cell[T any] struct {
	mu    sync.RWMutex
	value T
	subs  []subscription[T]

	// setMu orders writes together with their notifications.
	setMu sync.Mutex
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value and notifies every subscriber, even when the new value
// equals the old one.
func (c *Cell[T]) Set(value T) {
	c.setMu.Lock()
	defer c.setMu.Unlock()
	c.set(value)
}

// Update replaces the value with fn applied to the current one. No other write
// can land between reading and replacing.
func (c *Cell[T]) Update(fn func(T) T) {
	c.setMu.Lock()
	defer c.setMu.Unlock()
	c.set(fn(c.Get()))
}

// set requires setMu.
func (c *Cell[T]) set(value T) {
	c.mu.Lock()
	c.value = value
	subs := append([]subscription[T](nil), c.subs...)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(value)
	}
}

// Subscribe calls fn with the current value immediately and again after every
// Set. The returned function stops delivery; calling it more than once is a no-op.
func (c *Cell[T]) Subscribe(fn Subscriber[T]) (unsubscribe func()) {
	id := uuid.NewString()

	// Holding setMu keeps a concurrent Set from slipping between the initial
	// delivery and the registration.
	c.setMu.Lock()
	c.mu.Lock()
	c.subs = append(c.subs, subscription[T]{id: id, fn: fn})
	current := c.value
	c.mu.Unlock()
	fn(current)
	c.setMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Watch returns a channel that receives the current value and every later one.
// The channel is buffered with size buf; when the reader falls behind, the
// oldest undelivered value is replaced so the channel always ends on the latest
// value. Call stop to release the subscription; the channel is closed by stop.
func (c *Cell[T]) Watch(buf int) (values <-chan T, stop func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan T, buf)
	var mu sync.Mutex
	closed := false

	unsubscribe := c.Subscribe(func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		for {
			select {
			case ch <- v:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	})

	return ch, func() {
		unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
}
