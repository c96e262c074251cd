// Package progress publishes monotonic upload progress to observers.
package progress

import (
	"context"
	"sync"
	"time"
)

const (
	Min = 0
	Max = 100
)

// Signal is an observer list plus a latest-value cache. Published values are
// clamped to [Min, Max] and only increases are delivered.
type Signal struct {
	// deliver serializes publish and delivery so observers never see a
	// value smaller than one they already received.
	deliver sync.Mutex

	mu        sync.Mutex
	latest    int
	frozen    bool
	observers map[int]func(int)
	nextID    int
}

func NewSignal() *Signal {
	return &Signal{observers: make(map[int]func(int))}
}

// Publish reports whether the value was accepted. Observers must not
// publish from their callback.
func (s *Signal) Publish(value int) bool {
	value = clamp(value)

	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if s.frozen || value <= s.latest {
		s.mu.Unlock()
		return false
	}
	s.latest = value
	observers := s.snapshot()
	s.mu.Unlock()

	for _, fn := range observers {
		fn(value)
	}
	return true
}

func (s *Signal) Latest() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Freeze drops every later publish.
func (s *Signal) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

func (s *Signal) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

// Subscribe delivers the latest value immediately, then every accepted
// publish.
func (s *Signal) Subscribe(fn func(int)) (unsubscribe func()) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	latest := s.latest
	s.mu.Unlock()

	fn(latest)

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Signal) snapshot() []func(int) {
	out := make([]func(int), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func clamp(v int) int {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

// Simulate advances sig by step every interval until it reaches limit or ctx
// ends. The returned stop func cancels the timer and waits for it to exit, so
// no tick lands after stop returns.
func Simulate(ctx context.Context, sig *Signal, step int, interval time.Duration, limit int) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			next := sig.Latest() + step
			if next > limit {
				next = limit
			}
			sig.Publish(next)
			if next >= limit {
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
