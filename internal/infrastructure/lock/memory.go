package lock

import (
	"context"
	"sync"

	"LunaroNews/internal/ports"
)

// Memory serializes callers per key within one process.
type Memory struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

var _ ports.Locker = (*Memory)(nil)

// NewMemory returns an empty keyed mutex.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string]*slot)}
}

// Lock blocks until key is free or ctx is done.
func (m *Memory) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	m.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, s, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.release(key, s, true) })
	}, nil
}

func (m *Memory) release(key string, s *slot, held bool) {
	if held {
		<-s.ch
	}
	m.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
	m.mu.Unlock()
}
