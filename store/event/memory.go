package event

import (
	"context"
	"sync"

	"stablevault/core"
)

type memoryStore struct {
	mu     sync.RWMutex
	events []*core.Event
}

// NewMemory event store kept in process memory
func NewMemory() core.IEventStore {
	return &memoryStore{}
}

func (s *memoryStore) Append(_ context.Context, events []*core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range events {
		ev.ID = int64(len(s.events)) + 1
		s.events = append(s.events, ev)
	}

	return nil
}

func (s *memoryStore) List(_ context.Context, fromID int64, limit int) ([]*core.Event, error) {
	return s.filter(fromID, limit, func(*core.Event) bool { return true }), nil
}

func (s *memoryStore) ListByVault(_ context.Context, vault core.Address, fromID int64, limit int) ([]*core.Event, error) {
	return s.filter(fromID, limit, func(ev *core.Event) bool { return ev.Vault == vault }), nil
}

func (s *memoryStore) filter(fromID int64, limit int, match func(*core.Event) bool) []*core.Event {
	if limit <= 0 {
		limit = defaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Event
	if fromID < 0 {
		fromID = 0
	}

	for _, ev := range s.events[min(int(fromID), len(s.events)):] {
		if len(out) == limit {
			break
		}

		if match(ev) {
			out = append(out, ev)
		}
	}

	return out
}
