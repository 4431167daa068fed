package feed

import (
	"context"
	"sync"

	"tablepay/internal/domain"
)

// Memory is an in-process Feed. Publish dispatches synchronously to
// every matching subscriber, which keeps tests deterministic. It also
// serves single-process deployments where the pos-service and its
// consumers share a binary.
type Memory struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*memorySub
}

type memorySub struct {
	id      int
	feed    *Memory
	filter  Filter
	handler Handler
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[int]*memorySub)}
}

func (m *Memory) Publish(_ context.Context, ev domain.OrderEvent) error {
	m.mu.Lock()
	var handlers []Handler
	for _, s := range m.subs {
		if s.filter.Matches(ev) {
			handlers = append(handlers, s.handler)
		}
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, f Filter, h Handler) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	s := &memorySub{id: m.nextID, feed: m, filter: f, handler: h}
	m.subs[s.id] = s
	return s, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = make(map[int]*memorySub)
	return nil
}

func (s *memorySub) Close() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	delete(s.feed.subs, s.id)
	return nil
}
